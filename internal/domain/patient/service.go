package patient

import (
	"context"

	"github.com/cytolab/lims/internal/platform/apierr"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return apierr.Validation("Patient name required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
