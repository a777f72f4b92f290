package lab

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/platform/apierr"
)

type Service struct {
	labs Repository
}

func NewService(labs Repository) *Service {
	return &Service{labs: labs}
}

func (s *Service) Create(ctx context.Context, l *Lab) error {
	if l.Name == "" || l.Address == "" {
		return apierr.Validation("Missing required fields")
	}
	return s.labs.Create(ctx, l)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Lab, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Lab, int, error) {
	return s.labs.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) (*Lab, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierr.Validation("Lab name is required")
	}
	l, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Name = name
	if err := s.labs.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete refuses to remove a lab while samples still reference it, so sample
// rows never lose their lab link.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	has, err := s.labs.HasSamples(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return apierr.Conflict("Lab has samples attached")
	}
	return s.labs.Delete(ctx, id)
}
