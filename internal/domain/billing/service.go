package billing

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	billing Repository
}

func NewService(billing Repository) *Service {
	return &Service{billing: billing}
}

func (s *Service) ListRecords(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.billing.ListRecords(ctx, customerID, limit, offset)
}

func (s *Service) ListPricingTiers(ctx context.Context) ([]*PricingTier, error) {
	return s.billing.ListPricingTiers(ctx)
}
