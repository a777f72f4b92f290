package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// ListRecords returns billing records, newest first. A non-nil customerID
	// restricts the listing to that customer.
	ListRecords(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Record, int, error)
	ListPricingTiers(ctx context.Context) ([]*PricingTier, error)
}
