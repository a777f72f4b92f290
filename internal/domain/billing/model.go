package billing

import (
	"time"

	"github.com/google/uuid"
)

type Record struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	SampleID      *uuid.UUID `json:"sample_id"`
	Amount        float64    `json:"amount"`
	PaymentStatus string     `json:"payment_status"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PricingTier is reference data: the per-test prices a customer tier pays.
type PricingTier struct {
	ID          uuid.UUID `json:"id"`
	TierName    string    `json:"tier_name"`
	LBCPrice    float64   `json:"lbc_price"`
	HPVPrice    float64   `json:"hpv_price"`
	CoTestPrice float64   `json:"co_test_price"`
}
