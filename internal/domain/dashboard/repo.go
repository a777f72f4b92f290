package dashboard

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// StatusCounts counts samples per status, optionally scoped to one
	// customer (uuid.Nil = all).
	StatusCounts(ctx context.Context, customerID uuid.UUID) (map[string]int, error)
	UrgentCount(ctx context.Context, customerID uuid.UUID) (int, error)
	TodayAccessions(ctx context.Context) (int, error)
	PendingReview(ctx context.Context) (int, error)
	TechnicianAssignments(ctx context.Context, technicianID uuid.UUID) (int, error)
	PathologistAssignments(ctx context.Context, pathologistID uuid.UUID) (int, error)
	UserCount(ctx context.Context) (int, error)
	CustomerCount(ctx context.Context) (int, error)
}
