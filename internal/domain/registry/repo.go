package registry

import (
	"context"

	"github.com/google/uuid"
)

// SampleRepository persists samples. The three compare-and-swap methods
// condition their UPDATE on the expected prior status (and assignee where the
// transition demands one) and report false when no row matched, so a lost
// race never overwrites a concurrent winner.
type SampleRepository interface {
	Create(ctx context.Context, s *Sample) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sample, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Sample, int, error)

	// Claim moves pending→processing and assigns the technician, but only if
	// the sample is still pending and unassigned or already assigned to them.
	Claim(ctx context.Context, id, technicianID uuid.UUID) (bool, error)
	// Advance moves from→to for the assigned technician, attaching processing
	// notes when given.
	Advance(ctx context.Context, id uuid.UUID, from, to string, technicianID uuid.UUID, notes *string) (bool, error)
	// Complete moves review→completed and assigns the pathologist, but only
	// if the sample is still in review and unassigned or assigned to them.
	Complete(ctx context.Context, id, pathologistID uuid.UUID) (bool, error)
}

type TestResultRepository interface {
	// Upsert inserts the sample's result row or updates the existing one.
	Upsert(ctx context.Context, tr *TestResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestResult, error)
	GetBySample(ctx context.Context, sampleID uuid.UUID) (*TestResult, error)
	List(ctx context.Context, limit, offset int) ([]*TestResult, int, error)
	UpdateRecommendations(ctx context.Context, id uuid.UUID, recommendations string) error
}

type StatusHistoryRepository interface {
	Record(ctx context.Context, sc *StatusChange) error
	ListBySample(ctx context.Context, sampleID uuid.UUID) ([]*StatusChange, error)
}
