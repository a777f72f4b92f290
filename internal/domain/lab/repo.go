package lab

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, l *Lab) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lab, error)
	List(ctx context.Context, limit, offset int) ([]*Lab, int, error)
	Update(ctx context.Context, l *Lab) error
	Delete(ctx context.Context, id uuid.UUID) error
	// HasSamples reports whether any sample still references the lab.
	HasSamples(ctx context.Context, id uuid.UUID) (bool, error)
}
