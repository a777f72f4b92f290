package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists users, roles, and the customer projection.
// Implementations return *apierr.Error values: NotFound when a lookup misses,
// Conflict on unique violations.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetActiveByEmail returns only rows with is_active=true; the login path
	// must not distinguish inactive accounts from unknown ones.
	GetActiveByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	ListCustomers(ctx context.Context, limit, offset int) ([]*Customer, int, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	// UpdateCustomer and DeleteCustomer match role=customer rows only; any
	// other id, customer or not present, reports NotFound.
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}
