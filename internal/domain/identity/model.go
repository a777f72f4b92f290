package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role names known to the system. Seeded by migrations; RequireRole groups
// reference these constants rather than string literals.
const (
	RoleAdmin       = "admin"
	RoleAccession   = "accession"
	RoleTechnician  = "technician"
	RolePathologist = "pathologist"
	RoleCustomer    = "customer"
)

// TempPassword is assigned to every account created through the admin and
// customer creation paths. Accounts are expected to change it on first login.
const TempPassword = "Welcome@123"

type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       uuid.UUID `json:"-"`
	Role         string    `json:"role"`
	Contact      *string   `json:"contact,omitempty"`
	Tier         *string   `json:"tier,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Customer is the external projection of a role=customer user row. The
// customer-scoped endpoints read and write users through this shape only.
type Customer struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Contact  string    `json:"contact"`
	Tier     string    `json:"tier"`
	Location string    `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CustomerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Tier     string `json:"tier"`
	Location string `json:"location"`
}
