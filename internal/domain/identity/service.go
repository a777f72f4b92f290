package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/auth"
)

type Service struct {
	users  UserRepository
	issuer *auth.Issuer
}

func NewService(users UserRepository, issuer *auth.Issuer) *Service {
	return &Service{users: users, issuer: issuer}
}

// Authenticate verifies credentials and issues a token. Unknown email,
// inactive account, and wrong password all produce the same
// InvalidCredentials error; the unknown-email path burns a bcrypt compare so
// response timing does not reveal whether the account exists.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*LoginResponse, error) {
	if email == "" || password == "" {
		return nil, apierr.Validation("Email and password required")
	}

	u, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if apierr.IsKind(err, apierr.KindNotFound) {
			auth.CheckDummy(password)
			return nil, apierr.InvalidCredentials()
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apierr.InvalidCredentials()
	}

	token, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apierr.Internal("failed to issue token", err)
	}
	return &LoginResponse{
		Token: token,
		User:  UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	}, nil
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if req.Name == "" || req.Email == "" || req.Role == "" {
		return nil, apierr.Validation("Missing required fields")
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierr.Conflict("User already exists")
	}

	role, err := s.users.GetRoleByName(ctx, strings.ToLower(req.Role))
	if err != nil {
		if apierr.IsKind(err, apierr.KindNotFound) {
			return nil, apierr.Validation("Invalid role")
		}
		return nil, err
	}

	hash, err := auth.HashPassword(TempPassword)
	if err != nil {
		return nil, apierr.Internal("failed to hash password", err)
	}

	u := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Role:         role.Name,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// -- Customers --

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if in.Name == "" || in.Email == "" || in.Contact == "" || in.Tier == "" || in.Location == "" {
		return nil, apierr.Validation("Missing required fields")
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierr.Conflict("Customer already exists")
	}

	role, err := s.users.GetRoleByName(ctx, RoleCustomer)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(TempPassword)
	if err != nil {
		return nil, apierr.Internal("failed to hash password", err)
	}

	u := &User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Role:         role.Name,
		Contact:      &in.Contact,
		Tier:         &in.Tier,
		Location:     &in.Location,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return &Customer{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Contact:  in.Contact,
		Tier:     in.Tier,
		Location: in.Location,
	}, nil
}

func (s *Service) ListCustomers(ctx context.Context, limit, offset int) ([]*Customer, int, error) {
	return s.users.ListCustomers(ctx, limit, offset)
}

func (s *Service) UpdateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, apierr.Validation("Name is required")
	}
	if err := s.users.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return s.users.GetCustomer(ctx, c.ID)
}

func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.users.DeleteCustomer(ctx, id)
}
