package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/db"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFromContext(ctx, r.pool)
}

const userCols = `u.id, u.name, u.email, u.password_hash, u.role_id, r.name,
	u.contact, u.tier, u.location, u.is_active, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.Role,
		&u.Contact, &u.Tier, &u.Location, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role_id, contact, tier, location, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.RoleID, u.Contact, u.Tier, u.Location, u.Active)
	if err != nil {
		return apierr.FromPG(err, "failed to create user")
	}
	return nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `
		SELECT `+userCols+`
		FROM users u JOIN roles r ON u.role_id = r.id
		WHERE u.id = $1`, id))
	if err != nil {
		return nil, apierr.FromPG(err, "user not found")
	}
	return u, nil
}

func (r *userRepoPG) GetActiveByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `
		SELECT `+userCols+`
		FROM users u JOIN roles r ON u.role_id = r.id
		WHERE u.email = $1 AND u.is_active = true`, email))
	if err != nil {
		return nil, apierr.FromPG(err, "user not found")
	}
	return u, nil
}

func (r *userRepoPG) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, apierr.FromPG(err, "failed to check email")
	}
	return exists, nil
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, apierr.FromPG(err, "failed to count users")
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+userCols+`
		FROM users u JOIN roles r ON u.role_id = r.id
		ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apierr.FromPG(err, "failed to list users")
	}
	defer rows.Close()
	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, apierr.FromPG(err, "failed to scan user")
		}
		users = append(users, u)
	}
	return users, total, nil
}

func (r *userRepoPG) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		return nil, apierr.FromPG(err, "role not found")
	}
	return &role, nil
}

const customerCols = `u.id, u.name, u.email,
	COALESCE(u.contact, ''), COALESCE(u.tier, ''), COALESCE(u.location, '')`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Contact, &c.Tier, &c.Location)
	return &c, err
}

func (r *userRepoPG) ListCustomers(ctx context.Context, limit, offset int) ([]*Customer, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM users u JOIN roles r ON u.role_id = r.id
		WHERE r.name = 'customer'`).Scan(&total); err != nil {
		return nil, 0, apierr.FromPG(err, "failed to count customers")
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+customerCols+`
		FROM users u JOIN roles r ON u.role_id = r.id
		WHERE r.name = 'customer'
		ORDER BY u.name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apierr.FromPG(err, "failed to list customers")
	}
	defer rows.Close()
	var customers []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, apierr.FromPG(err, "failed to scan customer")
		}
		customers = append(customers, c)
	}
	return customers, total, nil
}

func (r *userRepoPG) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := scanCustomer(r.conn(ctx).QueryRow(ctx, `
		SELECT `+customerCols+`
		FROM users u JOIN roles r ON u.role_id = r.id
		WHERE r.name = 'customer' AND u.id = $1`, id))
	if err != nil {
		return nil, apierr.FromPG(err, "customer not found")
	}
	return c, nil
}

func (r *userRepoPG) UpdateCustomer(ctx context.Context, c *Customer) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET name = $2, email = $3, contact = $4, tier = $5, location = $6, updated_at = NOW()
		FROM roles
		WHERE users.role_id = roles.id AND roles.name = 'customer' AND users.id = $1`,
		c.ID, c.Name, c.Email, c.Contact, c.Tier, c.Location)
	if err != nil {
		return apierr.FromPG(err, "failed to update customer")
	}
	if tag.RowsAffected() == 0 {
		return apierr.NotFound("Customer not found")
	}
	return nil
}

func (r *userRepoPG) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM users
		USING roles
		WHERE users.role_id = roles.id AND roles.name = 'customer' AND users.id = $1`, id)
	if err != nil {
		return apierr.FromPG(err, "failed to delete customer")
	}
	if tag.RowsAffected() == 0 {
		return apierr.NotFound("Customer not found")
	}
	return nil
}
