package lab

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFromContext(ctx, r.pool)
}

const labCols = `id, name, address, contact_info, active, created_at, updated_at`

func scanLab(row pgx.Row) (*Lab, error) {
	var l Lab
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.ContactInfo, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *Lab) error {
	l.ID = uuid.New()
	if l.ContactInfo == nil {
		l.ContactInfo = map[string]string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO labs (id, name, address, contact_info, active)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.Name, l.Address, l.ContactInfo, l.Active)
	if err != nil {
		return apierr.FromPG(err, "failed to create lab")
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Lab, error) {
	l, err := scanLab(r.conn(ctx).QueryRow(ctx, `SELECT `+labCols+` FROM labs WHERE id = $1`, id))
	if err != nil {
		return nil, apierr.FromPG(err, "Lab not found")
	}
	return l, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Lab, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM labs`).Scan(&total); err != nil {
		return nil, 0, apierr.FromPG(err, "failed to count labs")
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM labs ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apierr.FromPG(err, "failed to list labs")
	}
	defer rows.Close()
	var labs []*Lab
	for rows.Next() {
		l, err := scanLab(rows)
		if err != nil {
			return nil, 0, apierr.FromPG(err, "failed to scan lab")
		}
		labs = append(labs, l)
	}
	return labs, total, nil
}

func (r *repoPG) Update(ctx context.Context, l *Lab) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE labs SET name = $2, address = $3, contact_info = $4, active = $5, updated_at = NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Address, l.ContactInfo, l.Active)
	if err != nil {
		return apierr.FromPG(err, "failed to update lab")
	}
	if tag.RowsAffected() == 0 {
		return apierr.NotFound("Lab not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM labs WHERE id = $1`, id)
	if err != nil {
		return apierr.FromPG(err, "lab has samples attached")
	}
	if tag.RowsAffected() == 0 {
		return apierr.NotFound("Lab not found")
	}
	return nil
}

func (r *repoPG) HasSamples(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM samples WHERE lab_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apierr.FromPG(err, "failed to check lab samples")
	}
	return exists, nil
}
