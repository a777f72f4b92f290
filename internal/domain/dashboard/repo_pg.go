package dashboard

import (
	"context"

	"github.com/google/uuid"
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

func (r *repoPG) StatusCounts(ctx context.Context, customerID uuid.UUID) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM samples GROUP BY status`
	var args []interface{}
	if customerID != uuid.Nil {
		query = `SELECT status, COUNT(*) FROM samples WHERE customer_id = $1 GROUP BY status`
		args = append(args, customerID)
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, apierr.FromPG(err, "failed to count samples")
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apierr.FromPG(err, "failed to scan status count")
		}
		counts[status] = n
	}
	return counts, nil
}

func (r *repoPG) scalar(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, apierr.FromPG(err, "failed to compute dashboard stat")
	}
	return n, nil
}

func (r *repoPG) UrgentCount(ctx context.Context, customerID uuid.UUID) (int, error) {
	if customerID != uuid.Nil {
		return r.scalar(ctx,
			`SELECT COUNT(*) FROM samples WHERE urgent AND status <> 'completed' AND customer_id = $1`,
			customerID)
	}
	return r.scalar(ctx, `SELECT COUNT(*) FROM samples WHERE urgent AND status <> 'completed'`)
}

func (r *repoPG) TodayAccessions(ctx context.Context) (int, error) {
	return r.scalar(ctx, `SELECT COUNT(*) FROM samples WHERE created_at >= CURRENT_DATE`)
}

func (r *repoPG) PendingReview(ctx context.Context) (int, error) {
	return r.scalar(ctx, `SELECT COUNT(*) FROM samples WHERE status = 'review'`)
}

func (r *repoPG) TechnicianAssignments(ctx context.Context, technicianID uuid.UUID) (int, error) {
	return r.scalar(ctx,
		`SELECT COUNT(*) FROM samples WHERE assigned_technician = $1 AND status IN ('processing', 'imaging')`,
		technicianID)
}

func (r *repoPG) PathologistAssignments(ctx context.Context, pathologistID uuid.UUID) (int, error) {
	return r.scalar(ctx,
		`SELECT COUNT(*) FROM samples WHERE assigned_pathologist = $1 AND status = 'review'`,
		pathologistID)
}

func (r *repoPG) UserCount(ctx context.Context) (int, error) {
	return r.scalar(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *repoPG) CustomerCount(ctx context.Context) (int, error) {
	return r.scalar(ctx, `
		SELECT COUNT(*) FROM users u JOIN roles r ON u.role_id = r.id
		WHERE r.name = 'customer'`)
}
