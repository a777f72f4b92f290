package billing

import (
	"context"
	"fmt"

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

func (r *repoPG) ListRecords(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	query := `SELECT id, customer_id, sample_id, amount, payment_status, created_at
		FROM billing_records WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM billing_records WHERE 1=1`
	var args []interface{}
	idx := 1

	if customerID != uuid.Nil {
		cond := fmt.Sprintf(` AND customer_id = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, customerID)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apierr.FromPG(err, "failed to count billing records")
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apierr.FromPG(err, "failed to list billing records")
	}
	defer rows.Close()
	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &rec.SampleID,
			&rec.Amount, &rec.PaymentStatus, &rec.CreatedAt); err != nil {
			return nil, 0, apierr.FromPG(err, "failed to scan billing record")
		}
		records = append(records, &rec)
	}
	return records, total, nil
}

func (r *repoPG) ListPricingTiers(ctx context.Context) ([]*PricingTier, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, tier_name, lbc_price, hpv_price, co_test_price
		FROM pricing_tiers ORDER BY tier_name`)
	if err != nil {
		return nil, apierr.FromPG(err, "failed to list pricing tiers")
	}
	defer rows.Close()
	var tiers []*PricingTier
	for rows.Next() {
		var t PricingTier
		if err := rows.Scan(&t.ID, &t.TierName, &t.LBCPrice, &t.HPVPrice, &t.CoTestPrice); err != nil {
			return nil, apierr.FromPG(err, "failed to scan pricing tier")
		}
		tiers = append(tiers, &t)
	}
	return tiers, nil
}
