package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/db"
)

// =========== Sample Repository ===========

type sampleRepoPG struct{ pool *pgxpool.Pool }

func NewSampleRepoPG(pool *pgxpool.Pool) SampleRepository {
	return &sampleRepoPG{pool: pool}
}

func (r *sampleRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFromContext(ctx, r.pool)
}

const sampleCols = `s.id, s.barcode, s.test_type, s.status, s.urgent, s.customer_id,
	s.patient_id, s.lab_id, s.assigned_technician, s.assigned_pathologist,
	s.processing_notes, s.collected_at, s.created_at, s.updated_at`

func scanSample(row pgx.Row) (*Sample, error) {
	var s Sample
	err := row.Scan(&s.ID, &s.Barcode, &s.TestType, &s.Status, &s.Urgent, &s.CustomerID,
		&s.PatientID, &s.LabID, &s.AssignedTechnician, &s.AssignedPathologist,
		&s.ProcessingNotes, &s.CollectedAt, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *sampleRepoPG) Create(ctx context.Context, s *Sample) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO samples (id, barcode, test_type, status, urgent, customer_id,
			patient_id, lab_id, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Barcode, s.TestType, s.Status, s.Urgent, s.CustomerID,
		s.PatientID, s.LabID, s.CollectedAt)
	if err != nil {
		return apierr.FromPG(err, "Barcode already exists")
	}
	return nil
}

func (r *sampleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sample, error) {
	s, err := scanSample(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sampleCols+` FROM samples s WHERE s.id = $1`, id))
	if err != nil {
		return nil, apierr.FromPG(err, "Sample not found")
	}
	return s, nil
}

func (r *sampleRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Sample, int, error) {
	query := `SELECT ` + sampleCols + `, p.name, l.name, cu.name
		FROM samples s
		LEFT JOIN patients p ON s.patient_id = p.id
		LEFT JOIN labs l ON s.lab_id = l.id
		JOIN users cu ON s.customer_id = cu.id
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM samples s WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Status != "" {
		cond := fmt.Sprintf(` AND s.status = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, f.Status)
		idx++
	}
	if f.CustomerID != uuid.Nil {
		cond := fmt.Sprintf(` AND s.customer_id = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, f.CustomerID)
		idx++
	}
	if f.TechnicianID != uuid.Nil {
		cond := fmt.Sprintf(` AND s.assigned_technician = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, f.TechnicianID)
		idx++
	}
	if f.PathologistID != uuid.Nil {
		cond := fmt.Sprintf(` AND s.assigned_pathologist = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, f.PathologistID)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apierr.FromPG(err, "failed to count samples")
	}

	if f.UrgentFirst {
		query += ` ORDER BY s.urgent DESC, s.collected_at ASC`
	} else {
		query += ` ORDER BY s.collected_at DESC`
	}
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apierr.FromPG(err, "failed to list samples")
	}
	defer rows.Close()
	var samples []*Sample
	for rows.Next() {
		var s Sample
		err := rows.Scan(&s.ID, &s.Barcode, &s.TestType, &s.Status, &s.Urgent, &s.CustomerID,
			&s.PatientID, &s.LabID, &s.AssignedTechnician, &s.AssignedPathologist,
			&s.ProcessingNotes, &s.CollectedAt, &s.CreatedAt, &s.UpdatedAt,
			&s.PatientName, &s.LabName, &s.CustomerName)
		if err != nil {
			return nil, 0, apierr.FromPG(err, "failed to scan sample")
		}
		samples = append(samples, &s)
	}
	return samples, total, nil
}

func (r *sampleRepoPG) Claim(ctx context.Context, id, technicianID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE samples
		SET status = $3, assigned_technician = $2, updated_at = NOW()
		WHERE id = $1 AND status = $4
		  AND (assigned_technician IS NULL OR assigned_technician = $2)`,
		id, technicianID, StatusProcessing, StatusPending)
	if err != nil {
		return false, apierr.FromPG(err, "failed to claim sample")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *sampleRepoPG) Advance(ctx context.Context, id uuid.UUID, from, to string, technicianID uuid.UUID, notes *string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE samples
		SET status = $3, processing_notes = COALESCE($5, processing_notes), updated_at = NOW()
		WHERE id = $1 AND status = $2 AND assigned_technician = $4`,
		id, from, to, technicianID, notes)
	if err != nil {
		return false, apierr.FromPG(err, "failed to advance sample")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *sampleRepoPG) Complete(ctx context.Context, id, pathologistID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE samples
		SET status = $3, assigned_pathologist = $2, updated_at = NOW()
		WHERE id = $1 AND status = $4
		  AND (assigned_pathologist IS NULL OR assigned_pathologist = $2)`,
		id, pathologistID, StatusCompleted, StatusReview)
	if err != nil {
		return false, apierr.FromPG(err, "failed to complete sample")
	}
	return tag.RowsAffected() == 1, nil
}

// =========== Test Result Repository ===========

type testResultRepoPG struct{ pool *pgxpool.Pool }

func NewTestResultRepoPG(pool *pgxpool.Pool) TestResultRepository {
	return &testResultRepoPG{pool: pool}
}

func (r *testResultRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFromContext(ctx, r.pool)
}

const resultCols = `id, sample_id, findings, diagnosis, recommendations,
	images_uploaded, report_generated, completed_by, reviewed_by, created_at, updated_at`

func scanResult(row pgx.Row) (*TestResult, error) {
	var tr TestResult
	err := row.Scan(&tr.ID, &tr.SampleID, &tr.Findings, &tr.Diagnosis, &tr.Recommendations,
		&tr.ImagesUploaded, &tr.ReportGenerated, &tr.CompletedBy, &tr.ReviewedBy,
		&tr.CreatedAt, &tr.UpdatedAt)
	return &tr, err
}

func (r *testResultRepoPG) Upsert(ctx context.Context, tr *TestResult) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO test_results (id, sample_id, findings, diagnosis, recommendations,
			images_uploaded, report_generated, completed_by, reviewed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sample_id) DO UPDATE SET
			findings = COALESCE(EXCLUDED.findings, test_results.findings),
			diagnosis = COALESCE(EXCLUDED.diagnosis, test_results.diagnosis),
			recommendations = COALESCE(EXCLUDED.recommendations, test_results.recommendations),
			images_uploaded = test_results.images_uploaded OR EXCLUDED.images_uploaded,
			report_generated = test_results.report_generated OR EXCLUDED.report_generated,
			completed_by = COALESCE(EXCLUDED.completed_by, test_results.completed_by),
			reviewed_by = COALESCE(EXCLUDED.reviewed_by, test_results.reviewed_by),
			updated_at = NOW()`,
		tr.ID, tr.SampleID, tr.Findings, tr.Diagnosis, tr.Recommendations,
		tr.ImagesUploaded, tr.ReportGenerated, tr.CompletedBy, tr.ReviewedBy)
	if err != nil {
		return apierr.FromPG(err, "failed to save test result")
	}
	return nil
}

func (r *testResultRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestResult, error) {
	tr, err := scanResult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+resultCols+` FROM test_results WHERE id = $1`, id))
	if err != nil {
		return nil, apierr.FromPG(err, "Test result not found")
	}
	return tr, nil
}

func (r *testResultRepoPG) GetBySample(ctx context.Context, sampleID uuid.UUID) (*TestResult, error) {
	tr, err := scanResult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+resultCols+` FROM test_results WHERE sample_id = $1`, sampleID))
	if err != nil {
		return nil, apierr.FromPG(err, "Test result not found")
	}
	return tr, nil
}

func (r *testResultRepoPG) List(ctx context.Context, limit, offset int) ([]*TestResult, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM test_results`).Scan(&total); err != nil {
		return nil, 0, apierr.FromPG(err, "failed to count test results")
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+resultCols+` FROM test_results ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apierr.FromPG(err, "failed to list test results")
	}
	defer rows.Close()
	var results []*TestResult
	for rows.Next() {
		tr, err := scanResult(rows)
		if err != nil {
			return nil, 0, apierr.FromPG(err, "failed to scan test result")
		}
		results = append(results, tr)
	}
	return results, total, nil
}

func (r *testResultRepoPG) UpdateRecommendations(ctx context.Context, id uuid.UUID, recommendations string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_results SET recommendations = $2, updated_at = NOW() WHERE id = $1`,
		id, recommendations)
	if err != nil {
		return apierr.FromPG(err, "failed to update test result")
	}
	if tag.RowsAffected() == 0 {
		return apierr.NotFound("Test result not found")
	}
	return nil
}

// =========== Status History Repository ===========

type statusHistoryRepoPG struct{ pool *pgxpool.Pool }

func NewStatusHistoryRepoPG(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepoPG{pool: pool}
}

func (r *statusHistoryRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFromContext(ctx, r.pool)
}

func (r *statusHistoryRepoPG) Record(ctx context.Context, sc *StatusChange) error {
	sc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sample_status_history (id, sample_id, from_status, to_status, changed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sc.ID, sc.SampleID, sc.FromStatus, sc.ToStatus, sc.ChangedBy, sc.Notes)
	if err != nil {
		return apierr.FromPG(err, "failed to record status change")
	}
	return nil
}

func (r *statusHistoryRepoPG) ListBySample(ctx context.Context, sampleID uuid.UUID) ([]*StatusChange, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, sample_id, from_status, to_status, changed_by, notes, changed_at
		FROM sample_status_history
		WHERE sample_id = $1 ORDER BY changed_at ASC`, sampleID)
	if err != nil {
		return nil, apierr.FromPG(err, "failed to list status history")
	}
	defer rows.Close()
	var history []*StatusChange
	for rows.Next() {
		var sc StatusChange
		if err := rows.Scan(&sc.ID, &sc.SampleID, &sc.FromStatus, &sc.ToStatus,
			&sc.ChangedBy, &sc.Notes, &sc.ChangedAt); err != nil {
			return nil, apierr.FromPG(err, "failed to scan status change")
		}
		history = append(history, &sc)
	}
	return history, nil
}
