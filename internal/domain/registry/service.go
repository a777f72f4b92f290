package registry

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/db"
)

// sampleTransitions defines the forward-only lifecycle. Every transition
// endpoint validates against this table before touching storage.
var sampleTransitions = map[string][]string{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusImaging},
	StatusImaging:    {StatusReview},
	StatusReview:     {StatusCompleted},
	StatusCompleted:  {},
}

func validTransition(from, to string) bool {
	for _, s := range sampleTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Service struct {
	samples SampleRepository
	results TestResultRepository
	history StatusHistoryRepository
	tx      db.TxRunner
}

func NewService(samples SampleRepository, results TestResultRepository, history StatusHistoryRepository, tx db.TxRunner) *Service {
	return &Service{samples: samples, results: results, history: history, tx: tx}
}

// Register creates a new pending sample. Barcode, customer, and test type
// are required; a duplicate barcode surfaces as Conflict from storage.
func (s *Service) Register(ctx context.Context, in RegisterInput, actorID uuid.UUID) (*Sample, error) {
	if strings.TrimSpace(in.Barcode) == "" || in.TestType == "" || in.CustomerID == uuid.Nil {
		return nil, apierr.Validation("barcode, customer_id and test_type are required")
	}

	collectedAt := time.Now()
	if in.CollectedAt != nil {
		collectedAt = *in.CollectedAt
	}
	sample := &Sample{
		Barcode:     strings.TrimSpace(in.Barcode),
		TestType:    in.TestType,
		Status:      StatusPending,
		Urgent:      in.Urgent,
		CustomerID:  in.CustomerID,
		PatientID:   in.PatientID,
		LabID:       in.LabID,
		CollectedAt: collectedAt,
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.samples.Create(ctx, sample); err != nil {
			return err
		}
		return s.history.Record(ctx, &StatusChange{
			SampleID:  sample.ID,
			ToStatus:  StatusPending,
			ChangedBy: actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// AssignTechnician claims a pending sample for the acting technician. The
// precondition is rechecked by the storage compare-and-swap, so of two
// concurrent claims exactly one wins; the loser sees Conflict.
func (s *Service) AssignTechnician(ctx context.Context, sampleID, technicianID uuid.UUID) (*Sample, error) {
	sample, err := s.samples.GetByID(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	if !validTransition(sample.Status, StatusProcessing) {
		return nil, apierr.Newf(apierr.KindInvalidTransition,
			"cannot move sample from %s to %s", sample.Status, StatusProcessing)
	}
	if sample.AssignedTechnician != nil && *sample.AssignedTechnician != technicianID {
		return nil, apierr.Conflict("Sample is assigned to another technician")
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		won, err := s.samples.Claim(ctx, sampleID, technicianID)
		if err != nil {
			return err
		}
		if !won {
			return apierr.Conflict("Sample was claimed by another technician")
		}
		return s.history.Record(ctx, &StatusChange{
			SampleID:   sampleID,
			FromStatus: &sample.Status,
			ToStatus:   StatusProcessing,
			ChangedBy:  technicianID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.samples.GetByID(ctx, sampleID)
}

// SendToImaging moves processing→imaging for the assigned technician,
// attaching processing notes when supplied.
func (s *Service) SendToImaging(ctx context.Context, sampleID, technicianID uuid.UUID, notes string) (*Sample, error) {
	sample, err := s.samples.GetByID(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTechnicianStep(sample, StatusProcessing, StatusImaging, technicianID); err != nil {
		return nil, err
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		won, err := s.samples.Advance(ctx, sampleID, StatusProcessing, StatusImaging, technicianID, notesPtr)
		if err != nil {
			return err
		}
		if !won {
			return apierr.Conflict("Sample was modified concurrently")
		}
		return s.history.Record(ctx, &StatusChange{
			SampleID:   sampleID,
			FromStatus: &sample.Status,
			ToStatus:   StatusImaging,
			ChangedBy:  technicianID,
			Notes:      notesPtr,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.samples.GetByID(ctx, sampleID)
}

// SendToReview moves imaging→review and creates or updates the sample's test
// result stub in the same transaction, so the status change and the stub
// either both persist or neither does.
func (s *Service) SendToReview(ctx context.Context, sampleID, technicianID uuid.UUID, findings string) (*Sample, error) {
	sample, err := s.samples.GetByID(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTechnicianStep(sample, StatusImaging, StatusReview, technicianID); err != nil {
		return nil, err
	}

	var findingsPtr *string
	if findings != "" {
		findingsPtr = &findings
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		won, err := s.samples.Advance(ctx, sampleID, StatusImaging, StatusReview, technicianID, nil)
		if err != nil {
			return err
		}
		if !won {
			return apierr.Conflict("Sample was modified concurrently")
		}
		if err := s.results.Upsert(ctx, &TestResult{
			SampleID:       sampleID,
			Findings:       findingsPtr,
			ImagesUploaded: true,
			CompletedBy:    &technicianID,
		}); err != nil {
			return err
		}
		return s.history.Record(ctx, &StatusChange{
			SampleID:   sampleID,
			FromStatus: &sample.Status,
			ToStatus:   StatusReview,
			ChangedBy:  technicianID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.samples.GetByID(ctx, sampleID)
}

// Finalize moves review→completed. The pathologist takes the sample if it is
// unassigned; a diagnosis is mandatory. Status, assignment, test result, and
// history commit atomically.
func (s *Service) Finalize(ctx context.Context, sampleID, pathologistID uuid.UUID, diagnosis, recommendations string) (*Sample, error) {
	if strings.TrimSpace(diagnosis) == "" {
		return nil, apierr.InvalidTransition("diagnosis is required to finalize a sample")
	}

	sample, err := s.samples.GetByID(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	if !validTransition(sample.Status, StatusCompleted) {
		return nil, apierr.Newf(apierr.KindInvalidTransition,
			"cannot move sample from %s to %s", sample.Status, StatusCompleted)
	}
	if sample.AssignedPathologist != nil && *sample.AssignedPathologist != pathologistID {
		return nil, apierr.Conflict("Sample is assigned to another pathologist")
	}

	var recPtr *string
	if recommendations != "" {
		recPtr = &recommendations
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		won, err := s.samples.Complete(ctx, sampleID, pathologistID)
		if err != nil {
			return err
		}
		if !won {
			return apierr.Conflict("Sample was modified concurrently")
		}
		if err := s.results.Upsert(ctx, &TestResult{
			SampleID:        sampleID,
			Diagnosis:       &diagnosis,
			Recommendations: recPtr,
			ReportGenerated: true,
			ReviewedBy:      &pathologistID,
		}); err != nil {
			return err
		}
		return s.history.Record(ctx, &StatusChange{
			SampleID:   sampleID,
			FromStatus: &sample.Status,
			ToStatus:   StatusCompleted,
			ChangedBy:  pathologistID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.samples.GetByID(ctx, sampleID)
}

func (s *Service) checkTechnicianStep(sample *Sample, from, to string, technicianID uuid.UUID) error {
	if sample.Status != from || !validTransition(from, to) {
		return apierr.Newf(apierr.KindInvalidTransition,
			"cannot move sample from %s to %s", sample.Status, to)
	}
	if sample.AssignedTechnician == nil || *sample.AssignedTechnician != technicianID {
		return apierr.InvalidTransition("sample is not assigned to you")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sample, error) {
	return s.samples.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Sample, int, error) {
	return s.samples.List(ctx, f, limit, offset)
}

func (s *Service) StatusHistory(ctx context.Context, sampleID uuid.UUID) ([]*StatusChange, error) {
	if _, err := s.samples.GetByID(ctx, sampleID); err != nil {
		return nil, err
	}
	return s.history.ListBySample(ctx, sampleID)
}

// -- Test Results --

func (s *Service) ListResults(ctx context.Context, limit, offset int) ([]*TestResult, int, error) {
	return s.results.List(ctx, limit, offset)
}

func (s *Service) GetResultBySample(ctx context.Context, sampleID uuid.UUID) (*TestResult, error) {
	return s.results.GetBySample(ctx, sampleID)
}

// AmendRecommendations lets a pathologist revise the recommendations of a
// result whose sample is already completed. Diagnosis stays fixed.
func (s *Service) AmendRecommendations(ctx context.Context, resultID uuid.UUID, recommendations string) (*TestResult, error) {
	if strings.TrimSpace(recommendations) == "" {
		return nil, apierr.Validation("recommendations are required")
	}
	tr, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	sample, err := s.samples.GetByID(ctx, tr.SampleID)
	if err != nil {
		return nil, err
	}
	if sample.Status != StatusCompleted {
		return nil, apierr.InvalidTransition("sample is not completed")
	}
	if err := s.results.UpdateRecommendations(ctx, resultID, recommendations); err != nil {
		return nil, err
	}
	return s.results.GetByID(ctx, resultID)
}
