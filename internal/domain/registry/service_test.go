package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/platform/apierr"
)

// -- Mock Repositories --

type mockSampleRepo struct {
	mu         sync.Mutex
	samples    map[uuid.UUID]*Sample
	lastFilter ListFilter
}

func newMockSampleRepo() *mockSampleRepo {
	return &mockSampleRepo{samples: make(map[uuid.UUID]*Sample)}
}

func (m *mockSampleRepo) Create(_ context.Context, s *Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.samples {
		if existing.Barcode == s.Barcode {
			return apierr.Conflict("Barcode already exists")
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	cp := *s
	m.samples[s.ID] = &cp
	return nil
}

func (m *mockSampleRepo) GetByID(_ context.Context, id uuid.UUID) (*Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.samples[id]
	if !ok {
		return nil, apierr.NotFound("Sample not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockSampleRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Sample, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	var result []*Sample
	for _, s := range m.samples {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.CustomerID != uuid.Nil && s.CustomerID != f.CustomerID {
			continue
		}
		if f.TechnicianID != uuid.Nil && (s.AssignedTechnician == nil || *s.AssignedTechnician != f.TechnicianID) {
			continue
		}
		cp := *s
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockSampleRepo) Claim(_ context.Context, id, technicianID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.samples[id]
	if !ok || s.Status != StatusPending {
		return false, nil
	}
	if s.AssignedTechnician != nil && *s.AssignedTechnician != technicianID {
		return false, nil
	}
	tid := technicianID
	s.Status = StatusProcessing
	s.AssignedTechnician = &tid
	return true, nil
}

func (m *mockSampleRepo) Advance(_ context.Context, id uuid.UUID, from, to string, technicianID uuid.UUID, notes *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.samples[id]
	if !ok || s.Status != from {
		return false, nil
	}
	if s.AssignedTechnician == nil || *s.AssignedTechnician != technicianID {
		return false, nil
	}
	s.Status = to
	if notes != nil {
		s.ProcessingNotes = notes
	}
	return true, nil
}

func (m *mockSampleRepo) Complete(_ context.Context, id, pathologistID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.samples[id]
	if !ok || s.Status != StatusReview {
		return false, nil
	}
	if s.AssignedPathologist != nil && *s.AssignedPathologist != pathologistID {
		return false, nil
	}
	pid := pathologistID
	s.Status = StatusCompleted
	s.AssignedPathologist = &pid
	return true, nil
}

type mockResultRepo struct {
	mu      sync.Mutex
	results map[uuid.UUID]*TestResult
}

func newMockResultRepo() *mockResultRepo {
	return &mockResultRepo{results: make(map[uuid.UUID]*TestResult)}
}

func (m *mockResultRepo) Upsert(_ context.Context, tr *TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.results {
		if existing.SampleID == tr.SampleID {
			if tr.Findings != nil {
				existing.Findings = tr.Findings
			}
			if tr.Diagnosis != nil {
				existing.Diagnosis = tr.Diagnosis
			}
			if tr.Recommendations != nil {
				existing.Recommendations = tr.Recommendations
			}
			existing.ImagesUploaded = existing.ImagesUploaded || tr.ImagesUploaded
			existing.ReportGenerated = existing.ReportGenerated || tr.ReportGenerated
			if tr.CompletedBy != nil {
				existing.CompletedBy = tr.CompletedBy
			}
			if tr.ReviewedBy != nil {
				existing.ReviewedBy = tr.ReviewedBy
			}
			tr.ID = existing.ID
			return nil
		}
	}
	tr.ID = uuid.New()
	cp := *tr
	m.results[tr.ID] = &cp
	return nil
}

func (m *mockResultRepo) GetByID(_ context.Context, id uuid.UUID) (*TestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.results[id]
	if !ok {
		return nil, apierr.NotFound("Test result not found")
	}
	cp := *tr
	return &cp, nil
}

func (m *mockResultRepo) GetBySample(_ context.Context, sampleID uuid.UUID) (*TestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tr := range m.results {
		if tr.SampleID == sampleID {
			cp := *tr
			return &cp, nil
		}
	}
	return nil, apierr.NotFound("Test result not found")
}

func (m *mockResultRepo) List(_ context.Context, limit, offset int) ([]*TestResult, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*TestResult
	for _, tr := range m.results {
		cp := *tr
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockResultRepo) UpdateRecommendations(_ context.Context, id uuid.UUID, recommendations string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.results[id]
	if !ok {
		return apierr.NotFound("Test result not found")
	}
	tr.Recommendations = &recommendations
	return nil
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	changes []*StatusChange
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) Record(_ context.Context, sc *StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc.ID = uuid.New()
	sc.ChangedAt = time.Now()
	cp := *sc
	m.changes = append(m.changes, &cp)
	return nil
}

func (m *mockHistoryRepo) ListBySample(_ context.Context, sampleID uuid.UUID) ([]*StatusChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*StatusChange
	for _, sc := range m.changes {
		if sc.SampleID == sampleID {
			cp := *sc
			result = append(result, &cp)
		}
	}
	return result, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockSampleRepo, *mockResultRepo, *mockHistoryRepo) {
	samples := newMockSampleRepo()
	results := newMockResultRepo()
	history := newMockHistoryRepo()
	return NewService(samples, results, history, passthroughTx), samples, results, history
}

func registerSample(t *testing.T, svc *Service, barcode string) *Sample {
	t.Helper()
	s, err := svc.Register(context.Background(), RegisterInput{
		Barcode:    barcode,
		TestType:   "LBC",
		CustomerID: uuid.New(),
	}, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

// -- Tests --

func TestRegister(t *testing.T) {
	svc, _, _, history := newTestService()
	s := registerSample(t, svc, "VYU001")
	if s.Status != StatusPending {
		t.Errorf("expected status pending, got %s", s.Status)
	}
	changes, _ := history.ListBySample(context.Background(), s.ID)
	if len(changes) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(changes))
	}
	if changes[0].FromStatus != nil || changes[0].ToStatus != StatusPending {
		t.Errorf("unexpected creation history row: %+v", changes[0])
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Register(context.Background(), RegisterInput{Barcode: "X"}, uuid.New())
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRegister_DuplicateBarcode(t *testing.T) {
	svc, _, _, _ := newTestService()
	registerSample(t, svc, "VYU001")
	_, err := svc.Register(context.Background(), RegisterInput{
		Barcode:    "VYU001",
		TestType:   "HPV",
		CustomerID: uuid.New(),
	}, uuid.New())
	if !apierr.IsKind(err, apierr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestAssignTechnician(t *testing.T) {
	svc, _, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()

	updated, err := svc.AssignTechnician(context.Background(), s.ID, tech)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusProcessing {
		t.Errorf("expected processing, got %s", updated.Status)
	}
	if updated.AssignedTechnician == nil || *updated.AssignedTechnician != tech {
		t.Error("expected sample assigned to claiming technician")
	}
}

func TestAssignTechnician_WrongState(t *testing.T) {
	svc, samples, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	if _, err := svc.AssignTechnician(context.Background(), s.ID, tech); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	other := uuid.New()
	_, err := svc.AssignTechnician(context.Background(), s.ID, other)
	if !apierr.IsKind(err, apierr.KindInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}

	got, _ := samples.GetByID(context.Background(), s.ID)
	if *got.AssignedTechnician != tech {
		t.Error("failed claim must not change the assignment")
	}
}

func TestConcurrentClaim_ExactlyOneWinner(t *testing.T) {
	svc, samples, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	t1, t2 := uuid.New(), uuid.New()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, tech := range []uuid.UUID{t1, t2} {
		wg.Add(1)
		go func(i int, tech uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.AssignTechnician(context.Background(), s.ID, tech)
		}(i, tech)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apierr.IsKind(err, apierr.KindConflict) || apierr.IsKind(err, apierr.KindInvalidTransition):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner, got %d wins %d losses", wins, losses)
	}

	got, _ := samples.GetByID(context.Background(), s.ID)
	if got.Status != StatusProcessing || got.AssignedTechnician == nil {
		t.Fatalf("unexpected final state: %+v", got)
	}
	if *got.AssignedTechnician != t1 && *got.AssignedTechnician != t2 {
		t.Error("final assignee must be one of the racers")
	}
}

func TestSendToImaging(t *testing.T) {
	svc, _, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	svc.AssignTechnician(context.Background(), s.ID, tech)

	updated, err := svc.SendToImaging(context.Background(), s.ID, tech, "adequate cellularity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusImaging {
		t.Errorf("expected imaging, got %s", updated.Status)
	}
	if updated.ProcessingNotes == nil || *updated.ProcessingNotes != "adequate cellularity" {
		t.Error("expected processing notes attached")
	}
}

func TestSendToImaging_WrongActor(t *testing.T) {
	svc, samples, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	svc.AssignTechnician(context.Background(), s.ID, tech)

	_, err := svc.SendToImaging(context.Background(), s.ID, uuid.New(), "")
	if !apierr.IsKind(err, apierr.KindInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}
	got, _ := samples.GetByID(context.Background(), s.ID)
	if got.Status != StatusProcessing {
		t.Error("rejected transition must leave status unchanged")
	}
}

func TestSendToImaging_Twice(t *testing.T) {
	svc, samples, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	svc.AssignTechnician(context.Background(), s.ID, tech)
	if _, err := svc.SendToImaging(context.Background(), s.ID, tech, ""); err != nil {
		t.Fatalf("first send-to-imaging failed: %v", err)
	}

	_, err := svc.SendToImaging(context.Background(), s.ID, tech, "")
	if !apierr.IsKind(err, apierr.KindInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}
	got, _ := samples.GetByID(context.Background(), s.ID)
	if got.Status != StatusImaging {
		t.Errorf("repeat transition must not move state, got %s", got.Status)
	}
}

func TestSendToReview_CreatesResultStub(t *testing.T) {
	svc, _, results, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	svc.AssignTechnician(context.Background(), s.ID, tech)
	svc.SendToImaging(context.Background(), s.ID, tech, "")

	updated, err := svc.SendToReview(context.Background(), s.ID, tech, "atypical cells present")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusReview {
		t.Errorf("expected review, got %s", updated.Status)
	}

	tr, err := results.GetBySample(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("expected result stub: %v", err)
	}
	if !tr.ImagesUploaded {
		t.Error("expected images_uploaded on stub")
	}
	if tr.CompletedBy == nil || *tr.CompletedBy != tech {
		t.Error("expected completed_by set to the technician")
	}
	if tr.ReportGenerated {
		t.Error("stub must not be marked report_generated")
	}
}

func TestFinalize_RequiresDiagnosis(t *testing.T) {
	svc, samples, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	svc.AssignTechnician(context.Background(), s.ID, tech)
	svc.SendToImaging(context.Background(), s.ID, tech, "")
	svc.SendToReview(context.Background(), s.ID, tech, "")

	_, err := svc.Finalize(context.Background(), s.ID, uuid.New(), "", "")
	if !apierr.IsKind(err, apierr.KindInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}
	got, _ := samples.GetByID(context.Background(), s.ID)
	if got.Status != StatusReview {
		t.Error("failed finalize must leave sample in review")
	}
}

func TestFinalize_WrongState(t *testing.T) {
	svc, _, _, _ := newTestService()
	s := registerSample(t, svc, "VYU001")

	_, err := svc.Finalize(context.Background(), s.ID, uuid.New(), "Negative", "")
	if !apierr.IsKind(err, apierr.KindInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	svc, _, results, history := newTestService()
	ctx := context.Background()

	s, err := svc.Register(ctx, RegisterInput{
		Barcode:    "VYU001",
		TestType:   "LBC",
		CustomerID: uuid.New(),
	}, uuid.New())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if s.Status != StatusPending {
		t.Fatalf("expected pending, got %s", s.Status)
	}

	tech := uuid.New()
	if s, err = svc.AssignTechnician(ctx, s.ID, tech); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if s.Status != StatusProcessing || *s.AssignedTechnician != tech {
		t.Fatalf("unexpected state after claim: %+v", s)
	}

	if s, err = svc.SendToImaging(ctx, s.ID, tech, "slide prepared"); err != nil {
		t.Fatalf("send-to-imaging: %v", err)
	}
	if s.Status != StatusImaging {
		t.Fatalf("expected imaging, got %s", s.Status)
	}

	if s, err = svc.SendToReview(ctx, s.ID, tech, ""); err != nil {
		t.Fatalf("send-to-review: %v", err)
	}
	if s.Status != StatusReview {
		t.Fatalf("expected review, got %s", s.Status)
	}
	tr, err := results.GetBySample(ctx, s.ID)
	if err != nil || !tr.ImagesUploaded {
		t.Fatalf("expected result stub with images uploaded, got %+v (%v)", tr, err)
	}

	path := uuid.New()
	if s, err = svc.Finalize(ctx, s.ID, path, "Negative", "routine screening interval"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if s.Status != StatusCompleted || *s.AssignedPathologist != path {
		t.Fatalf("unexpected state after finalize: %+v", s)
	}

	tr, _ = results.GetBySample(ctx, s.ID)
	if tr.Diagnosis == nil || *tr.Diagnosis != "Negative" {
		t.Errorf("expected diagnosis Negative, got %v", tr.Diagnosis)
	}
	if !tr.ReportGenerated {
		t.Error("expected report_generated after finalize")
	}
	if tr.ReviewedBy == nil || *tr.ReviewedBy != path {
		t.Error("expected reviewed_by set to the pathologist")
	}

	changes, _ := history.ListBySample(ctx, s.ID)
	if len(changes) != 5 {
		t.Fatalf("expected 5 history rows, got %d", len(changes))
	}
	want := []string{StatusPending, StatusProcessing, StatusImaging, StatusReview, StatusCompleted}
	for i, sc := range changes {
		if sc.ToStatus != want[i] {
			t.Errorf("history[%d]: expected %s, got %s", i, want[i], sc.ToStatus)
		}
	}
}

func TestAmendRecommendations(t *testing.T) {
	svc, _, results, _ := newTestService()
	ctx := context.Background()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	svc.AssignTechnician(ctx, s.ID, tech)
	svc.SendToImaging(ctx, s.ID, tech, "")
	svc.SendToReview(ctx, s.ID, tech, "")
	svc.Finalize(ctx, s.ID, uuid.New(), "ASC-US", "repeat in 6 months")

	tr, _ := results.GetBySample(ctx, s.ID)
	amended, err := svc.AmendRecommendations(ctx, tr.ID, "colposcopy referral")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amended.Recommendations == nil || *amended.Recommendations != "colposcopy referral" {
		t.Errorf("expected amended recommendations, got %v", amended.Recommendations)
	}
	if amended.Diagnosis == nil || *amended.Diagnosis != "ASC-US" {
		t.Error("amendment must not change the diagnosis")
	}
}

func TestAmendRecommendations_NotCompleted(t *testing.T) {
	svc, _, results, _ := newTestService()
	ctx := context.Background()
	s := registerSample(t, svc, "VYU001")
	tech := uuid.New()
	svc.AssignTechnician(ctx, s.ID, tech)
	svc.SendToImaging(ctx, s.ID, tech, "")
	svc.SendToReview(ctx, s.ID, tech, "")

	tr, _ := results.GetBySample(ctx, s.ID)
	_, err := svc.AmendRecommendations(ctx, tr.ID, "anything")
	if !apierr.IsKind(err, apierr.KindInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}
}

func TestStatusHistory_UnknownSample(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.StatusHistory(context.Background(), uuid.New())
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
