package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
)

// Session is an authenticated connection to the API. It is safe for
// concurrent use. When the server rejects the token (expired or revoked) the
// session closes itself and every later call returns ErrSessionClosed.
type Session struct {
	client *Client
	token  string
	user   UserSummary

	mu     sync.Mutex
	closed bool
}

// User returns the identity the session was opened for.
func (s *Session) User() UserSummary { return s.user }

// Close tears the session down client-side. Tokens are stateless, so there
// is nothing to revoke server-side.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) do(ctx context.Context, method, path string, in, out interface{}) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	token := s.token
	s.mu.Unlock()

	err := s.client.do(ctx, method, path, token, in, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		// Token no longer accepted: tear the session down.
		s.Close()
	}
	return err
}

// -- Samples --

type ListSamplesOptions struct {
	Status string
	Mine   bool
}

func (s *Session) Samples(ctx context.Context, opts ListSamplesOptions) ([]Sample, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Mine {
		q.Set("mine", "true")
	}
	path := "/api/samples"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var p page[Sample]
	if err := s.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (s *Session) Sample(ctx context.Context, id uuid.UUID) (*Sample, error) {
	var out Sample
	if err := s.do(ctx, http.MethodGet, "/api/samples/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RegisterSample(ctx context.Context, in RegisterSampleInput) (*Sample, error) {
	var out Sample
	if err := s.do(ctx, http.MethodPost, "/api/samples", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AssignTechnician(ctx context.Context, id uuid.UUID) (*Sample, error) {
	var out Sample
	if err := s.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/samples/%s/assign-technician", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SendToImaging(ctx context.Context, id uuid.UUID, notes string) (*Sample, error) {
	var out Sample
	body := map[string]string{"notes": notes}
	if err := s.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/samples/%s/send-to-imaging", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SendToReview(ctx context.Context, id uuid.UUID, findings string) (*Sample, error) {
	var out Sample
	body := map[string]string{"findings": findings}
	if err := s.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/samples/%s/send-to-review", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) FinalizeSample(ctx context.Context, id uuid.UUID, diagnosis, recommendations string) (*Sample, error) {
	var out Sample
	body := map[string]string{"diagnosis": diagnosis, "recommendations": recommendations}
	if err := s.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/samples/%s/finalize", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) StatusHistory(ctx context.Context, id uuid.UUID) ([]StatusChange, error) {
	var out []StatusChange
	if err := s.do(ctx, http.MethodGet,
		fmt.Sprintf("/api/samples/%s/status-history", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) SampleResult(ctx context.Context, id uuid.UUID) (*TestResult, error) {
	var out TestResult
	if err := s.do(ctx, http.MethodGet,
		fmt.Sprintf("/api/samples/%s/result", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -- Other resources --

func (s *Session) TestResults(ctx context.Context) ([]TestResult, error) {
	var p page[TestResult]
	if err := s.do(ctx, http.MethodGet, "/api/test-results", nil, &p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (s *Session) Labs(ctx context.Context) ([]Lab, error) {
	var p page[Lab]
	if err := s.do(ctx, http.MethodGet, "/api/labs", nil, &p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (s *Session) Patients(ctx context.Context) ([]Patient, error) {
	var p page[Patient]
	if err := s.do(ctx, http.MethodGet, "/api/patients", nil, &p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (s *Session) CreatePatient(ctx context.Context, name string, age *int, gender *string) (*Patient, error) {
	var out Patient
	body := map[string]interface{}{"name": name, "age": age, "gender": gender}
	if err := s.do(ctx, http.MethodPost, "/api/patients", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Customers(ctx context.Context) ([]Customer, error) {
	var p page[Customer]
	if err := s.do(ctx, http.MethodGet, "/api/customers", nil, &p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (s *Session) BillingRecords(ctx context.Context) ([]BillingRecord, error) {
	var p page[BillingRecord]
	if err := s.do(ctx, http.MethodGet, "/api/billing-records", nil, &p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (s *Session) PricingTiers(ctx context.Context) ([]PricingTier, error) {
	var out []PricingTier
	if err := s.do(ctx, http.MethodGet, "/api/pricing-tiers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) Dashboard(ctx context.Context, role string) (*DashboardStats, error) {
	var out DashboardStats
	if err := s.do(ctx, http.MethodGet, "/api/dashboard/"+role, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
