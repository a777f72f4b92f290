package dashboard

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/domain/identity"
	"github.com/cytolab/lims/internal/platform/apierr"
)

type mockStatsRepo struct {
	scopedCalls []uuid.UUID
}

func (m *mockStatsRepo) StatusCounts(_ context.Context, customerID uuid.UUID) (map[string]int, error) {
	m.scopedCalls = append(m.scopedCalls, customerID)
	return map[string]int{"pending": 3, "review": 1}, nil
}

func (m *mockStatsRepo) UrgentCount(_ context.Context, customerID uuid.UUID) (int, error) {
	return 2, nil
}

func (m *mockStatsRepo) TodayAccessions(_ context.Context) (int, error) { return 7, nil }
func (m *mockStatsRepo) PendingReview(_ context.Context) (int, error)   { return 4, nil }
func (m *mockStatsRepo) UserCount(_ context.Context) (int, error)       { return 12, nil }
func (m *mockStatsRepo) CustomerCount(_ context.Context) (int, error)   { return 5, nil }

func (m *mockStatsRepo) TechnicianAssignments(_ context.Context, technicianID uuid.UUID) (int, error) {
	return 6, nil
}

func (m *mockStatsRepo) PathologistAssignments(_ context.Context, pathologistID uuid.UUID) (int, error) {
	return 3, nil
}

func TestStatsFor_Admin(t *testing.T) {
	svc := NewService(&mockStatsRepo{})
	stats, err := svc.StatsFor(context.Background(), identity.RoleAdmin, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalUsers != 12 || stats.TotalCustomers != 5 {
		t.Errorf("expected admin totals, got %+v", stats)
	}
	if stats.StatusCounts["pending"] != 3 {
		t.Errorf("expected status counts, got %+v", stats.StatusCounts)
	}
	if stats.PendingReview != 4 {
		t.Errorf("expected pending review count, got %d", stats.PendingReview)
	}
}

func TestStatsFor_Pathologist(t *testing.T) {
	svc := NewService(&mockStatsRepo{})
	stats, err := svc.StatsFor(context.Background(), identity.RolePathologist, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.PendingReview != 4 || stats.MyAssignments != 3 {
		t.Errorf("unexpected pathologist stats: %+v", stats)
	}
	if stats.TotalUsers != 0 {
		t.Error("non-admin dashboards must not carry user totals")
	}
}

func TestStatsFor_CustomerScoped(t *testing.T) {
	repo := &mockStatsRepo{}
	svc := NewService(repo)
	actor := uuid.New()

	if _, err := svc.StatsFor(context.Background(), identity.RoleCustomer, actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.scopedCalls) != 1 || repo.scopedCalls[0] != actor {
		t.Error("customer dashboard must scope counts to the actor")
	}

	repo.scopedCalls = nil
	if _, err := svc.StatsFor(context.Background(), identity.RoleTechnician, actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.scopedCalls) != 1 || repo.scopedCalls[0] != uuid.Nil {
		t.Error("staff dashboards must see unscoped counts")
	}
}

func TestStatsFor_UnknownRole(t *testing.T) {
	svc := NewService(&mockStatsRepo{})
	_, err := svc.StatsFor(context.Background(), "superuser", uuid.New())
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
