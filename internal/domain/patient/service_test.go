package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/platform/apierr"
)

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apierr.NotFound("Patient not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		cp := *p
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func TestCreate(t *testing.T) {
	svc := NewService(&mockPatientRepo{patients: make(map[uuid.UUID]*Patient)})
	age := 42
	p := &Patient{Name: "Jane Roe", Age: &age}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}
}

func TestCreate_NameRequired(t *testing.T) {
	svc := NewService(&mockPatientRepo{patients: make(map[uuid.UUID]*Patient)})
	err := svc.Create(context.Background(), &Patient{})
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
