package registry

import (
	"time"

	"github.com/google/uuid"
)

// Sample lifecycle states. A sample only ever moves forward; the allowed
// steps live in sampleTransitions in service.go.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusImaging    = "imaging"
	StatusReview     = "review"
	StatusCompleted  = "completed"
)

type Sample struct {
	ID                  uuid.UUID  `json:"id"`
	Barcode             string     `json:"barcode"`
	TestType            string     `json:"test_type"`
	Status              string     `json:"status"`
	Urgent              bool       `json:"urgent"`
	CustomerID          uuid.UUID  `json:"customer_id"`
	PatientID           *uuid.UUID `json:"patient_id"`
	LabID               *uuid.UUID `json:"lab_id"`
	AssignedTechnician  *uuid.UUID `json:"assigned_technician"`
	AssignedPathologist *uuid.UUID `json:"assigned_pathologist"`
	ProcessingNotes     *string    `json:"processing_notes"`
	CollectedAt         time.Time  `json:"collected_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Joined display fields, populated by list queries.
	PatientName  *string `json:"patient_name,omitempty"`
	LabName      *string `json:"lab_name,omitempty"`
	CustomerName string  `json:"customer_name,omitempty"`
}

// TestResult holds the findings and the final report for a sample. One row
// per sample; the imaging step creates the stub, finalize fills it in.
type TestResult struct {
	ID              uuid.UUID  `json:"id"`
	SampleID        uuid.UUID  `json:"sample_id"`
	Findings        *string    `json:"findings"`
	Diagnosis       *string    `json:"diagnosis"`
	Recommendations *string    `json:"recommendations"`
	ImagesUploaded  bool       `json:"images_uploaded"`
	ReportGenerated bool       `json:"report_generated"`
	CompletedBy     *uuid.UUID `json:"completed_by"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StatusChange is one row of a sample's audit trail. FromStatus is nil for
// the creation event.
type StatusChange struct {
	ID         uuid.UUID `json:"id"`
	SampleID   uuid.UUID `json:"sample_id"`
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  uuid.UUID `json:"changed_by"`
	Notes      *string   `json:"notes"`
	ChangedAt  time.Time `json:"changed_at"`
}

type RegisterInput struct {
	Barcode     string     `json:"barcode"`
	TestType    string     `json:"test_type"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	PatientID   *uuid.UUID `json:"patient_id"`
	LabID       *uuid.UUID `json:"lab_id"`
	Urgent      bool       `json:"urgent"`
	CollectedAt *time.Time `json:"collected_at"`
}

// ListFilter narrows sample listings. Nil uuid fields mean "any".
type ListFilter struct {
	Status        string
	CustomerID    uuid.UUID
	TechnicianID  uuid.UUID
	PathologistID uuid.UUID
	UrgentFirst   bool
}
