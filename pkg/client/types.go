package client

import (
	"time"

	"github.com/google/uuid"
)

// Wire types mirroring the server's JSON responses.

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

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
	PatientName         *string    `json:"patient_name,omitempty"`
	LabName             *string    `json:"lab_name,omitempty"`
	CustomerName        string     `json:"customer_name,omitempty"`
}

type TestResult struct {
	ID              uuid.UUID  `json:"id"`
	SampleID        uuid.UUID  `json:"sample_id"`
	Findings        *string    `json:"findings"`
	Diagnosis       *string    `json:"diagnosis"`
	Recommendations *string    `json:"recommendations"`
	ImagesUploaded  bool       `json:"images_uploaded"`
	ReportGenerated bool       `json:"report_generated"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by"`
}

type StatusChange struct {
	ID         uuid.UUID `json:"id"`
	SampleID   uuid.UUID `json:"sample_id"`
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  uuid.UUID `json:"changed_by"`
	Notes      *string   `json:"notes"`
	ChangedAt  time.Time `json:"changed_at"`
}

type Lab struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Active  bool      `json:"active"`
}

type Patient struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Age    *int      `json:"age"`
	Gender *string   `json:"gender"`
}

type Customer struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Contact  string    `json:"contact"`
	Tier     string    `json:"tier"`
	Location string    `json:"location"`
}

type BillingRecord struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	SampleID      *uuid.UUID `json:"sample_id"`
	Amount        float64    `json:"amount"`
	PaymentStatus string     `json:"payment_status"`
	CreatedAt     time.Time  `json:"created_at"`
}

type PricingTier struct {
	ID          uuid.UUID `json:"id"`
	TierName    string    `json:"tier_name"`
	LBCPrice    float64   `json:"lbc_price"`
	HPVPrice    float64   `json:"hpv_price"`
	CoTestPrice float64   `json:"co_test_price"`
}

type DashboardStats struct {
	Role            string         `json:"role"`
	StatusCounts    map[string]int `json:"status_counts"`
	UrgentCount     int            `json:"urgent_count"`
	TodayAccessions int            `json:"today_accessions,omitempty"`
	PendingReview   int            `json:"pending_review,omitempty"`
	MyAssignments   int            `json:"my_assignments,omitempty"`
	TotalUsers      int            `json:"total_users,omitempty"`
	TotalCustomers  int            `json:"total_customers,omitempty"`
}

type RegisterSampleInput struct {
	Barcode     string     `json:"barcode"`
	TestType    string     `json:"test_type"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	LabID       *uuid.UUID `json:"lab_id,omitempty"`
	Urgent      bool       `json:"urgent"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
}

// page is the server's pagination envelope.
type page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}
