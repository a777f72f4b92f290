package dashboard

// Stats is the aggregate snapshot behind each role's dashboard. Fields that
// do not apply to the requested role are omitted from the response.
type Stats struct {
	Role            string         `json:"role"`
	StatusCounts    map[string]int `json:"status_counts"`
	UrgentCount     int            `json:"urgent_count"`
	TodayAccessions int            `json:"today_accessions,omitempty"`
	PendingReview   int            `json:"pending_review,omitempty"`
	MyAssignments   int            `json:"my_assignments,omitempty"`
	TotalUsers      int            `json:"total_users,omitempty"`
	TotalCustomers  int            `json:"total_customers,omitempty"`
}
