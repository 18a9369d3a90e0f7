package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentRollup is one row of the per-student financial report.
type StudentRollup struct {
	ID                 string    `db:"id" json:"id"`
	FullName           string    `db:"full_name" json:"full_name"`
	Email              string    `db:"email" json:"email"`
	CPF                string    `db:"cpf" json:"cpf"`
	EnrolledOn         time.Time `db:"enrolled_on" json:"enrolled_on"`
	TotalEnrollments   int       `db:"total_enrollments" json:"total_enrollments"`
	PaidEnrollments    int       `db:"paid_enrollments" json:"paid_enrollments"`
	PendingEnrollments int       `db:"pending_enrollments" json:"pending_enrollments"`
	TotalPaid          Money     `db:"total_paid" json:"total_paid"`
	TotalOwed          Money     `db:"total_owed" json:"total_owed"`
	GrandTotal         Money     `db:"grand_total" json:"grand_total"`
}

// CourseRollup is one row of the per-course enrollment report.
type CourseRollup struct {
	ID                 string       `db:"id" json:"id"`
	Name               string       `db:"name" json:"name"`
	WorkloadHours      int          `db:"workload_hours" json:"workload_hours"`
	RegistrationFee    Money        `db:"registration_fee" json:"registration_fee"`
	Status             CourseStatus `db:"status" json:"status"`
	TotalEnrollments   int          `db:"total_enrollments" json:"total_enrollments"`
	PaidEnrollments    int          `db:"paid_enrollments" json:"paid_enrollments"`
	PendingEnrollments int          `db:"pending_enrollments" json:"pending_enrollments"`
	TotalCollected     Money        `db:"total_collected" json:"total_collected"`
}

// EnrollmentTotals holds the raw global counters read in a single query.
type EnrollmentTotals struct {
	Total        int             `db:"total"`
	Paid         int             `db:"paid"`
	Pending      int             `db:"pending"`
	TotalPaid    decimal.Decimal `db:"total_paid"`
	TotalPending decimal.Decimal `db:"total_pending"`
}

// EnrollmentSummary is the global financial summary of all enrollments.
type EnrollmentSummary struct {
	TotalEnrollments   int     `json:"total_enrollments"`
	PaidEnrollments    int     `json:"paid_enrollments"`
	PendingEnrollments int     `json:"pending_enrollments"`
	PercentPaid        float64 `json:"percent_paid"`
	TotalPaid          Money   `json:"total_paid"`
	TotalPending       Money   `json:"total_pending"`
	GrandTotal         Money   `json:"grand_total"`
}

// Summarize converts raw totals into the public summary.
func (t EnrollmentTotals) Summarize() EnrollmentSummary {
	return EnrollmentSummary{
		TotalEnrollments:   t.Total,
		PaidEnrollments:    t.Paid,
		PendingEnrollments: t.Pending,
		PercentPaid:        Percent(t.Paid, t.Total),
		TotalPaid:          NewMoney(t.TotalPaid),
		TotalPending:       NewMoney(t.TotalPending),
		GrandTotal:         NewMoney(t.TotalPaid.Add(t.TotalPending)),
	}
}

// CatalogCounts holds entity counts shown on the dashboard.
type CatalogCounts struct {
	Students      int `db:"students"`
	ActiveCourses int `db:"active_courses"`
}

// SystemMetrics is the JSON view of the service counters.
type SystemMetrics struct {
	RequestsTotal uint64            `json:"requests_total"`
	CacheHits     uint64            `json:"cache_hits"`
	CacheMisses   uint64            `json:"cache_misses"`
	CacheHitRatio float64           `json:"cache_hit_ratio"`
	ReportsServed map[string]uint64 `json:"reports_served"`
	WritesTotal   uint64            `json:"writes_total"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
