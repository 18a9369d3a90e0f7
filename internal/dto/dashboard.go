package dto

import (
	"time"

	"github.com/mbdsaraiva/academia-api/internal/models"
)

// DashboardResponse captures the aggregated dashboard payload.
type DashboardResponse struct {
	TotalStudents      int                   `json:"total_students"`
	ActiveCourses      int                   `json:"active_courses"`
	TotalEnrollments   int                   `json:"total_enrollments"`
	PaidEnrollments    int                   `json:"paid_enrollments"`
	PendingEnrollments int                   `json:"pending_enrollments"`
	TotalPaid          models.Money          `json:"total_paid"`
	TotalPending       models.Money          `json:"total_pending"`
	GrandTotal         models.Money          `json:"grand_total"`
	PercentPaid        float64               `json:"percent_paid"`
	PercentPending     float64               `json:"percent_pending"`
	PopularCourses     []models.CourseRollup `json:"popular_courses"`
	GeneratedAt        time.Time             `json:"generated_at"`
}
