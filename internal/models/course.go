package models

import (
	"strings"
	"time"
)

// CourseStatus indicates whether a course accepts new enrollments.
type CourseStatus string

// Supported course statuses.
const (
	CourseStatusActive   CourseStatus = "ACTIVE"
	CourseStatusInactive CourseStatus = "INACTIVE"
)

// ParseCourseStatus upper-cases raw and reports whether it is a known status.
func ParseCourseStatus(raw string) (CourseStatus, bool) {
	status := CourseStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case CourseStatusActive, CourseStatusInactive:
		return status, true
	default:
		return status, false
	}
}

// Course is an offering students can enroll in against a registration fee.
type Course struct {
	ID              string       `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	WorkloadHours   int          `db:"workload_hours" json:"workload_hours"`
	RegistrationFee Money        `db:"registration_fee" json:"registration_fee"`
	Status          CourseStatus `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the course accepts enrollments.
func (c Course) IsActive() bool {
	return c.Status == CourseStatusActive
}

// CourseDetail is a course row carrying enrollment counts and revenue.
type CourseDetail struct {
	Course
	TotalEnrollments int   `db:"total_enrollments" json:"total_enrollments"`
	PaidEnrollments  int   `db:"paid_enrollments" json:"paid_enrollments"`
	TotalCollected   Money `db:"total_collected" json:"total_collected"`
}

// CourseFilter defines filter criteria for listing courses.
type CourseFilter struct {
	Status    CourseStatus
	Name      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
