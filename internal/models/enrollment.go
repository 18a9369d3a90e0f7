package models

import (
	"strings"
	"time"
)

// EnrollmentStatus represents the payment state of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPaid    EnrollmentStatus = "PAID"
	EnrollmentStatusPending EnrollmentStatus = "PENDING"
)

// ParseEnrollmentStatus upper-cases raw and reports whether it is a known status.
func ParseEnrollmentStatus(raw string) (EnrollmentStatus, bool) {
	status := EnrollmentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case EnrollmentStatusPaid, EnrollmentStatusPending:
		return status, true
	default:
		return status, false
	}
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	EnrolledOn time.Time        `db:"enrolled_on" json:"enrolled_on"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// MarkPaid settles the enrollment. It reports whether the status changed.
func (e *Enrollment) MarkPaid() bool {
	if e.Status == EnrollmentStatusPaid {
		return false
	}
	e.Status = EnrollmentStatusPaid
	return true
}

// MarkPending reverts the enrollment to unpaid. It reports whether the status changed.
func (e *Enrollment) MarkPending() bool {
	if e.Status == EnrollmentStatusPending {
		return false
	}
	e.Status = EnrollmentStatusPending
	return true
}

// IsPaid reports whether the enrollment is settled.
func (e Enrollment) IsPaid() bool {
	return e.Status == EnrollmentStatusPaid
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName     string `db:"student_name" json:"student_name"`
	CourseName      string `db:"course_name" json:"course_name"`
	RegistrationFee Money  `db:"registration_fee" json:"registration_fee"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
