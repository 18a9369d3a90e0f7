package dto

import "github.com/mbdsaraiva/academia-api/internal/models"

// StudentRollupResponse wraps the per-student financial report.
type StudentRollupResponse struct {
	Message       string                 `json:"message"`
	TotalStudents int                    `json:"total_students"`
	Students      []models.StudentRollup `json:"students"`
}

// CourseRollupResponse wraps the per-course enrollment report.
type CourseRollupResponse struct {
	Message      string                `json:"message"`
	TotalCourses int                   `json:"total_courses"`
	Courses      []models.CourseRollup `json:"courses"`
}
