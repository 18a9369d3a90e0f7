package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mbdsaraiva/academia-api/internal/models"
)

const studentRollupQuery = `SELECT s.id, s.full_name, s.email, s.cpf, s.enrolled_on,
        COUNT(e.id) AS total_enrollments,
        COUNT(CASE WHEN e.status = 'PAID' THEN 1 END) AS paid_enrollments,
        COUNT(CASE WHEN e.status = 'PENDING' THEN 1 END) AS pending_enrollments,
        COALESCE(SUM(CASE WHEN e.status = 'PAID' THEN c.registration_fee ELSE 0 END), 0) AS total_paid,
        COALESCE(SUM(CASE WHEN e.status = 'PENDING' THEN c.registration_fee ELSE 0 END), 0) AS total_owed,
        COALESCE(SUM(c.registration_fee), 0) AS grand_total
        FROM students s
        LEFT JOIN enrollments e ON e.student_id = s.id
        LEFT JOIN courses c ON c.id = e.course_id
        GROUP BY s.id, s.full_name, s.email, s.cpf, s.enrolled_on
        ORDER BY grand_total DESC`

const courseRollupQuery = `SELECT c.id, c.name, c.workload_hours, c.registration_fee, c.status,
        COUNT(e.id) AS total_enrollments,
        COUNT(CASE WHEN e.status = 'PAID' THEN 1 END) AS paid_enrollments,
        COUNT(CASE WHEN e.status = 'PENDING' THEN 1 END) AS pending_enrollments,
        COALESCE(SUM(CASE WHEN e.status = 'PAID' THEN c.registration_fee ELSE 0 END), 0) AS total_collected
        FROM courses c
        LEFT JOIN enrollments e ON e.course_id = c.id
        GROUP BY c.id, c.name, c.workload_hours, c.registration_fee, c.status
        ORDER BY total_enrollments DESC`

const enrollmentTotalsQuery = `SELECT COUNT(e.id) AS total,
        COUNT(CASE WHEN e.status = 'PAID' THEN 1 END) AS paid,
        COUNT(CASE WHEN e.status = 'PENDING' THEN 1 END) AS pending,
        COALESCE(SUM(CASE WHEN e.status = 'PAID' THEN c.registration_fee ELSE 0 END), 0) AS total_paid,
        COALESCE(SUM(CASE WHEN e.status = 'PENDING' THEN c.registration_fee ELSE 0 END), 0) AS total_pending
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id`

const catalogCountsQuery = `SELECT (SELECT COUNT(*) FROM students) AS students,
        (SELECT COUNT(*) FROM courses WHERE status = 'ACTIVE') AS active_courses`

// ReportRepository runs the read-only aggregation queries behind reports and the dashboard.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// StudentRollups returns one financial row per student, largest grand total first.
// Students without enrollments are included with zero totals.
func (r *ReportRepository) StudentRollups(ctx context.Context) ([]models.StudentRollup, error) {
	rows := make([]models.StudentRollup, 0)
	if err := r.db.SelectContext(ctx, &rows, studentRollupQuery); err != nil {
		return nil, fmt.Errorf("student rollups: %w", err)
	}
	return rows, nil
}

// CourseRollups returns one row per course, most enrollments first. A positive
// limit truncates the result.
func (r *ReportRepository) CourseRollups(ctx context.Context, limit int) ([]models.CourseRollup, error) {
	query := courseRollupQuery
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows := make([]models.CourseRollup, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("course rollups: %w", err)
	}
	return rows, nil
}

// EnrollmentTotals returns global enrollment counters and amounts.
func (r *ReportRepository) EnrollmentTotals(ctx context.Context) (*models.EnrollmentTotals, error) {
	var totals models.EnrollmentTotals
	if err := r.db.GetContext(ctx, &totals, enrollmentTotalsQuery); err != nil {
		return nil, fmt.Errorf("enrollment totals: %w", err)
	}
	return &totals, nil
}

// CatalogCounts returns the number of students and active courses.
func (r *ReportRepository) CatalogCounts(ctx context.Context) (*models.CatalogCounts, error) {
	var counts models.CatalogCounts
	if err := r.db.GetContext(ctx, &counts, catalogCountsQuery); err != nil {
		return nil, fmt.Errorf("catalog counts: %w", err)
	}
	return &counts, nil
}
