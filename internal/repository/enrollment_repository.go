package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mbdsaraiva/academia-api/internal/models"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.enrolled_on, e.status, e.created_at, e.updated_at,
        s.full_name AS student_name, c.name AS course_name, c.registration_fee
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrolled_on":  "e.enrolled_on",
		"student_name": "s.full_name",
		"course_name":  "c.name",
		"status":       "e.status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.enrolled_on"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("%s%s ORDER BY %s %s, e.id LIMIT %d OFFSET %d", enrollmentDetailSelect, clause, orderBy, order, size, offset)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		if isInvalidID(err) {
			return []models.EnrollmentDetail{}, 0, nil
		}
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM enrollments e" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListByStudent returns every enrollment of a student, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return r.listBy(ctx, "e.student_id", studentID)
}

// ListByCourse returns every enrollment in a course, newest first.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	return r.listBy(ctx, "e.course_id", courseID)
}

func (r *EnrollmentRepository) listBy(ctx context.Context, column, id string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf("%s WHERE %s = $1 ORDER BY e.enrolled_on DESC, e.id", enrollmentDetailSelect, column)
	enrollments := make([]models.EnrollmentDetail, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, id); err != nil {
		if isInvalidID(err) {
			return enrollments, nil
		}
		return nil, fmt.Errorf("list enrollments by %s: %w", column, err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment with its student and course context.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+" WHERE e.id = $1", id); err != nil {
		return nil, mapInvalidID(err)
	}
	return &detail, nil
}

// Exists reports whether the student is already enrolled in the course, optionally excluding an enrollment.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2"
	args := []interface{}{studentID, courseID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows || isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	now := time.Now().UTC()
	if enrollment.EnrolledOn.IsZero() {
		enrollment.EnrolledOn = now.Truncate(24 * time.Hour)
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrolled_on, status, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :enrolled_on, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", mapUniqueViolation(err))
	}
	return nil
}

// Update modifies an existing enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET student_id = :student_id, course_id = :course_id, enrolled_on = :enrolled_on, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("update enrollment: %w", mapInvalidID(mapUniqueViolation(err)))
	}
	return nil
}

// UpdateStatus sets the payment status of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", mapInvalidID(err))
	}
	return expectAffected(res)
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", mapInvalidID(err))
	}
	return expectAffected(res)
}
