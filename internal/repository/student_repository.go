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

const studentColumns = "s.id, s.full_name, s.email, s.cpf, s.enrolled_on, s.created_at, s.updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters together with their
// financial totals, computed in the same grouped query.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(s.full_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.CPF != "" {
		conditions = append(conditions, fmt.Sprintf("s.cpf = $%d", len(args)+1))
		args = append(args, filter.CPF)
	}
	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"full_name":   "s.full_name",
		"email":       "s.email",
		"enrolled_on": "s.enrolled_on",
		"created_at":  "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.enrolled_on"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s,
        COUNT(e.id) AS total_enrollments,
        COALESCE(SUM(CASE WHEN e.status = 'PAID' THEN c.registration_fee END), 0) AS total_paid,
        COALESCE(SUM(CASE WHEN e.status = 'PENDING' THEN c.registration_fee END), 0) AS total_owed
        FROM students s LEFT JOIN enrollments e ON e.student_id = s.id LEFT JOIN courses c ON c.id = e.course_id
        WHERE %s GROUP BY s.id ORDER BY %s %s, s.id LIMIT %d OFFSET %d`, studentColumns, where, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students s WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, mapInvalidID(err)
	}
	return &student, nil
}

// ExistsByEmail checks if a student with the given email exists optionally excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = LOWER($1)", email, excludeID)
}

// ExistsByCPF checks if a student with the given cpf exists optionally excluding an ID.
func (r *StudentRepository) ExistsByCPF(ctx context.Context, cpf string, excludeID string) (bool, error) {
	return r.exists(ctx, "cpf = $1", cpf, excludeID)
}

func (r *StudentRepository) exists(ctx context.Context, condition, value, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE " + condition
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows || isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check student uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.EnrolledOn.IsZero() {
		student.EnrolledOn = now.Truncate(24 * time.Hour)
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, full_name, email, cpf, enrolled_on, created_at, updated_at)
        VALUES (:id, :full_name, :email, :cpf, :enrolled_on, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", mapUniqueViolation(err))
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, email = :email, cpf = :cpf, enrolled_on = :enrolled_on, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", mapInvalidID(mapUniqueViolation(err)))
	}
	return nil
}

// Delete removes a student. Enrollments are removed by the ON DELETE CASCADE constraint.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", mapInvalidID(err))
	}
	return expectAffected(res)
}

// expectAffected returns sql.ErrNoRows when a write touched nothing.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
