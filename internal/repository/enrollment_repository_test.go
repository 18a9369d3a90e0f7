package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbdsaraiva/academia-api/internal/models"
)

var enrollmentDetailColumns = []string{"id", "student_id", "course_id", "enrolled_on", "status", "created_at", "updated_at", "student_name", "course_name", "registration_fee"}

func TestEnrollmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(enrollmentDetailColumns).
		AddRow("enr-1", "stu-1", "c1", now, "PENDING", now, now, "Ana", "Go", "200.00")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN courses c ON c.id = e.course_id WHERE e.student_id = $1 AND e.status = $2 ORDER BY e.enrolled_on DESC, e.id LIMIT 20 OFFSET 0")).
		WithArgs("stu-1", models.EnrollmentStatusPending).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments e WHERE e.student_id = $1 AND e.status = $2")).
		WithArgs("stu-1", models.EnrollmentStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.EnrollmentFilter{StudentID: "stu-1", Status: models.EnrollmentStatusPending})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Go", items[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.course_id = $1 ORDER BY e.enrolled_on DESC, e.id")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(enrollmentDetailColumns))

	items, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND id <> $3 LIMIT 1")).
		WithArgs("stu-1", "c1", "enr-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), "stu-1", "c1", "enr-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "enrollments_student_course_key"})

	enrollment := &models.Enrollment{StudentID: "stu-1", CourseID: "c1"}
	err := repo.Create(context.Background(), enrollment)
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
}

func TestEnrollmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("enr-1", models.EnrollmentStatusPaid, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "enr-1", models.EnrollmentStatusPaid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapUniqueViolationPassthrough(t *testing.T) {
	other := &pq.Error{Code: "23503", Constraint: "enrollments_course_id_fkey"}
	assert.Equal(t, error(other), mapUniqueViolation(other))

	unknown := &pq.Error{Code: "23505", Constraint: "something_else"}
	assert.Equal(t, error(unknown), mapUniqueViolation(unknown))
}

func TestEnrollmentRepositoryMalformedIDIsNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	invalid := &pq.Error{Code: "22P02"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1")).
		WithArgs("x").
		WillReturnError(invalid)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2")).
		WithArgs("x", models.EnrollmentStatusPaid, sqlmock.AnyArg()).
		WillReturnError(invalid)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1 ORDER BY")).
		WithArgs("x").
		WillReturnError(invalid)

	_, err := repo.FindByID(context.Background(), "x")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	err = repo.UpdateStatus(context.Background(), "x", models.EnrollmentStatusPaid)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	items, total, err := repo.List(context.Background(), models.EnrollmentFilter{StudentID: "x"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapInvalidIDPassthrough(t *testing.T) {
	other := &pq.Error{Code: "23503"}
	assert.Equal(t, error(other), mapInvalidID(other))
	assert.ErrorIs(t, mapInvalidID(&pq.Error{Code: "22P02"}), sql.ErrNoRows)
}
