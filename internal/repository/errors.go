package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation           = pq.ErrorCode("23505")
	invalidTextRepresentation = pq.ErrorCode("22P02")
)

// Sentinel errors surfaced when a unique constraint rejects a write.
var (
	ErrDuplicateEnrollment = errors.New("student already enrolled in course")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateCPF        = errors.New("cpf already registered")
)

var constraintErrors = map[string]error{
	"enrollments_student_course_key": ErrDuplicateEnrollment,
	"students_email_key":             ErrDuplicateEmail,
	"students_cpf_key":               ErrDuplicateCPF,
}

// mapUniqueViolation translates a Postgres unique violation into a sentinel.
// Any other error is returned unchanged.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	if sentinel, ok := constraintErrors[pqErr.Constraint]; ok {
		return sentinel
	}
	return err
}

// isInvalidID reports whether Postgres rejected a value that cannot be cast to
// the column type, which for the uuid keys means the row cannot exist.
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

// mapInvalidID turns a malformed id into sql.ErrNoRows.
func mapInvalidID(err error) error {
	if isInvalidID(err) {
		return sql.ErrNoRows
	}
	return err
}
