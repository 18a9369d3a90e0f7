package models

import "time"

// Student represents a person registered in the institution.
type Student struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	CPF        string    `db:"cpf" json:"cpf"`
	EnrolledOn time.Time `db:"enrolled_on" json:"enrolled_on"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail is a student row carrying its derived financial totals.
type StudentDetail struct {
	Student
	TotalEnrollments int   `db:"total_enrollments" json:"total_enrollments"`
	TotalPaid        Money `db:"total_paid" json:"total_paid"`
	TotalOwed        Money `db:"total_owed" json:"total_owed"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Name      string
	CPF       string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
