package models

import "time"

// Student represents an apprenant registered with the training center.
type Student struct {
	ID        string     `db:"id" json:"id"`
	LastName  string     `db:"last_name" json:"nom"`
	FirstName string     `db:"first_name" json:"prenom"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"telephone,omitempty"`
	Address   string     `db:"address" json:"adresse,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"dateNaissance,omitempty"`
	CIN       string     `db:"cin" json:"cin"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortDirection string
}

// StudentDetail contains student information with enrollment context.
type StudentDetail struct {
	Student
	Enrollments []EnrollmentDetail `json:"inscriptions,omitempty"`
}

// ImportRowError reports why one interchange row was rejected.
type ImportRowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

// ImportReport summarises a bulk import, tolerating partial failure.
type ImportReport struct {
	Total    int              `json:"total"`
	Inserted int              `json:"inserted"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}
