package models

import "time"

// Course represents a formation from the training catalog.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"nom"`
	Description  string    `db:"description" json:"description"`
	Fee          float64   `db:"fee" json:"frais"`
	DurationDays int       `db:"duration_days" json:"duree"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter provides filters for listing courses.
type CourseFilter struct {
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortDirection string
}

// PopularCourse pairs a course with its enrollment count.
type PopularCourse struct {
	Name            string `db:"name" json:"nom"`
	EnrollmentCount int    `db:"enrollment_count" json:"nombreInscrits"`
}
