package models

import "time"

// EnrollmentStatus represents the lifecycle of an inscription.
type EnrollmentStatus string

// Possible enrollment statuses. CANCELLED is terminal.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusConfirmed EnrollmentStatus = "CONFIRMED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusConfirmed, EnrollmentStatusCancelled:
		return true
	default:
		return false
	}
}

// Enrollment captures a student's registration to a course together with the
// balance derived from its payment ledger. TotalPaid and RemainingBalance are
// always recomputed from the full ledger, never adjusted incrementally.
type Enrollment struct {
	ID               string           `db:"id" json:"id"`
	StudentID        string           `db:"student_id" json:"apprenantId"`
	CourseID         string           `db:"course_id" json:"formationId"`
	EnrolledAt       time.Time        `db:"enrolled_at" json:"dateInscription"`
	RegistrationFee  float64          `db:"registration_fee" json:"droitInscription"`
	Status           EnrollmentStatus `db:"status" json:"statut"`
	TotalPaid        float64          `db:"total_paid" json:"montantTotalPaye"`
	RemainingBalance float64          `db:"remaining_balance" json:"montantRestant"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student, course and ledger info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string    `db:"student_name" json:"apprenantNom"`
	StudentCIN  string    `db:"student_cin" json:"apprenantCin"`
	CourseName  string    `db:"course_name" json:"formationNom"`
	Payments    []Payment `json:"paiements,omitempty"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID     string
	CourseID      string
	Status        EnrollmentStatus
	Page          int
	PageSize      int
	SortBy        string
	SortDirection string
}
