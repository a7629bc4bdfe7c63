package models

import "time"

// Payment is one paiement ledger entry attributed to an enrollment. Module
// labels which part of the course the payment covers and is always set.
type Payment struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"inscriptionId"`
	PaidAt       time.Time `db:"paid_at" json:"datePaiement"`
	Amount       float64   `db:"amount" json:"montant"`
	Method       string    `db:"method" json:"modePaiement"`
	Module       string    `db:"module" json:"module"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentFilter provides filters for listing payments.
type PaymentFilter struct {
	EnrollmentID  string
	Method        string
	Page          int
	PageSize      int
	SortBy        string
	SortDirection string
}
