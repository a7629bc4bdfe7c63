package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
	"github.com/betsymikaodi/gestion-formation-api/pkg/export"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

// balanceRecomputer recomputes an enrollment's totals from its full ledger.
type balanceRecomputer interface {
	RecomputeBalances(ctx context.Context, enrollmentID string) (*models.Enrollment, error)
	Get(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error)
}

type receiptRenderer interface {
	RenderReceipt(r export.Receipt) ([]byte, error)
}

// CreatePaymentRequest holds the payload for a new ledger entry. Every entry
// must name the course module it pays for.
type CreatePaymentRequest struct {
	EnrollmentID string     `json:"inscriptionId" validate:"required"`
	Amount       float64    `json:"montant" validate:"required,gt=0"`
	Method       string     `json:"modePaiement" validate:"required"`
	Module       string     `json:"module" validate:"required"`
	PaidAt       *time.Time `json:"datePaiement"`
}

// UpdatePaymentRequest holds the mutable fields of a ledger entry. The owning
// enrollment cannot change.
type UpdatePaymentRequest struct {
	Amount float64    `json:"montant" validate:"required,gt=0"`
	Method string     `json:"modePaiement" validate:"required"`
	Module string     `json:"module" validate:"required"`
	PaidAt *time.Time `json:"datePaiement"`
}

// PaymentService owns the paiement ledger. Every mutation ends with a full
// balance recompute on the owning enrollment.
type PaymentService struct {
	repo        paymentRepository
	enrollments balanceRecomputer
	receipts    receiptRenderer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, enrollments balanceRecomputer, receipts receiptRenderer, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, enrollments: enrollments, receipts: receipts, validator: validate, logger: logger}
}

// List returns payments and pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 0 {
		page = 0
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return payments, models.NewPagination(page, size, total), nil
}

// ListByEnrollment returns the full ledger of one inscription.
func (s *PaymentService) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error) {
	payments, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollment payments")
	}
	return payments, nil
}

// Get returns one ledger entry.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Create records a payment against an enrollment. Payments on cancelled
// enrollments are rejected; overpayments are accepted and only clamp the
// remaining balance.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	detail, err := s.enrollments.Get(ctx, req.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if detail.Status == models.EnrollmentStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is cancelled")
	}

	payment := &models.Payment{
		EnrollmentID: req.EnrollmentID,
		Amount:       req.Amount,
		Method:       req.Method,
		Module:       req.Module,
	}
	if req.PaidAt != nil {
		payment.PaidAt = *req.PaidAt
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	if _, err := s.enrollments.RecomputeBalances(ctx, req.EnrollmentID); err != nil {
		return nil, err
	}
	return payment, nil
}

// Update modifies a ledger entry and recomputes the enrollment balances.
func (s *PaymentService) Update(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.Amount = req.Amount
	payment.Method = req.Method
	payment.Module = req.Module
	if req.PaidAt != nil {
		payment.PaidAt = *req.PaidAt
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	if _, err := s.enrollments.RecomputeBalances(ctx, payment.EnrollmentID); err != nil {
		return nil, err
	}
	return payment, nil
}

// Delete removes a ledger entry and recomputes the enrollment balances, which
// may reopen a previously settled balance.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	if _, err := s.enrollments.RecomputeBalances(ctx, payment.EnrollmentID); err != nil {
		return err
	}
	return nil
}

// Receipt renders the PDF receipt for one ledger entry.
func (s *PaymentService) Receipt(ctx context.Context, id string) ([]byte, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail, err := s.enrollments.Get(ctx, payment.EnrollmentID)
	if err != nil {
		return nil, err
	}
	doc, err := s.receipts.RenderReceipt(export.Receipt{
		Number:      fmt.Sprintf("P-%s", payment.ID),
		IssuedAt:    payment.PaidAt,
		StudentName: detail.StudentName,
		CourseName:  detail.CourseName,
		Amount:      payment.Amount,
		Method:      payment.Method,
		Module:      payment.Module,
		TotalPaid:   detail.TotalPaid,
		Remaining:   detail.RemainingBalance,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return doc, nil
}
