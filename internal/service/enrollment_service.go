package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	UpdateBalances(ctx context.Context, id string, totalPaid, remaining float64) error
	SumPayments(ctx context.Context, id string) (float64, error)
	Delete(ctx context.Context, id string) error
}

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type enrollmentPaymentRepository interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error)
}

// CreateEnrollmentRequest holds the payload for registering an inscription.
// RegistrationFee defaults to the course fee when omitted.
type CreateEnrollmentRequest struct {
	StudentID       string     `json:"apprenantId" validate:"required"`
	CourseID        string     `json:"formationId" validate:"required"`
	EnrolledAt      *time.Time `json:"dateInscription"`
	RegistrationFee *float64   `json:"droitInscription" validate:"omitempty,gte=0"`
}

// UpdateEnrollmentRequest holds the mutable fields of an inscription. Status
// changes go through the dedicated transition operations instead.
type UpdateEnrollmentRequest struct {
	CourseID        string     `json:"formationId" validate:"required"`
	EnrolledAt      *time.Time `json:"dateInscription"`
	RegistrationFee *float64   `json:"droitInscription" validate:"omitempty,gte=0"`
}

// EnrollmentService owns the inscription lifecycle and the ledger-derived
// balances.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentRepository
	courses   enrollmentCourseRepository
	payments  enrollmentPaymentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentRepository, courses enrollmentCourseRepository, payments enrollmentPaymentRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, payments: payments, validator: validate, logger: logger}
}

// List returns enrollments and pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 0 {
		page = 0
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return enrollments, models.NewPagination(page, size, total), nil
}

// Get returns an enrollment with student, course and ledger context.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if s.payments != nil {
		ledger, err := s.payments.ListByEnrollment(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment payments")
		}
		detail.Payments = ledger
	}
	return detail, nil
}

// Create registers a student to a course. New enrollments always start in
// PENDING with an untouched ledger.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	fee := course.Fee
	if req.RegistrationFee != nil {
		fee = *req.RegistrationFee
	}
	enrollment := &models.Enrollment{
		StudentID:        req.StudentID,
		CourseID:         req.CourseID,
		RegistrationFee:  fee,
		Status:           models.EnrollmentStatusPending,
		TotalPaid:        0,
		RemainingBalance: fee,
	}
	if req.EnrolledAt != nil {
		enrollment.EnrolledAt = *req.EnrolledAt
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// Update modifies the course, date or fee of an enrollment and recomputes the
// balances against the unchanged ledger.
func (s *EnrollmentService) Update(ctx context.Context, id string, req UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	enrollment.CourseID = req.CourseID
	if req.EnrolledAt != nil {
		enrollment.EnrolledAt = *req.EnrolledAt
	}
	if req.RegistrationFee != nil {
		enrollment.RegistrationFee = *req.RegistrationFee
	}
	if err := s.repo.Update(ctx, enrollment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	return s.RecomputeBalances(ctx, id)
}

// Confirm moves a pending enrollment to CONFIRMED. CANCELLED is terminal.
func (s *EnrollmentService) Confirm(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.transition(ctx, id, models.EnrollmentStatusConfirmed)
}

// Cancel moves an enrollment to CANCELLED. The ledger is kept untouched so
// already-recorded payments stay auditable.
func (s *EnrollmentService) Cancel(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.transition(ctx, id, models.EnrollmentStatusCancelled)
}

// SetPending reverts a confirmed enrollment to PENDING.
func (s *EnrollmentService) SetPending(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.transition(ctx, id, models.EnrollmentStatusPending)
}

func (s *EnrollmentService) transition(ctx context.Context, id string, target models.EnrollmentStatus) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status == target {
		return enrollment, nil
	}
	if enrollment.Status == models.EnrollmentStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is cancelled")
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	enrollment.Status = target
	return enrollment, nil
}

// RecomputeBalances derives TotalPaid and RemainingBalance from the full
// ledger. The remaining balance never goes below zero; an overpayment shows
// up in TotalPaid only.
func (s *EnrollmentService) RecomputeBalances(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	totalPaid, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum payments")
	}
	remaining := enrollment.RegistrationFee - totalPaid
	if remaining < 0 {
		remaining = 0
	}
	if err := s.repo.UpdateBalances(ctx, id, totalPaid, remaining); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store balances")
	}
	enrollment.TotalPaid = totalPaid
	enrollment.RemainingBalance = remaining
	return enrollment, nil
}

// Delete removes an enrollment together with its payment ledger.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	return nil
}

func (s *EnrollmentService) load(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}
