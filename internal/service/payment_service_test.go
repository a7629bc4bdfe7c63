package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
	"github.com/betsymikaodi/gestion-formation-api/pkg/export"
)

type fakePaymentRepo struct {
	enrollments *fakeEnrollmentRepo
	nextID      int
}

func (f *fakePaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	var out []models.Payment
	for _, ledger := range f.enrollments.ledger {
		out = append(out, ledger...)
	}
	return out, len(out), nil
}

func (f *fakePaymentRepo) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error) {
	return f.enrollments.ledger[enrollmentID], nil
}

func (f *fakePaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	for _, ledger := range f.enrollments.ledger {
		for _, p := range ledger {
			if p.ID == id {
				clone := p
				return &clone, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	f.nextID++
	if payment.ID == "" {
		payment.ID = "p" + string(rune('0'+f.nextID))
	}
	f.enrollments.ledger[payment.EnrollmentID] = append(f.enrollments.ledger[payment.EnrollmentID], *payment)
	return nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	ledger := f.enrollments.ledger[payment.EnrollmentID]
	for i, p := range ledger {
		if p.ID == payment.ID {
			ledger[i] = *payment
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakePaymentRepo) Delete(ctx context.Context, id string) error {
	for enrollmentID, ledger := range f.enrollments.ledger {
		for i, p := range ledger {
			if p.ID == id {
				f.enrollments.ledger[enrollmentID] = append(ledger[:i], ledger[i+1:]...)
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

func newTestPaymentService(t *testing.T, courseFee float64) (*PaymentService, *EnrollmentService, *fakeEnrollmentRepo, string) {
	t.Helper()
	repo := newFakeEnrollmentRepo()
	enrollments := newTestEnrollmentService(repo, courseFee)
	payments := NewPaymentService(&fakePaymentRepo{enrollments: repo}, enrollments, export.NewPDFExporter(), validator.New(), zap.NewNop())

	enrollment, err := enrollments.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)
	return payments, enrollments, repo, enrollment.ID
}

func TestPaymentCreateRecomputesBalances(t *testing.T) {
	payments, _, repo, enrollmentID := newTestPaymentService(t, 500)

	_, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 200, Method: "ESPECES", Module: "Module 1"})
	require.NoError(t, err)

	stored := repo.enrollments[enrollmentID]
	assert.Equal(t, 200.0, stored.TotalPaid)
	assert.Equal(t, 300.0, stored.RemainingBalance)
}

func TestPaymentDeleteReopensBalance(t *testing.T) {
	payments, _, repo, enrollmentID := newTestPaymentService(t, 500)

	first, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 450, Method: "ESPECES", Module: "Module 1"})
	require.NoError(t, err)
	second, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 50, Method: "MOBILE_MONEY", Module: "Module 2"})
	require.NoError(t, err)

	stored := repo.enrollments[enrollmentID]
	require.Equal(t, 500.0, stored.TotalPaid)
	require.Equal(t, 0.0, stored.RemainingBalance)

	require.NoError(t, payments.Delete(context.Background(), second.ID))
	stored = repo.enrollments[enrollmentID]
	assert.Equal(t, 450.0, stored.TotalPaid)
	assert.Equal(t, 50.0, stored.RemainingBalance)

	_ = first
}

func TestPaymentUpdateRecomputesBalances(t *testing.T) {
	payments, _, repo, enrollmentID := newTestPaymentService(t, 500)

	payment, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 100, Method: "ESPECES", Module: "Module 1"})
	require.NoError(t, err)

	_, err = payments.Update(context.Background(), payment.ID, UpdatePaymentRequest{Amount: 250, Method: "VIREMENT", Module: "Module 2"})
	require.NoError(t, err)

	stored := repo.enrollments[enrollmentID]
	assert.Equal(t, 250.0, stored.TotalPaid)
	assert.Equal(t, 250.0, stored.RemainingBalance)
}

func TestPaymentOnCancelledEnrollmentRejected(t *testing.T) {
	payments, enrollments, _, enrollmentID := newTestPaymentService(t, 500)

	_, err := enrollments.Cancel(context.Background(), enrollmentID)
	require.NoError(t, err)

	_, err = payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 100, Method: "ESPECES", Module: "Module 1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestPaymentCreateRejectsNonPositiveAmount(t *testing.T) {
	payments, _, _, enrollmentID := newTestPaymentService(t, 500)

	_, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 0, Method: "ESPECES", Module: "Module 1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentRequiresModuleLabel(t *testing.T) {
	payments, _, repo, enrollmentID := newTestPaymentService(t, 500)

	_, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 200, Method: "ESPECES"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.ledger[enrollmentID])

	payment, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 200, Method: "ESPECES", Module: "Module 1"})
	require.NoError(t, err)

	_, err = payments.Update(context.Background(), payment.ID, UpdatePaymentRequest{Amount: 200, Method: "ESPECES"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentReceiptRendersPDF(t *testing.T) {
	payments, _, _, enrollmentID := newTestPaymentService(t, 500)

	payment, err := payments.Create(context.Background(), CreatePaymentRequest{EnrollmentID: enrollmentID, Amount: 200, Method: "ESPECES", Module: "Module 1"})
	require.NoError(t, err)

	doc, err := payments.Receipt(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.True(t, len(doc) > 0)
	assert.Equal(t, "%PDF", string(doc[:4]))
}
