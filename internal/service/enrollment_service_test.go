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
)

type fakeEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	ledger      map[string][]models.Payment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments: make(map[string]*models.Enrollment),
		ledger:      make(map[string][]models.Payment),
	}
}

func (f *fakeEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range f.enrollments {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, models.EnrollmentDetail{Enrollment: *e})
	}
	return out, len(out), nil
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (f *fakeEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	e, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.EnrollmentDetail{Enrollment: *e, StudentName: "Rakoto Jean", CourseName: "Informatique"}, nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = "e1"
	}
	clone := *e
	f.enrollments[e.ID] = &clone
	return nil
}

func (f *fakeEnrollmentRepo) Update(ctx context.Context, e *models.Enrollment) error {
	stored, ok := f.enrollments[e.ID]
	if !ok {
		return sql.ErrNoRows
	}
	*stored = *e
	return nil
}

func (f *fakeEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	e, ok := f.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Status = status
	return nil
}

func (f *fakeEnrollmentRepo) UpdateBalances(ctx context.Context, id string, totalPaid, remaining float64) error {
	e, ok := f.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.TotalPaid = totalPaid
	e.RemainingBalance = remaining
	return nil
}

func (f *fakeEnrollmentRepo) SumPayments(ctx context.Context, id string) (float64, error) {
	var total float64
	for _, p := range f.ledger[id] {
		total += p.Amount
	}
	return total, nil
}

func (f *fakeEnrollmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.enrollments, id)
	delete(f.ledger, id)
	return nil
}

type fakeStudentLookup struct{ missing bool }

func (f *fakeStudentLookup) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.missing {
		return nil, sql.ErrNoRows
	}
	return &models.Student{ID: id, LastName: "Rakoto", FirstName: "Jean"}, nil
}

type fakeCourseLookup struct {
	fee     float64
	missing bool
}

func (f *fakeCourseLookup) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if f.missing {
		return nil, sql.ErrNoRows
	}
	return &models.Course{ID: id, Name: "Informatique", Fee: f.fee}, nil
}

type fakeLedgerLookup struct{ repo *fakeEnrollmentRepo }

func (f *fakeLedgerLookup) ListByEnrollment(ctx context.Context, id string) ([]models.Payment, error) {
	return f.repo.ledger[id], nil
}

func newTestEnrollmentService(repo *fakeEnrollmentRepo, courseFee float64) *EnrollmentService {
	return NewEnrollmentService(repo, &fakeStudentLookup{}, &fakeCourseLookup{fee: courseFee}, &fakeLedgerLookup{repo: repo}, validator.New(), zap.NewNop())
}

func TestEnrollmentCreateDefaultsToCourseFee(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)

	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	assert.Equal(t, 500.0, enrollment.RegistrationFee)
	assert.Equal(t, 0.0, enrollment.TotalPaid)
	assert.Equal(t, 500.0, enrollment.RemainingBalance)
}

func TestEnrollmentConfirmFromPending(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusConfirmed, confirmed.Status)
}

func TestEnrollmentCancelledIsTerminal(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), enrollment.ID)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), enrollment.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)

	_, err = svc.SetPending(context.Background(), enrollment.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentConfirmThenRevertToPending(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), enrollment.ID)
	require.NoError(t, err)
	reverted, err := svc.SetPending(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, reverted.Status)
}

func TestEnrollmentTransitionToSameStatusIsNoop(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)

	same, err := svc.SetPending(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, same.Status)
}

func TestRecomputeBalancesFullPayment(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)

	repo.ledger[enrollment.ID] = []models.Payment{{Amount: 500}}
	updated, err := svc.RecomputeBalances(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, updated.TotalPaid)
	assert.Equal(t, 0.0, updated.RemainingBalance)
}

func TestRecomputeBalancesOverpaymentClampsRemaining(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)

	repo.ledger[enrollment.ID] = []models.Payment{{Amount: 300}, {Amount: 250}}
	updated, err := svc.RecomputeBalances(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 550.0, updated.TotalPaid)
	assert.Equal(t, 0.0, updated.RemainingBalance)
}

func TestRecomputeBalancesIsIdempotent(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)

	repo.ledger[enrollment.ID] = []models.Payment{{Amount: 200}}
	first, err := svc.RecomputeBalances(context.Background(), enrollment.ID)
	require.NoError(t, err)
	second, err := svc.RecomputeBalances(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalPaid, second.TotalPaid)
	assert.Equal(t, first.RemainingBalance, second.RemainingBalance)
	assert.Equal(t, 300.0, second.RemainingBalance)
}

func TestEnrollmentCreateUnknownCourse(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := NewEnrollmentService(repo, &fakeStudentLookup{}, &fakeCourseLookup{missing: true}, &fakeLedgerLookup{repo: repo}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentGetIncludesLedger(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newTestEnrollmentService(repo, 500)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)
	repo.ledger[enrollment.ID] = []models.Payment{{ID: "p1", Amount: 100}}

	detail, err := svc.Get(context.Background(), enrollment.ID)
	require.NoError(t, err)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, "p1", detail.Payments[0].ID)
}
