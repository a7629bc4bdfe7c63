package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
)

func paymentRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "enrollment_id", "paid_at", "amount", "method", "module", "created_at", "updated_at"}).
		AddRow("p1", "e1", now, 200.0, "ESPECES", "Module 1", now, now)
}

func TestPaymentListByEnrollmentOrdersByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE enrollment_id = $1 ORDER BY paid_at ASC, created_at ASC")).
		WithArgs("e1").
		WillReturnRows(paymentRows(now))

	payments, err := repo.ListByEnrollment(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 200.0, payments[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentListFilterByMethod(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments p WHERE 1=1 AND p.method = $1 ORDER BY p.paid_at DESC LIMIT 10 OFFSET 0")).
		WithArgs("ESPECES").
		WillReturnRows(paymentRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("ESPECES").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{Method: "ESPECES"})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateDefaultsPaidAt(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.Payment{EnrollmentID: "e1", Amount: 200, Method: "ESPECES"}
	require.NoError(t, repo.Create(context.Background(), payment))
	assert.NotEmpty(t, payment.ID)
	assert.False(t, payment.PaidAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payments WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
