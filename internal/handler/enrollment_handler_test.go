package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	"github.com/betsymikaodi/gestion-formation-api/internal/service"
)

type memEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	ledger      map[string][]models.Payment
	nextID      int
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{
		enrollments: make(map[string]*models.Enrollment),
		ledger:      make(map[string][]models.Payment),
	}
}

func (m *memEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, models.EnrollmentDetail{Enrollment: *e})
	}
	return out, len(out), nil
}

func (m *memEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (m *memEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	e, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.EnrollmentDetail{Enrollment: *e, StudentName: "Rakoto Jean", CourseName: "Informatique"}, nil
}

func (m *memEnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	m.nextID++
	if e.ID == "" {
		e.ID = "e" + string(rune('0'+m.nextID))
	}
	clone := *e
	m.enrollments[e.ID] = &clone
	return nil
}

func (m *memEnrollmentRepo) Update(ctx context.Context, e *models.Enrollment) error {
	stored, ok := m.enrollments[e.ID]
	if !ok {
		return sql.ErrNoRows
	}
	*stored = *e
	return nil
}

func (m *memEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	e, ok := m.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Status = status
	return nil
}

func (m *memEnrollmentRepo) UpdateBalances(ctx context.Context, id string, totalPaid, remaining float64) error {
	e, ok := m.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.TotalPaid = totalPaid
	e.RemainingBalance = remaining
	return nil
}

func (m *memEnrollmentRepo) SumPayments(ctx context.Context, id string) (float64, error) {
	var total float64
	for _, p := range m.ledger[id] {
		total += p.Amount
	}
	return total, nil
}

func (m *memEnrollmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.enrollments, id)
	delete(m.ledger, id)
	return nil
}

type memStudentLookup struct{}

func (memStudentLookup) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return &models.Student{ID: id, LastName: "Rakoto", FirstName: "Jean"}, nil
}

type memCourseLookup struct{ fee float64 }

func (m memCourseLookup) FindByID(ctx context.Context, id string) (*models.Course, error) {
	return &models.Course{ID: id, Name: "Informatique", Fee: m.fee}, nil
}

type memLedgerLookup struct{ repo *memEnrollmentRepo }

func (m memLedgerLookup) ListByEnrollment(ctx context.Context, id string) ([]models.Payment, error) {
	return m.repo.ledger[id], nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

func newEnrollmentRouter(t *testing.T) (*gin.Engine, *memEnrollmentRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := newMemEnrollmentRepo()
	svc := service.NewEnrollmentService(repo, memStudentLookup{}, memCourseLookup{fee: 500}, memLedgerLookup{repo: repo}, nil, nil)
	h := NewEnrollmentHandler(svc)

	r := gin.New()
	group := r.Group("/api/inscriptions")
	group.GET("", h.List)
	group.GET("/en-attente", h.Pending)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PATCH("/:id/confirmer", h.Confirm)
	group.PATCH("/:id/annuler", h.Cancel)
	group.PATCH("/:id/attente", h.SetPending)
	group.DELETE("/:id", h.Delete)
	return r, repo
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestEnrollmentLifecycleOverHTTP(t *testing.T) {
	r, _ := newEnrollmentRouter(t)

	w, env := doRequest(t, r, http.MethodPost, "/api/inscriptions", `{"apprenantId": "s1", "formationId": "c1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Enrollment
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.EnrollmentStatusPending, created.Status)
	assert.Equal(t, 500.0, created.RegistrationFee)
	assert.Equal(t, 500.0, created.RemainingBalance)

	w, env = doRequest(t, r, http.MethodPatch, "/api/inscriptions/"+created.ID+"/confirmer", "")
	require.Equal(t, http.StatusOK, w.Code)
	var confirmed models.Enrollment
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, models.EnrollmentStatusConfirmed, confirmed.Status)

	w, env = doRequest(t, r, http.MethodPatch, "/api/inscriptions/"+created.ID+"/annuler", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doRequest(t, r, http.MethodPatch, "/api/inscriptions/"+created.ID+"/confirmer", "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestEnrollmentGetNotFound(t *testing.T) {
	r, _ := newEnrollmentRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/inscriptions/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestEnrollmentCreateInvalidPayload(t *testing.T) {
	r, _ := newEnrollmentRouter(t)

	w, env := doRequest(t, r, http.MethodPost, "/api/inscriptions", `{"formationId": "c1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestEnrollmentPendingListFiltersStatus(t *testing.T) {
	r, repo := newEnrollmentRouter(t)

	_, env := doRequest(t, r, http.MethodPost, "/api/inscriptions", `{"apprenantId": "s1", "formationId": "c1"}`)
	var first models.Enrollment
	require.NoError(t, json.Unmarshal(env.Data, &first))
	_, env = doRequest(t, r, http.MethodPost, "/api/inscriptions", `{"apprenantId": "s2", "formationId": "c1"}`)
	var second models.Enrollment
	require.NoError(t, json.Unmarshal(env.Data, &second))

	w, _ := doRequest(t, r, http.MethodPatch, "/api/inscriptions/"+first.ID+"/confirmer", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doRequest(t, r, http.MethodGet, "/api/inscriptions/en-attente", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.EnrollmentDetail
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, repo.nextID)
}
