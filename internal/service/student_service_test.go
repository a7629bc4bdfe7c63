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

type fakeStudentRepo struct {
	students map[string]*models.Student
	nextID   int
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*models.Student)}
}

func (f *fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	out, _, _ := f.List(ctx, models.StudentFilter{})
	return out, nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeStudentRepo) Count(ctx context.Context) (int, error) {
	return len(f.students), nil
}

func (f *fakeStudentRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, s := range f.students {
		if s.Email == email && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) ExistsByCIN(ctx context.Context, cin, excludeID string) (bool, error) {
	for _, s := range f.students {
		if s.CIN == cin && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	f.nextID++
	if student.ID == "" {
		student.ID = "s" + string(rune('0'+f.nextID))
	}
	clone := *student
	f.students[student.ID] = &clone
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	stored, ok := f.students[student.ID]
	if !ok {
		return sql.ErrNoRows
	}
	*stored = *student
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.students, id)
	return nil
}

type noEnrollments struct{}

func (noEnrollments) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func TestStudentCreateAndGet(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, noEnrollments{}, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		LastName:  "Rakoto",
		FirstName: "Jean",
		Email:     "jean@example.com",
		CIN:       "101250012345",
	})
	require.NoError(t, err)
	require.NotEmpty(t, student.ID)

	detail, err := svc.Get(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rakoto", detail.LastName)
}

func TestStudentCreateDuplicateEmail(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, noEnrollments{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{LastName: "Rakoto", FirstName: "Jean", Email: "jean@example.com", CIN: "1"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateStudentRequest{LastName: "Rabe", FirstName: "Paul", Email: "jean@example.com", CIN: "2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentCreateDuplicateCIN(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, noEnrollments{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{LastName: "Rakoto", FirstName: "Jean", Email: "jean@example.com", CIN: "1"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateStudentRequest{LastName: "Rabe", FirstName: "Paul", Email: "paul@example.com", CIN: "1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateKeepsOwnEmail(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, noEnrollments{}, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{LastName: "Rakoto", FirstName: "Jean", Email: "jean@example.com", CIN: "1"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), student.ID, UpdateStudentRequest{LastName: "Rakoto", FirstName: "Jean-Marie", Email: "jean@example.com", CIN: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Jean-Marie", updated.FirstName)
}

func TestStudentDeleteMissing(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, noEnrollments{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentListReturnsPagination(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, noEnrollments{}, validator.New(), zap.NewNop())
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), CreateStudentRequest{
			LastName:  "Nom",
			FirstName: "Prenom",
			Email:     string(rune('a'+i)) + "@example.com",
			CIN:       string(rune('0' + i)),
		})
		require.NoError(t, err)
	}

	_, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 0, PageSize: 10})
	require.NoError(t, err)
	require.NotNil(t, pagination)
	assert.Equal(t, 3, pagination.TotalElements)
	assert.Equal(t, 1, pagination.TotalPages)
	assert.True(t, pagination.FirstPage)
	assert.True(t, pagination.LastPage)
}
