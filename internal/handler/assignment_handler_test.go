package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type fakeAssignmentSrv struct {
	assignment  *models.Assignment
	err         error
	canSubmit   bool
	listedFor   string
	canSubmitBy string
}

func (f *fakeAssignmentSrv) List(context.Context) ([]models.Assignment, error) {
	return []models.Assignment{*f.assignment}, f.err
}

func (f *fakeAssignmentSrv) ListForStudent(_ context.Context, studentID string) ([]models.Assignment, error) {
	f.listedFor = studentID
	return []models.Assignment{*f.assignment}, f.err
}

func (f *fakeAssignmentSrv) Get(context.Context, string) (*models.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assignment, nil
}

func (f *fakeAssignmentSrv) CanSubmit(_ context.Context, _ *models.Assignment, studentID string) (bool, error) {
	f.canSubmitBy = studentID
	return f.canSubmit, nil
}

func (f *fakeAssignmentSrv) Create(context.Context, service.AssignmentRequest) (*models.Assignment, error) {
	return f.assignment, f.err
}

func (f *fakeAssignmentSrv) Update(context.Context, string, service.AssignmentRequest) (*models.Assignment, error) {
	return f.assignment, f.err
}

func (f *fakeAssignmentSrv) Delete(context.Context, string) error {
	return f.err
}

func sampleAssignment() *models.Assignment {
	return &models.Assignment{
		ID:       "assignment-1",
		Title:    "Landing page",
		CourseID: "course-1",
		DueDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAssignmentHandlerGetAsStudent(t *testing.T) {
	svc := &fakeAssignmentSrv{assignment: sampleAssignment(), canSubmit: true}
	h := NewAssignmentHandler(svc, stubExpander{})

	c, rec := newContext(http.MethodGet, "/assignments/assignment-1", nil, studentClaims("student-1"))
	c.Params = append(c.Params, ginParam("id", "assignment-1"))
	h.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student-1", svc.canSubmitBy)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["can_submit"])
	assert.Contains(t, string(env.Data), `"students":[]`)
}

func TestAssignmentHandlerGetAsAdminHasNoMeta(t *testing.T) {
	svc := &fakeAssignmentSrv{assignment: sampleAssignment()}
	h := NewAssignmentHandler(svc, stubExpander{})

	c, rec := newContext(http.MethodGet, "/assignments/assignment-1", nil, adminClaims())
	h.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.canSubmitBy)
	assert.Nil(t, decodeEnvelope(t, rec).Meta)
}

func TestAssignmentHandlerGetNotFound(t *testing.T) {
	h := NewAssignmentHandler(&fakeAssignmentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "assignment not found")}, stubExpander{})

	c, rec := newContext(http.MethodGet, "/assignments/missing", nil, adminClaims())
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssignmentHandlerListForStudentUsesCaller(t *testing.T) {
	svc := &fakeAssignmentSrv{assignment: sampleAssignment()}
	h := NewAssignmentHandler(svc, stubExpander{})

	c, rec := newContext(http.MethodGet, "/assignments/student", nil, studentClaims("student-7"))
	h.ListForStudent(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student-7", svc.listedFor)
}

func TestAssignmentHandlerCreateAndDelete(t *testing.T) {
	svc := &fakeAssignmentSrv{assignment: sampleAssignment()}
	h := NewAssignmentHandler(svc, stubExpander{})

	c, rec := newContext(http.MethodPost, "/assignments", map[string]interface{}{
		"title": "Landing page", "courseId": "course-1", "dueDate": "2024-03-01T00:00:00Z",
	}, adminClaims())
	h.Create(c)
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newContext(http.MethodDelete, "/assignments/assignment-1", nil, adminClaims())
	h.Delete(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "assignment deleted", decodeEnvelope(t, rec).Message)
}
