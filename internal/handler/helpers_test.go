package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/middleware"
	"github.com/noah-isme/academy-api/internal/models"
)

type responseEnvelope struct {
	Data    json.RawMessage        `json:"data"`
	Message string                 `json:"message"`
	Meta    map[string]interface{} `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// newContext builds a test context with an optional JSON body and caller.
func newContext(method, target string, body interface{}, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, Username: "ramsir"}
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStudent, Username: "alice"}
}

// stubExpander resolves nothing; views carry ids only.
type stubExpander struct {
	err error
}

func (s stubExpander) Student(_ context.Context, student *models.User) (*models.StudentView, error) {
	if s.err != nil {
		return nil, s.err
	}
	views, _ := s.Students(context.Background(), []models.User{*student})
	return &views[0], nil
}

func (s stubExpander) Students(_ context.Context, students []models.User) ([]models.StudentView, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.StudentView, 0, len(students))
	for _, st := range students {
		view := models.StudentView{User: st, Enrollments: []models.EnrollmentView{}}
		for _, e := range st.Enrollments {
			view.Enrollments = append(view.Enrollments, models.EnrollmentView{CourseID: e.CourseID, StartDate: e.StartDate, Fees: e.Fees})
		}
		out = append(out, view)
	}
	return out, nil
}

func (s stubExpander) Payments(_ context.Context, payments []models.Payment) ([]models.PaymentView, error) {
	out := make([]models.PaymentView, 0, len(payments))
	for _, p := range payments {
		out = append(out, models.PaymentView{Payment: p})
	}
	return out, s.err
}

func (s stubExpander) Assignments(_ context.Context, assignments []models.Assignment) ([]models.AssignmentView, error) {
	out := make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, models.AssignmentView{Assignment: a, Students: []models.StudentRef{}})
	}
	return out, s.err
}

func (s stubExpander) Submissions(_ context.Context, submissions []models.Submission) ([]models.SubmissionView, error) {
	out := make([]models.SubmissionView, 0, len(submissions))
	for _, sub := range submissions {
		out = append(out, models.SubmissionView{Submission: sub})
	}
	return out, s.err
}

func performRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
