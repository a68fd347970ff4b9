package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/middleware"
	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
	"github.com/noah-isme/academy-api/pkg/response"
)

// expander resolves stored ids into response views.
type expander interface {
	Student(ctx context.Context, student *models.User) (*models.StudentView, error)
	Students(ctx context.Context, students []models.User) ([]models.StudentView, error)
	Payments(ctx context.Context, payments []models.Payment) ([]models.PaymentView, error)
	Assignments(ctx context.Context, assignments []models.Assignment) ([]models.AssignmentView, error)
	Submissions(ctx context.Context, submissions []models.Submission) ([]models.SubmissionView, error)
}

// currentUser writes a 401 when no claims are attached.
func currentUser(c *gin.Context) (*models.JWTClaims, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// bindJSON writes a 400 when the body is not valid JSON for dst.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return false
	}
	return true
}
