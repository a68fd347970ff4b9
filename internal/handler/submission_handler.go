package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, studentID string, req service.SubmitRequest) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id string, req service.ReviewRequest) (*models.Submission, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	Get(ctx context.Context, id string, requester *models.JWTClaims) (*models.Submission, error)
}

// SubmissionHandler exposes submission and review endpoints.
type SubmissionHandler struct {
	service  submissionService
	expander expander
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(svc submissionService, expander expander) *SubmissionHandler {
	return &SubmissionHandler{service: svc, expander: expander}
}

// Submit godoc
// @Summary Submit an assignment link
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /submissions/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}
	submission, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// ListForStudent godoc
// @Summary Caller's submissions
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submissions/student [get]
func (h *SubmissionHandler) ListForStudent(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	submissions, err := h.service.ListForStudent(c.Request.Context(), claims.UserID)
	h.respondList(c, submissions, err)
}

// List godoc
// @Summary All submissions
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	submissions, err := h.service.ListAll(c.Request.Context())
	h.respondList(c, submissions, err)
}

// Get godoc
// @Summary Get submission
// @Description Students can only read their own submissions.
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	submission, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.expander.Submissions(c.Request.Context(), []models.Submission{*submission})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views[0], nil)
}

// UpdateStatus godoc
// @Summary Review a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.ReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /submissions/{id}/status [put]
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	var req service.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	submission, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

func (h *SubmissionHandler) respondList(c *gin.Context, submissions []models.Submission, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.expander.Submissions(c.Request.Context(), submissions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}
