package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
	Get(ctx context.Context, id string) (*models.Assignment, error)
	CanSubmit(ctx context.Context, assignment *models.Assignment, studentID string) (bool, error)
	Create(ctx context.Context, req service.AssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, id string, req service.AssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error
}

// AssignmentHandler exposes assignments.
type AssignmentHandler struct {
	service  assignmentService
	expander expander
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(svc assignmentService, expander expander) *AssignmentHandler {
	return &AssignmentHandler{service: svc, expander: expander}
}

// List godoc
// @Summary List all assignments
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.service.List(c.Request.Context())
	h.respondList(c, assignments, err)
}

// ListForStudent godoc
// @Summary Assignments targeting the caller
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/student [get]
func (h *AssignmentHandler) ListForStudent(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	assignments, err := h.service.ListForStudent(c.Request.Context(), claims.UserID)
	h.respondList(c, assignments, err)
}

// Get godoc
// @Summary Get assignment
// @Description Students also receive meta.can_submit.
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.expander.Assignments(c.Request.Context(), []models.Assignment{*assignment})
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if claims.Role == models.RoleStudent {
		canSubmit, err := h.service.CanSubmit(c.Request.Context(), assignment, claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		meta = map[string]interface{}{"can_submit": canSubmit}
	}
	response.JSON(c, http.StatusOK, views[0], nil, meta)
}

// Create godoc
// @Summary Create assignment
// @Description An empty assignedStudents list targets every student.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.AssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.AssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "assignment deleted", nil)
}

func (h *AssignmentHandler) respondList(c *gin.Context, assignments []models.Assignment, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.expander.Assignments(c.Request.Context(), assignments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}
