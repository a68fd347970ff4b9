package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.User, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.User, error)
	Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type ledgerService interface {
	Enroll(ctx context.Context, req service.EnrollmentRequest) (*models.User, error)
	Unenroll(ctx context.Context, req service.EnrollmentRequest) (*models.User, error)
	SetPaidAmount(ctx context.Context, req service.UpdateFeesRequest) (*models.User, error)
}

// StudentHandler exposes student and ledger endpoints.
type StudentHandler struct {
	students studentService
	ledger   ledgerService
	expander expander
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, ledger ledgerService, expander expander) *StudentHandler {
	return &StudentHandler{students: students, ledger: ledger, expander: expander}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, email or student ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{Search: strings.TrimSpace(c.Query("search"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.expander.Students(c.Request.Context(), students)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, student, err)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	h.respond(c, http.StatusCreated, student, err)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	h.respond(c, http.StatusOK, student, err)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "student deleted", nil)
}

// UpdateFees godoc
// @Summary Set the paid amount of an enrollment
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.UpdateFeesRequest true "Fees payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/update-fees [post]
func (h *StudentHandler) UpdateFees(c *gin.Context) {
	var req service.UpdateFeesRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.ledger.SetPaidAmount(c.Request.Context(), req)
	h.respond(c, http.StatusOK, student, err)
}

// AssignCourse godoc
// @Summary Enroll a student in a course
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.EnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/assign-course [post]
func (h *StudentHandler) AssignCourse(c *gin.Context) {
	var req service.EnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.ledger.Enroll(c.Request.Context(), req)
	h.respond(c, http.StatusOK, student, err)
}

// RemoveCourse godoc
// @Summary Remove a course from a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.EnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /students/remove-course [post]
func (h *StudentHandler) RemoveCourse(c *gin.Context) {
	var req service.EnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.ledger.Unenroll(c.Request.Context(), req)
	h.respond(c, http.StatusOK, student, err)
}

// respond expands the student's enrollments before writing it.
func (h *StudentHandler) respond(c *gin.Context, status int, student *models.User, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.expander.Student(c.Request.Context(), student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, view, nil)
}
