package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type submissionChecker interface {
	Exists(ctx context.Context, assignmentID, studentID string) (bool, error)
}

// AssignmentRequest is the create and update payload for assignments. An
// empty AssignedStudents list targets every student.
type AssignmentRequest struct {
	Title            string    `json:"title" validate:"required"`
	Description      string    `json:"description"`
	CourseID         string    `json:"courseId" validate:"required,uuid"`
	AssignedStudents []string  `json:"assignedStudents" validate:"omitempty,dive,uuid"`
	DueDate          time.Time `json:"dueDate" validate:"required"`
}

// IsAssigned reports whether the assignment targets the student. An empty
// audience targets everyone, including ids that match no student.
func IsAssigned(assignment *models.Assignment, studentID string) bool {
	if assignment == nil {
		return false
	}
	if len(assignment.AssignedStudents) == 0 {
		return true
	}
	for _, id := range assignment.AssignedStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

// AssignmentService manages assignments and resolves their audience.
type AssignmentService struct {
	repo        assignmentRepository
	courses     courseFinder
	submissions submissionChecker
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, courses courseFinder, submissions submissionChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, courses: courses, submissions: submissions, cache: cache, validator: validate, logger: logger}
}

// List returns every assignment, newest first.
func (s *AssignmentService) List(ctx context.Context) ([]models.Assignment, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list assignments")
	}
	return assignments, nil
}

// ListForStudent returns the assignments targeting the student, soonest due first.
func (s *AssignmentService) ListForStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	assignments, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list assignments")
	}
	return assignments, nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	if !validID(id) {
		return nil, notFound("assignment not found")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("assignment not found")
		}
		return nil, appErrors.Internal(err, "failed to load assignment")
	}
	return assignment, nil
}

// CanSubmit reports whether the student is targeted and has not submitted
// yet. Due dates are not enforced.
func (s *AssignmentService) CanSubmit(ctx context.Context, assignment *models.Assignment, studentID string) (bool, error) {
	if !IsAssigned(assignment, studentID) {
		return false, nil
	}
	exists, err := s.submissions.Exists(ctx, assignment.ID, studentID)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check submission")
	}
	return !exists, nil
}

// Create adds an assignment after checking that its course exists.
func (s *AssignmentService) Create(ctx context.Context, req AssignmentRequest) (*models.Assignment, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	assignment := &models.Assignment{
		Title:            req.Title,
		Description:      req.Description,
		CourseID:         req.CourseID,
		AssignedStudents: audience(req.AssignedStudents),
		DueDate:          req.DueDate.UTC(),
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Internal(err, "failed to create assignment")
	}
	s.logger.Info("assignment created",
		zap.String("id", assignment.ID),
		zap.String("course_id", assignment.CourseID),
		zap.Int("audience", len(assignment.AssignedStudents)),
	)
	invalidateDashboard(ctx, s.cache)
	return assignment, nil
}

// Update replaces an assignment's fields.
func (s *AssignmentService) Update(ctx context.Context, id string, req AssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	assignment.Title = req.Title
	assignment.Description = req.Description
	assignment.CourseID = req.CourseID
	assignment.AssignedStudents = audience(req.AssignedStudents)
	assignment.DueDate = req.DueDate.UTC()
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Internal(err, "failed to update assignment")
	}
	invalidateDashboard(ctx, s.cache)
	return assignment, nil
}

// Delete removes an assignment. Its submissions are kept.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound("assignment not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return notFound("assignment not found")
		}
		return appErrors.Internal(err, "failed to delete assignment")
	}
	s.logger.Info("assignment deleted", zap.String("id", id))
	invalidateDashboard(ctx, s.cache)
	return nil
}

func (s *AssignmentService) validate(ctx context.Context, req AssignmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid assignment payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if isNoRows(err) {
			return notFound("course not found")
		}
		return appErrors.Internal(err, "failed to load course")
	}
	return nil
}

// audience dedupes the requested ids while keeping their order.
func audience(ids []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
