package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/database"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type submissionRepository interface {
	Exists(ctx context.Context, assignmentID, studentID string) (bool, error)
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	UpdateReview(ctx context.Context, submission *models.Submission) error
}

type assignmentGetter interface {
	Get(ctx context.Context, id string) (*models.Assignment, error)
}

// SubmitRequest is a student's submission payload.
type SubmitRequest struct {
	AssignmentID string `json:"assignmentId" validate:"required"`
	GithubURL    string `json:"githubUrl" validate:"required,url"`
}

// ReviewRequest sets the review outcome of a submission.
type ReviewRequest struct {
	Status   models.SubmissionStatus `json:"status" validate:"required,oneof=Pending Approved Rejected"`
	Feedback string                  `json:"feedback"`
}

// SubmissionService handles submitting and reviewing assignment links.
type SubmissionService struct {
	repo        submissionRepository
	assignments assignmentGetter
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(repo submissionRepository, assignments assignmentGetter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, assignments: assignments, cache: cache, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Submit records a student's link. The student must be in the assignment's
// audience and may submit only once; late submissions are accepted.
func (s *SubmissionService) Submit(ctx context.Context, studentID string, req SubmitRequest) (*models.Submission, error) {
	req.GithubURL = strings.TrimSpace(req.GithubURL)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "assignmentId and a valid githubUrl are required")
	}
	assignment, err := s.assignments.Get(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	if !IsAssigned(assignment, studentID) {
		return nil, appErrors.Clone(appErrors.ErrNotAssignedStudent, "")
	}
	exists, err := s.repo.Exists(ctx, assignment.ID, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check submission")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadySubmitted, "")
	}

	submission := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		GithubURL:    req.GithubURL,
		Status:       models.SubmissionPending,
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		// a concurrent submit can pass Exists; the unique index decides
		if _, ok := database.IsUniqueViolation(err); ok {
			return nil, appErrors.Clone(appErrors.ErrAlreadySubmitted, "")
		}
		return nil, appErrors.Internal(err, "failed to create submission")
	}
	s.metrics.RecordSubmission(string(submission.Status))
	s.logger.Info("assignment submitted", zap.String("id", submission.ID), zap.String("assignment_id", assignment.ID), zap.String("student_id", studentID))
	invalidateDashboard(ctx, s.cache)
	return submission, nil
}

// UpdateStatus records a review. Re-applying the current non-pending status
// with the same feedback is rejected as a conflict.
func (s *SubmissionService) UpdateStatus(ctx context.Context, id string, req ReviewRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "status must be Pending, Approved or Rejected")
	}
	submission, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.Status == req.Status && req.Status != models.SubmissionPending && submission.Feedback == req.Feedback {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission already "+strings.ToLower(string(req.Status)))
	}

	reviewedAt := s.now().UTC()
	submission.Status = req.Status
	submission.Feedback = req.Feedback
	submission.ReviewedAt = &reviewedAt
	if err := s.repo.UpdateReview(ctx, submission); err != nil {
		return nil, appErrors.Internal(err, "failed to update submission")
	}
	s.metrics.RecordSubmission(string(submission.Status))
	s.logger.Info("submission reviewed", zap.String("id", submission.ID), zap.String("status", string(submission.Status)))
	invalidateDashboard(ctx, s.cache)
	return submission, nil
}

// ListForStudent returns the student's own submissions.
func (s *SubmissionService) ListForStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	submissions, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list submissions")
	}
	return submissions, nil
}

// ListAll returns every submission.
func (s *SubmissionService) ListAll(ctx context.Context) ([]models.Submission, error) {
	submissions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list submissions")
	}
	return submissions, nil
}

// Get returns a submission. Students may only read their own.
func (s *SubmissionService) Get(ctx context.Context, id string, requester *models.JWTClaims) (*models.Submission, error) {
	submission, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if requester.Role == models.RoleStudent && submission.StudentID != requester.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not your submission")
	}
	return submission, nil
}

func (s *SubmissionService) find(ctx context.Context, id string) (*models.Submission, error) {
	if !validID(id) {
		return nil, notFound("submission not found")
	}
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("submission not found")
		}
		return nil, appErrors.Internal(err, "failed to load submission")
	}
	return submission, nil
}
