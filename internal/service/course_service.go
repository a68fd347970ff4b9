package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CourseRequest is the create and update payload for courses.
type CourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Duration    string `json:"duration" validate:"required"`
	Price       *int64 `json:"price" validate:"required,gte=0"`
	Instructor  string `json:"instructor"`
}

// CourseService manages the catalog.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	if !validID(id) {
		return nil, notFound("course not found")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

// Create adds a course to the catalog.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}
	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       *req.Price,
		Instructor:  req.Instructor,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to create course")
	}
	s.logger.Info("course created", zap.String("id", course.ID), zap.Int64("price", course.Price))
	invalidateDashboard(ctx, s.cache)
	return course, nil
}

// Update changes course fields. Existing enrollment snapshots keep the price
// they were created with.
func (s *CourseService) Update(ctx context.Context, id string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Title = req.Title
	course.Description = req.Description
	course.Duration = req.Duration
	course.Price = *req.Price
	course.Instructor = req.Instructor
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to update course")
	}
	return course, nil
}

// Delete removes a course. Enrollments and assignments referencing it are kept.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound("course not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return notFound("course not found")
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("id", id))
	invalidateDashboard(ctx, s.cache)
	return nil
}
