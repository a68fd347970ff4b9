package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/pkg/database"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type studentRepository interface {
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.User, int, error)
	FindStudentByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type enrollmentBuilder interface {
	BuildEnrollments(ctx context.Context, courseIDs []string) (models.Enrollments, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Username string         `json:"username" validate:"required,min=3"`
	Password string         `json:"password" validate:"required,min=6"`
	Phone    string         `json:"phone"`
	Address  string         `json:"address"`
	Socials  models.Socials `json:"socials"`
	Courses  []string       `json:"courses"`
}

// UpdateStudentRequest holds the editable profile fields.
type UpdateStudentRequest struct {
	Name    string         `json:"name" validate:"required"`
	Email   string         `json:"email" validate:"required,email"`
	Phone   string         `json:"phone"`
	Address string         `json:"address"`
	Socials models.Socials `json:"socials"`
}

// StudentServiceConfig controls student ID generation.
type StudentServiceConfig struct {
	IDPrefix string
	IDDigits int
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	ledger    enrollmentBuilder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       StudentServiceConfig
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, ledger enrollmentBuilder, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg StudentServiceConfig) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "STU"
	}
	if cfg.IDDigits <= 0 {
		cfg.IDDigits = 3
	}
	return &StudentService{repo: repo, ledger: ledger, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.User, *models.Pagination, error) {
	students, total, err := s.repo.ListStudents(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student record.
func (s *StudentService) Get(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, notFound("student not found")
	}
	student, err := s.repo.FindStudentByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student, assigns the next student ID and enrolls the
// requested courses. Course ids that do not resolve are skipped.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username, "")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to validate username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	}
	exists, err = s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	}

	count, err := s.repo.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count students")
	}
	studentID := s.formatStudentID(count + 1)

	enrollments, err := s.ledger.BuildEnrollments(ctx, req.Courses)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	student := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Name:         req.Name,
		Email:        req.Email,
		StudentID:    &studentID,
		Phone:        req.Phone,
		Address:      req.Address,
		Socials:      req.Socials,
		Enrollments:  enrollments,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if constraint, ok := database.IsUniqueViolation(err); ok {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("student already exists (%s)", constraint))
		}
		return nil, appErrors.Internal(err, "failed to create student")
	}

	s.logger.Info("student created",
		zap.String("id", student.ID),
		zap.String("student_id", studentID),
		zap.Int("enrollments", len(enrollments)),
		zap.Int("requested_courses", len(req.Courses)),
	)
	invalidateDashboard(ctx, s.cache)
	return student, nil
}

// Update modifies a student's profile fields.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != student.Email {
		exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to validate email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
	}

	student.Name = req.Name
	student.Email = req.Email
	student.Phone = req.Phone
	student.Address = req.Address
	student.Socials = req.Socials
	if err := s.repo.UpdateProfile(ctx, student); err != nil {
		if _, ok := database.IsUniqueViolation(err); ok {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "email already exists")
		}
		return nil, appErrors.Internal(err, "failed to update student")
	}
	invalidateDashboard(ctx, s.cache)
	return student, nil
}

// Delete removes a student. Their payments and submissions are kept.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound("student not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return notFound("student not found")
		}
		return appErrors.Internal(err, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("id", id))
	invalidateDashboard(ctx, s.cache)
	return nil
}

func (s *StudentService) formatStudentID(seq int) string {
	return fmt.Sprintf("%s%0*d", s.cfg.IDPrefix, s.cfg.IDDigits, seq)
}
