package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type ledgerStudentRepository interface {
	FindStudentByID(ctx context.Context, id string) (*models.User, error)
	UpdateEnrollments(ctx context.Context, id string, enrollments models.Enrollments, updatedAt time.Time) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollmentRequest names one (student, course) pair.
type EnrollmentRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	CourseID  string `json:"courseId" validate:"required"`
}

// UpdateFeesRequest sets the absolute paid amount of one enrollment.
type UpdateFeesRequest struct {
	StudentID  string `json:"studentId" validate:"required"`
	CourseID   string `json:"courseId" validate:"required"`
	PaidAmount *int64 `json:"paidAmount" validate:"required"`
}

// LedgerService maintains the enrollment list embedded in each student.
// Every mutation reads the student, edits the list in memory and writes the
// whole list back without a lock or version check, so the last writer wins.
type LedgerService struct {
	students  ledgerStudentRepository
	courses   courseFinder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedgerService constructs the ledger.
func NewLedgerService(students ledgerStudentRepository, courses courseFinder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{students: students, courses: courses, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Enroll appends a course with a fresh fee snapshot priced at the course's
// current price.
func (s *LedgerService) Enroll(ctx context.Context, req EnrollmentRequest) (student *models.User, err error) {
	defer func() { s.metrics.RecordLedgerOperation(LedgerOpEnroll, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "studentId and courseId are required")
	}
	student, err = s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	course, err := s.loadCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if student.Enrollments.Has(course.ID) {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}

	student.Enrollments = append(student.Enrollments, s.newEnrollment(course))
	if err := s.persist(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info("course assigned",
		zap.String("student_id", student.ID),
		zap.String("course_id", course.ID),
		zap.Int64("total", course.Price),
	)
	return student, nil
}

// Unenroll drops every entry for the course. Removing a course the student
// does not have is a no-op that still returns the student.
func (s *LedgerService) Unenroll(ctx context.Context, req EnrollmentRequest) (student *models.User, err error) {
	defer func() { s.metrics.RecordLedgerOperation(LedgerOpUnenroll, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "studentId and courseId are required")
	}
	student, err = s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	remaining := student.Enrollments.Without(req.CourseID)
	if len(remaining) == len(student.Enrollments) {
		return student, nil
	}

	student.Enrollments = remaining
	if err := s.persist(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info("course removed", zap.String("student_id", student.ID), zap.String("course_id", req.CourseID))
	return student, nil
}

// SetPaidAmount overwrites the paid amount of an enrollment. The value is not
// clamped, so remaining goes negative on overpayment.
func (s *LedgerService) SetPaidAmount(ctx context.Context, req UpdateFeesRequest) (student *models.User, err error) {
	defer func() { s.metrics.RecordLedgerOperation(LedgerOpSetPaid, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "studentId, courseId and paidAmount are required")
	}
	student, err = s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	idx := student.Enrollments.Index(req.CourseID)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrCourseNotAssigned, "")
	}

	student.Enrollments[idx].Fees.SetPaid(*req.PaidAmount)
	if err := s.persist(ctx, student); err != nil {
		return nil, err
	}
	fees := student.Enrollments[idx].Fees
	s.logger.Info("fees updated",
		zap.String("student_id", student.ID),
		zap.String("course_id", req.CourseID),
		zap.Int64("paid", fees.Paid),
		zap.Int64("remaining", fees.Remaining),
	)
	return student, nil
}

// BuildEnrollments snapshots each resolvable course for a new student. Ids
// that are malformed or unknown are skipped and repeated ids yield one entry.
func (s *LedgerService) BuildEnrollments(ctx context.Context, courseIDs []string) (models.Enrollments, error) {
	enrollments := models.Enrollments{}
	for _, id := range courseIDs {
		if !validID(id) || enrollments.Has(id) {
			continue
		}
		course, err := s.courses.FindByID(ctx, id)
		if err != nil {
			if isNoRows(err) {
				s.logger.Debug("skipping unknown course", zap.String("course_id", id))
				continue
			}
			return nil, appErrors.Internal(err, "failed to load course")
		}
		enrollments = append(enrollments, s.newEnrollment(course))
	}
	return enrollments, nil
}

func (s *LedgerService) newEnrollment(course *models.Course) models.Enrollment {
	return models.Enrollment{
		CourseID:  course.ID,
		StartDate: s.now().UTC(),
		Fees:      models.NewFeeSnapshot(course.Price),
	}
}

func (s *LedgerService) loadStudent(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, notFound("student not found")
	}
	student, err := s.students.FindStudentByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

func (s *LedgerService) loadCourse(ctx context.Context, id string) (*models.Course, error) {
	if !validID(id) {
		return nil, notFound("course not found")
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

func (s *LedgerService) persist(ctx context.Context, student *models.User) error {
	updatedAt := s.now().UTC()
	if err := s.students.UpdateEnrollments(ctx, student.ID, student.Enrollments, updatedAt); err != nil {
		if isNoRows(err) {
			return notFound("student not found")
		}
		return appErrors.Internal(err, "failed to update enrollments")
	}
	student.UpdatedAt = updatedAt
	return nil
}
