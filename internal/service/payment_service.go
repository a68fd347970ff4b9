package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
}

type studentFinder interface {
	FindStudentByID(ctx context.Context, id string) (*models.User, error)
}

// RecordPaymentRequest is the payload for appending to the journal.
type RecordPaymentRequest struct {
	StudentID     string     `json:"studentId" validate:"required,uuid"`
	CourseID      string     `json:"courseId" validate:"required,uuid"`
	Amount        *int64     `json:"amount" validate:"required,gt=0"`
	PaymentMethod string     `json:"paymentMethod" validate:"required"`
	TransactionID string     `json:"transactionId"`
	PaymentDate   *time.Time `json:"paymentDate"`
}

// StudentPayments is a student's journal entries with the fee totals.
type StudentPayments struct {
	Payments      []models.Payment
	TotalFees     int64
	TotalPaid     int64
	RemainingFees int64
}

// PaymentService owns the payment journal. It never touches the enrollment
// ledger; recording a payment and updating ledger fees are separate calls.
type PaymentService struct {
	repo      paymentRepository
	students  studentFinder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, students studentFinder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, metrics: metrics, validator: validate, logger: logger}
}

// Record appends a payment. Student and course ids are checked for shape
// only; they need not resolve to live records.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*models.Payment, error) {
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payment payload")
	}

	payment := &models.Payment{
		StudentID:     req.StudentID,
		CourseID:      req.CourseID,
		Amount:        *req.Amount,
		PaymentMethod: req.PaymentMethod,
	}
	if tx := strings.TrimSpace(req.TransactionID); tx != "" {
		payment.TransactionID = &tx
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = req.PaymentDate.UTC()
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Internal(err, "failed to record payment")
	}
	s.metrics.RecordPayment(payment.Amount)
	s.logger.Info("payment recorded",
		zap.String("id", payment.ID),
		zap.String("student_id", payment.StudentID),
		zap.String("course_id", payment.CourseID),
		zap.Int64("amount", payment.Amount),
	)
	return payment, nil
}

// StudentSummary totals a student's enrollment fees against the journal.
// TotalPaid sums payments, not the ledger's paid fields.
func (s *PaymentService) StudentSummary(ctx context.Context, studentID string) (*StudentPayments, error) {
	if !validID(studentID) {
		return nil, notFound("student not found")
	}
	student, err := s.students.FindStudentByID(ctx, studentID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}

	payments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}

	summary := &StudentPayments{Payments: payments, TotalFees: student.Enrollments.TotalFees()}
	for _, p := range payments {
		summary.TotalPaid += p.Amount
	}
	summary.RemainingFees = summary.TotalFees - summary.TotalPaid
	return summary, nil
}

// All returns the full journal, newest first.
func (s *PaymentService) All(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	return payments, nil
}
