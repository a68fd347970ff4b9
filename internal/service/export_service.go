package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
	"github.com/noah-isme/academy-api/pkg/export"
)

type journalLister interface {
	All(ctx context.Context) ([]models.Payment, error)
}

type paymentExpander interface {
	Payments(ctx context.Context, payments []models.Payment) ([]models.PaymentView, error)
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the payment journal as CSV or PDF.
type ExportService struct {
	payments journalLister
	expander paymentExpander
	render   func(export.Format, export.Table) ([]byte, error)
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(payments journalLister, expander paymentExpander, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{payments: payments, expander: expander, render: export.Render, logger: logger, now: time.Now}
}

// Payments renders every journal entry with student and course names.
func (s *ExportService) Payments(ctx context.Context, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Validation(err, "format must be csv or pdf")
	}

	payments, err := s.payments.All(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.expander.Payments(ctx, payments)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   "Payment Journal",
		Headers: []string{"Date", "Student ID", "Student", "Course", "Method", "Transaction", "Amount"},
		Rows:    make([][]string, 0, len(views)),
	}
	var total int64
	for _, v := range views {
		table.Rows = append(table.Rows, paymentRow(v))
		total += v.Amount
	}

	body, err := s.render(format, table)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Info("payments exported", zap.String("format", string(format)), zap.Int("rows", len(views)), zap.Int64("total", total))

	return &ExportFile{
		Filename:    fmt.Sprintf("payments_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func paymentRow(v models.PaymentView) []string {
	var code, name, course, tx string
	if v.Student != nil {
		name = v.Student.Name
		if v.Student.StudentID != nil {
			code = *v.Student.StudentID
		}
	}
	if v.Course != nil {
		course = v.Course.Title
	}
	if v.TransactionID != nil {
		tx = *v.TransactionID
	}
	return []string{
		v.PaymentDate.UTC().Format("2006-01-02"),
		code,
		name,
		course,
		v.PaymentMethod,
		tx,
		strconv.FormatInt(v.Amount, 10),
	}
}
