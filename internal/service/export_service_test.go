package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

func TestExportPaymentsCSV(t *testing.T) {
	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	alice := users.put(newStudent("Alice", "STU001"))
	course := courses.add("Full Stack Web", 15000)
	payments := &fakePaymentRepo{}
	journal := NewPaymentService(payments, users, nil, nil, nil)
	paidAt := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	_, err := journal.Record(context.Background(), RecordPaymentRequest{
		StudentID: alice.ID, CourseID: course.ID, Amount: int64Ptr(5000), PaymentMethod: "cash", TransactionID: "TX-9", PaymentDate: &paidAt,
	})
	require.NoError(t, err)

	svc := NewExportService(journal, NewExpansionService(users, courses, nil), nil)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC) }

	file, err := svc.Payments(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "payments_20240201_083000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	body := string(file.Body)
	assert.True(t, strings.HasPrefix(body, "Date,Student ID,Student,Course,Method,Transaction,Amount"))
	assert.Contains(t, body, "STU001,Alice,Full Stack Web,cash,TX-9,5000")
}

func TestExportPaymentsPDFAndInvalidFormat(t *testing.T) {
	payments := &fakePaymentRepo{}
	journal := NewPaymentService(payments, newFakeUserRepo(), nil, nil, nil)
	_, err := journal.Record(context.Background(), RecordPaymentRequest{
		StudentID: uuid.NewString(), CourseID: uuid.NewString(), Amount: int64Ptr(10), PaymentMethod: "cash",
	})
	require.NoError(t, err)
	svc := NewExportService(journal, NewExpansionService(newFakeUserRepo(), newFakeCourseRepo(), nil), nil)

	file, err := svc.Payments(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF"))

	_, err = svc.Payments(context.Background(), "xlsx")
	requireCode(t, err, appErrors.ErrValidation.Code)
}

func TestExportPaymentRowWithoutReferences(t *testing.T) {
	row := paymentRow(models.PaymentView{Payment: models.Payment{Amount: 42, PaymentMethod: "card"}})
	assert.Equal(t, "card", row[4])
	assert.Equal(t, "", row[5])
	assert.Equal(t, "42", row[6])
}
