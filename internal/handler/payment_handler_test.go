package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type fakePaymentSrv struct {
	summary     *service.StudentPayments
	lastStudent string
	recorded    *service.RecordPaymentRequest
}

func (f *fakePaymentSrv) Record(_ context.Context, req service.RecordPaymentRequest) (*models.Payment, error) {
	f.recorded = &req
	return &models.Payment{ID: "p-1", StudentID: req.StudentID, Amount: *req.Amount}, nil
}

func (f *fakePaymentSrv) StudentSummary(_ context.Context, studentID string) (*service.StudentPayments, error) {
	f.lastStudent = studentID
	return f.summary, nil
}

func (f *fakePaymentSrv) All(context.Context) ([]models.Payment, error) {
	return []models.Payment{{ID: "p-1"}, {ID: "p-2"}}, nil
}

type fakeExporter struct {
	err error
}

func (f fakeExporter) Payments(_ context.Context, format string) (*service.ExportFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: "payments_20240201_000000." + format, ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

func TestPaymentHandlerStudentSummaryUsesCaller(t *testing.T) {
	payments := &fakePaymentSrv{summary: &service.StudentPayments{
		Payments:      []models.Payment{{ID: "p-1", Amount: 12000}},
		TotalFees:     12000,
		TotalPaid:     12000,
		RemainingFees: 0,
	}}
	h := NewPaymentHandler(payments, fakeExporter{}, stubExpander{})

	c, rec := newContext(http.MethodGet, "/payments/student", nil, studentClaims("student-9"))
	h.Student(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student-9", payments.lastStudent)
	var summary models.PaymentSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &summary))
	assert.Equal(t, int64(12000), summary.TotalPaid)
	assert.Len(t, summary.Payments, 1)
}

func TestPaymentHandlerStudentRequiresClaims(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentSrv{}, fakeExporter{}, stubExpander{})

	c, rec := newContext(http.MethodGet, "/payments/student", nil, nil)
	h.Student(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPaymentHandlerCreate(t *testing.T) {
	payments := &fakePaymentSrv{}
	h := NewPaymentHandler(payments, fakeExporter{}, stubExpander{})

	c, rec := newContext(http.MethodPost, "/payments", map[string]interface{}{
		"studentId": "s-1", "courseId": "c-1", "amount": 12000, "paymentMethod": "cash",
	}, adminClaims())
	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, payments.recorded)
	assert.Equal(t, "cash", payments.recorded.PaymentMethod)
}

func TestPaymentHandlerExport(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentSrv{}, fakeExporter{}, stubExpander{})

	c, rec := newContext(http.MethodGet, "/payments/export?format=pdf", nil, adminClaims())
	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="payments_20240201_000000.pdf"`, rec.Header().Get("Content-Disposition"))

	h = NewPaymentHandler(&fakePaymentSrv{}, fakeExporter{err: appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")}, stubExpander{})
	c, rec = newContext(http.MethodGet, "/payments/export?format=xls", nil, adminClaims())
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentHandlerAll(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentSrv{}, fakeExporter{}, stubExpander{})

	c, rec := newContext(http.MethodGet, "/payments/all", nil, adminClaims())
	h.All(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var views []models.PaymentView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &views))
	assert.Len(t, views, 2)
}
