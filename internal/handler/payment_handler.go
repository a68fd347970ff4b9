package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/response"
)

type paymentService interface {
	Record(ctx context.Context, req service.RecordPaymentRequest) (*models.Payment, error)
	StudentSummary(ctx context.Context, studentID string) (*service.StudentPayments, error)
	All(ctx context.Context) ([]models.Payment, error)
}

type paymentExporter interface {
	Payments(ctx context.Context, format string) (*service.ExportFile, error)
}

// PaymentHandler exposes the payment journal.
type PaymentHandler struct {
	payments paymentService
	exporter paymentExporter
	expander expander
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService, exporter paymentExporter, expander expander) *PaymentHandler {
	return &PaymentHandler{payments: payments, exporter: exporter, expander: expander}
}

// Create godoc
// @Summary Record a payment
// @Description Appends to the journal. Enrollment fees are not updated.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Student godoc
// @Summary Caller's payments and fee totals
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/student [get]
func (h *PaymentHandler) Student(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.payments.StudentSummary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.expander.Payments(c.Request.Context(), summary.Payments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.PaymentSummary{
		Payments:      views,
		TotalFees:     summary.TotalFees,
		TotalPaid:     summary.TotalPaid,
		RemainingFees: summary.RemainingFees,
	}, nil)
}

// All godoc
// @Summary Full payment journal
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/all [get]
func (h *PaymentHandler) All(c *gin.Context) {
	payments, err := h.payments.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.expander.Payments(c.Request.Context(), payments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Export godoc
// @Summary Export the payment journal
// @Tags Payments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	file, err := h.exporter.Payments(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
