package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amptron-th/testdoc-api/internal/dto"
	"github.com/amptron-th/testdoc-api/internal/models"
	"github.com/amptron-th/testdoc-api/internal/service"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
	"github.com/amptron-th/testdoc-api/pkg/response"
)

// EmailHandler exposes the notification endpoints.
type EmailHandler struct {
	emails  *service.EmailService
	metrics *service.MetricsService
}

// NewEmailHandler constructs handler.
func NewEmailHandler(emails *service.EmailService, metrics *service.MetricsService) *EmailHandler {
	return &EmailHandler{emails: emails, metrics: metrics}
}

// Send godoc
// @Summary Email a QR code to one recipient
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body dto.SendEmailRequest true "Notification request"
// @Success 200 {object} response.Envelope
// @Router /send-email [post]
func (h *EmailHandler) Send(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification request"))
		return
	}

	rec, err := h.emails.Notify(c.Request.Context(), req)
	if rec.Status != "" {
		h.metrics.RecordEmail(rec.Status)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// SendBulk godoc
// @Summary Email a QR code to several recipients
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body dto.BulkSendRequest true "Bulk notification request"
// @Success 200 {object} response.Envelope
// @Router /send-email/bulk [post]
func (h *EmailHandler) SendBulk(c *gin.Context) {
	var req dto.BulkSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk request"))
		return
	}

	resp := h.emails.BulkNotify(c.Request.Context(), req)
	for i := 0; i < resp.Sent; i++ {
		h.metrics.RecordEmail(models.EmailStatusSent)
	}
	for i := 0; i < resp.Failed; i++ {
		h.metrics.RecordEmail(models.EmailStatusFailed)
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Resend godoc
// @Summary Retry previously failed notifications
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body dto.ResendRequest true "Resend batch"
// @Success 200 {object} response.Envelope
// @Router /send-email/resend [post]
func (h *EmailHandler) Resend(c *gin.Context) {
	var req dto.ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resend request"))
		return
	}

	resp := h.emails.Resend(c.Request.Context(), req)
	response.JSON(c, http.StatusOK, resp, nil)
}

// History godoc
// @Summary Page through the delivery ledger
// @Tags Notifications
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} response.Envelope
// @Router /email-history [get]
func (h *EmailHandler) History(c *gin.Context) {
	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid history query"))
		return
	}

	records, total, err := h.emails.History(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, &models.Pagination{
		Limit:  query.Limit,
		Offset: query.Offset,
		Total:  total,
	})
}
