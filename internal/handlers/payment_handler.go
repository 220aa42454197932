package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/usecase/payment"
)

type PaymentHandler struct {
	db      *gorm.DB
	confirm *payment.ConfirmPayment
	sync    *payment.SyncPayment
	history *payment.PaymentHistory
}

func NewPaymentHandler(
	db *gorm.DB,
	confirm *payment.ConfirmPayment,
	sync *payment.SyncPayment,
	history *payment.PaymentHistory,
) *PaymentHandler {
	return &PaymentHandler{db: db, confirm: confirm, sync: sync, history: history}
}

type ConfirmPaymentRequest struct {
	AppointmentID uint   `json:"appointmentId" binding:"required"`
	Provider      string `json:"provider"`
	TransactionID string `json:"transactionId" binding:"required"`
}

type OfflinePaymentRequest struct {
	AppointmentID uint   `json:"appointmentId" binding:"required"`
	Method        string `json:"method" binding:"omitempty,oneof=upi cash"`
}

// webhookEvent is the MercadoPago notification body.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// POST /payments/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	session := middleware.MustSession(c)

	var req ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.confirm.Execute(c.Request.Context(), payment.ConfirmInput{
		PatientID:     session.UserID,
		AppointmentID: req.AppointmentID,
		Method:        status.MethodCard,
		Provider:      req.Provider,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// POST /payments/upi
func (h *PaymentHandler) Offline(c *gin.Context) {
	session := middleware.MustSession(c)

	var req OfflinePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	method := status.MethodUPI
	if req.Method != "" {
		method = status.PaymentMethod(req.Method)
	}

	p, err := h.confirm.Execute(c.Request.Context(), payment.ConfirmInput{
		PatientID:     session.UserID,
		AppointmentID: req.AppointmentID,
		Method:        method,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Webhook always acknowledges events it does not act on, so the provider
// stops retrying them.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var ev webhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil || ev.Type != "payment" || ev.Data.ID == "" {
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.sync.Execute(c.Request.Context(), ev.Data.ID); err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			c.Status(http.StatusOK)
			return
		}
		httperr.Respond(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *PaymentHandler) History(c *gin.Context) {
	session := middleware.MustSession(c)

	payments, err := h.history.Execute(c.Request.Context(), session.UserID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, payments)
}

// GET /payments/appointment/:id, visible to the patient and the doctor of
// the appointment.
func (h *PaymentHandler) ByAppointment(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	column := "patient_id"
	if session.Role == status.RoleDoctor {
		column = "doctor_id"
	}

	var ap models.Appointment
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Payment").
		Where("id = ? AND "+column+" = ?", id, session.UserID).
		First(&ap).Error; err != nil {
		httperr.Respond(c, notFoundAs(err, "appointment_not_found"))
		return
	}

	if ap.Payment == nil {
		httperr.Respond(c, httperr.ErrNotFound("payment_not_found"))
		return
	}

	c.JSON(http.StatusOK, ap.Payment)
}
