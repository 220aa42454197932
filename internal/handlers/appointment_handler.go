package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/dto"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	availability *appointment.GetAvailability
	book         *appointment.BookAppointment
	list         *appointment.ListAppointments
	updateStatus *appointment.UpdateStatus
	complete     *appointment.CompleteAppointment
}

func NewAppointmentHandler(
	availability *appointment.GetAvailability,
	book *appointment.BookAppointment,
	list *appointment.ListAppointments,
	updateStatus *appointment.UpdateStatus,
	complete *appointment.CompleteAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		availability: availability,
		book:         book,
		list:         list,
		updateStatus: updateStatus,
		complete:     complete,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookAppointmentRequest struct {
	DoctorID         uint   `json:"doctorId" binding:"required"`
	Date             string `json:"appointment_date" binding:"required,civildate"`
	Time             string `json:"appointment_time" binding:"required,clock"`
	ConsultationType string `json:"consultation_type"`
	Symptoms         string `json:"symptoms"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CompleteAppointmentRequest struct {
	Medicines      string `json:"medicines"`
	Notes          string `json:"notes"`
	FollowUpDays   int    `json:"follow_up_days" binding:"min=0"`
	FollowUpReason string `json:"follow_up_reason"`
}

// ======================================================
// SLOTS
// ======================================================

func (h *AppointmentHandler) Slots(c *gin.Context) {
	doctorID, ok := paramID(c, "id")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	av, err := h.availability.Execute(c.Request.Context(), doctorID, date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slots":  av.Slots,
		"timing": av.Timing,
		"date":   date,
	})
}

// ======================================================
// BOOK
// ======================================================

func (h *AppointmentHandler) Book(c *gin.Context) {
	session := middleware.MustSession(c)

	var req BookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	// both already validated by the binding tags
	date, _ := calendar.ParseDate(req.Date)
	at, _ := calendar.ParseClock(req.Time)

	ap, err := h.book.Execute(c.Request.Context(), appointment.BookInput{
		DoctorID:         req.DoctorID,
		PatientID:        session.UserID,
		Date:             date,
		Time:             at,
		ConsultationType: status.ConsultationType(req.ConsultationType),
		Symptoms:         req.Symptoms,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.FromAppointment(*ap))
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListForDoctor(c *gin.Context) {
	session := middleware.MustSession(c)
	h.listWith(c, domain.ListFilter{DoctorID: session.UserID})
}

func (h *AppointmentHandler) ListForPatient(c *gin.Context) {
	session := middleware.MustSession(c)
	h.listWith(c, domain.ListFilter{PatientID: session.UserID})
}

func (h *AppointmentHandler) listWith(c *gin.Context, f domain.ListFilter) {
	if raw := c.Query("status"); raw != "" {
		st := status.Appointment(raw)
		if !st.Valid() {
			httperr.BadRequest(c, "invalid_status", "Unknown appointment status.")
			return
		}
		f.Status = st
	}
	if c.Query("date") != "" {
		date, ok := queryDate(c, "date")
		if !ok {
			return
		}
		f.Date = &date
	}

	apps, err := h.list.Execute(c.Request.Context(), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAppointments(apps))
}

// ======================================================
// STATUS / COMPLETE
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.updateStatus.Execute(c.Request.Context(), session.UserID, id, status.Appointment(req.Status))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAppointment(*ap))
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CompleteAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	detail, err := h.complete.Execute(c.Request.Context(), appointment.CompleteInput{
		DoctorID:       session.UserID,
		AppointmentID:  id,
		Medicines:      req.Medicines,
		Notes:          req.Notes,
		FollowUpDays:   req.FollowUpDays,
		FollowUpReason: req.FollowUpReason,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
