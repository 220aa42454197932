package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
)

// TimingsHandler manages the weekly working windows of the signed-in
// doctor. Cached availability picks up changes after its TTL.
type TimingsHandler struct {
	db *gorm.DB
}

func NewTimingsHandler(db *gorm.DB) *TimingsHandler {
	return &TimingsHandler{db: db}
}

type TimingRequest struct {
	DayOfWeek    string `json:"day_of_week" binding:"required,weekday"`
	StartTime    string `json:"start_time" binding:"required,clock"`
	EndTime      string `json:"end_time" binding:"required,clock"`
	SlotDuration int    `json:"slot_duration" binding:"omitempty,min=5,max=240"`
}

func (h *TimingsHandler) List(c *gin.Context) {
	session := middleware.MustSession(c)

	var timings []models.DoctorTiming
	if err := h.db.WithContext(c.Request.Context()).
		Where("doctor_id = ?", session.UserID).
		Order("id ASC").
		Find(&timings).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, timings)
}

func (h *TimingsHandler) Add(c *gin.Context) {
	session := middleware.MustSession(c)

	var req TimingRequest
	if !bindJSON(c, &req) {
		return
	}

	start, _ := calendar.ParseClock(req.StartTime)
	end, _ := calendar.ParseClock(req.EndTime)

	duration := req.SlotDuration
	if duration == 0 {
		duration = appointment.DefaultSlotDuration
	}

	if !start.Before(end) || start.Add(duration).Minutes() > end.Minutes() {
		httperr.BadRequest(c, "invalid_timing", "The window must fit at least one slot.")
		return
	}

	timing := models.DoctorTiming{
		DoctorID:     session.UserID,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    start,
		EndTime:      end,
		SlotDuration: duration,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&timing).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, timing)
}

func (h *TimingsHandler) Delete(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND doctor_id = ?", id, session.UserID).
		Delete(&models.DoctorTiming{})
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, httperr.ErrNotFound("timing_not_found"))
		return
	}

	c.Status(http.StatusNoContent)
}
