package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/audit"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
)

type ReviewHandler struct {
	db      *gorm.DB
	ratings RatingSource
	audit   audit.Recorder
}

func NewReviewHandler(db *gorm.DB, ratings RatingSource, audit audit.Recorder) *ReviewHandler {
	return &ReviewHandler{db: db, ratings: ratings, audit: audit}
}

type AddReviewRequest struct {
	AppointmentID uint   `json:"appointmentId" binding:"required"`
	Rating        int    `json:"rating" binding:"required"`
	Comment       string `json:"comment" binding:"max=2000"`
}

// Add reviews a completed appointment of the signed-in patient. Each
// appointment takes one review.
func (h *ReviewHandler) Add(c *gin.Context) {
	session := middleware.MustSession(c)

	var req AddReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		httperr.Respond(c, httperr.ErrValidation("invalid_rating"))
		return
	}

	ctx := c.Request.Context()

	var ap models.Appointment
	if err := h.db.WithContext(ctx).First(&ap, req.AppointmentID).Error; err != nil {
		httperr.Respond(c, notFoundAs(err, "appointment_not_found"))
		return
	}
	if ap.PatientID != session.UserID {
		httperr.Respond(c, httperr.ErrForbidden("not_owner"))
		return
	}
	if ap.Status != status.Completed {
		httperr.Respond(c, httperr.ErrBusiness("not_completed"))
		return
	}

	var count int64
	if err := h.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("appointment_id = ?", ap.ID).
		Count(&count).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	if count > 0 {
		httperr.Respond(c, httperr.ErrBusiness("already_reviewed"))
		return
	}

	review := models.Review{
		AppointmentID: ap.ID,
		DoctorID:      ap.DoctorID,
		PatientID:     session.UserID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := h.db.WithContext(ctx).Create(&review).Error; err != nil {
		// concurrent duplicate lost the race on the unique index
		if httperr.IsUniqueViolation(err, "") {
			httperr.Respond(c, httperr.ErrBusiness("already_reviewed"))
			return
		}
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID:   session.UserID,
		ActorRole: string(status.RolePatient),
		Action:    "review_added",
		Entity:    "review",
		EntityID:  &review.ID,
		Metadata:  map[string]any{"appointment_id": ap.ID, "rating": req.Rating},
	})

	httpresp.Created(c, review)
}

// ForDoctor lists the reviews of a doctor with the rating stats.
func (h *ReviewHandler) ForDoctor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	reviews := []models.Review{}
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Patient", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "image_url")
		}).
		Where("doctor_id = ?", id).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	rating, err := h.ratings.RatingStats(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":     reviews,
		"ratingStats": rating,
	})
}

func (h *ReviewHandler) Mine(c *gin.Context) {
	session := middleware.MustSession(c)

	reviews := []models.Review{}
	if err := h.db.WithContext(c.Request.Context()).
		Where("patient_id = ?", session.UserID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, reviews)
}
