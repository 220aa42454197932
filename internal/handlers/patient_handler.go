package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/report"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/infra/storage"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
)

type RatingSource interface {
	RatingStats(ctx context.Context, doctorID uint) (report.Rating, error)
}

// PatientHandler serves doctor discovery and the signed-in patient's own
// profile.
type PatientHandler struct {
	db      *gorm.DB
	ratings RatingSource
	store   storage.Store
}

func NewPatientHandler(db *gorm.DB, ratings RatingSource, store storage.Store) *PatientHandler {
	return &PatientHandler{db: db, ratings: ratings, store: store}
}

// DoctorCard is one search result.
type DoctorCard struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	Degree          string  `json:"degree"`
	ExperienceYears int     `json:"experience_years"`
	Fees            float64 `json:"fees"`
	City            string  `json:"city"`
	ImageURL        string  `json:"image_url"`
	Available       bool    `json:"available"`
	AverageRating   float64 `json:"average_rating"`
	ReviewCount     int64   `json:"review_count"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Phone       *string `json:"phone"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,civildate"`
	Address     *string `json:"address"`
}

// ======================================================
// DOCTOR SEARCH
// ======================================================

// SearchDoctors filters by specialization, city (location), minRating and
// maxFees. Unparseable numeric filters are ignored.
func (h *PatientHandler) SearchDoctors(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Table("doctors").
		Select(`doctors.id, doctors.name, doctors.specialization, doctors.degree,
			doctors.experience_years, doctors.fees, doctors.city, doctors.image_url,
			doctors.available,
			COALESCE(AVG(reviews.rating), 0) AS average_rating,
			COUNT(reviews.id) AS review_count`).
		Joins("LEFT JOIN reviews ON reviews.doctor_id = doctors.id").
		Group("doctors.id")

	if spec := strings.TrimSpace(c.Query("specialization")); spec != "" {
		q = q.Where("LOWER(doctors.specialization) = ?", strings.ToLower(spec))
	}

	if loc := strings.TrimSpace(c.Query("location")); loc != "" {
		like := "%" + strings.ToLower(loc) + "%"
		q = q.Where("LOWER(doctors.city) LIKE ? OR LOWER(doctors.address) LIKE ?", like, like)
	}

	if raw := c.Query("maxFees"); raw != "" {
		if fees, err := strconv.ParseFloat(raw, 64); err == nil {
			q = q.Where("doctors.fees <= ?", fees)
		}
	}

	if raw := c.Query("minRating"); raw != "" {
		if rating, err := strconv.ParseFloat(raw, 64); err == nil {
			q = q.Having("COALESCE(AVG(reviews.rating), 0) >= ?", rating)
		}
	}

	cards := []DoctorCard{}
	if err := q.Order("average_rating DESC, doctors.id ASC").Scan(&cards).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

func (h *PatientHandler) DoctorProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var doc models.Doctor
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Timings", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&doc, id).Error; err != nil {
		httperr.Respond(c, notFoundAs(err, "doctor_not_found"))
		return
	}

	rating, err := h.ratings.RatingStats(c.Request.Context(), doc.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"doctor":      doc,
		"ratingStats": rating,
	})
}

// ======================================================
// OWN PROFILE
// ======================================================

func (h *PatientHandler) GetProfile(c *gin.Context) {
	session := middleware.MustSession(c)

	var p models.Patient
	if err := h.db.WithContext(c.Request.Context()).First(&p, session.UserID).Error; err != nil {
		httperr.Respond(c, notFoundAs(err, "patient_not_found"))
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	session := middleware.MustSession(c)

	var req UpdatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}
	setIf(updates, "name", req.Name)
	setIf(updates, "phone", req.Phone)
	setIf(updates, "gender", req.Gender)
	setIf(updates, "address", req.Address)
	if req.DateOfBirth != nil {
		dob, _ := calendar.ParseDate(*req.DateOfBirth)
		updates["date_of_birth"] = dob
	}

	if len(updates) == 0 {
		httperr.BadRequest(c, "no_changes", "Nothing to update.")
		return
	}

	var p models.Patient
	if err := h.db.WithContext(c.Request.Context()).First(&p, session.UserID).Error; err != nil {
		httperr.Respond(c, notFoundAs(err, "patient_not_found"))
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Model(&p).Updates(updates).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PatientHandler) UploadPicture(c *gin.Context) {
	session := middleware.MustSession(c)

	url, ok := uploadPicture(c, h.store, fmt.Sprintf("patients/%d/profile.webp", session.UserID))
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Patient{}).
		Where("id = ?", session.UserID).
		Update("image_url", url).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
