package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/audit"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/infra/imaging"
	"github.com/prescripto/prescripto-api/internal/infra/storage"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
)

const maxPictureBytes = 5 << 20

// DoctorHandler serves the signed-in doctor's own profile.
type DoctorHandler struct {
	db    *gorm.DB
	store storage.Store
	audit audit.Recorder
}

func NewDoctorHandler(db *gorm.DB, store storage.Store, audit audit.Recorder) *DoctorHandler {
	return &DoctorHandler{db: db, store: store, audit: audit}
}

type UpdateDoctorRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1"`
	Phone           *string  `json:"phone"`
	Specialization  *string  `json:"specialization" binding:"omitempty,min=1"`
	Degree          *string  `json:"degree"`
	ExperienceYears *int     `json:"experience" binding:"omitempty,min=0"`
	About           *string  `json:"about"`
	Fees            *float64 `json:"fees" binding:"omitempty,min=0"`
	Address         *string  `json:"address"`
	City            *string  `json:"city"`
	Available       *bool    `json:"available"`
}

func (h *DoctorHandler) GetProfile(c *gin.Context) {
	session := middleware.MustSession(c)

	var doc models.Doctor
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Timings").
		First(&doc, session.UserID).Error; err != nil {
		httperr.Respond(c, notFoundAs(err, "doctor_not_found"))
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	session := middleware.MustSession(c)

	var req UpdateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}
	setIf(updates, "name", req.Name)
	setIf(updates, "phone", req.Phone)
	setIf(updates, "specialization", req.Specialization)
	setIf(updates, "degree", req.Degree)
	setIf(updates, "experience_years", req.ExperienceYears)
	setIf(updates, "about", req.About)
	setIf(updates, "fees", req.Fees)
	setIf(updates, "address", req.Address)
	setIf(updates, "city", req.City)
	setIf(updates, "available", req.Available)

	if len(updates) == 0 {
		httperr.BadRequest(c, "no_changes", "Nothing to update.")
		return
	}

	var doc models.Doctor
	if err := h.db.WithContext(c.Request.Context()).First(&doc, session.UserID).Error; err != nil {
		httperr.Respond(c, notFoundAs(err, "doctor_not_found"))
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Model(&doc).Updates(updates).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID:   session.UserID,
		ActorRole: string(status.RoleDoctor),
		Action:    "profile_updated",
		Entity:    "doctor",
		EntityID:  &doc.ID,
		Metadata:  updates,
	})

	c.JSON(http.StatusOK, doc)
}

// UploadPicture accepts a multipart "image" field, converts it to webp and
// stores it under doctors/{id}/profile.webp.
func (h *DoctorHandler) UploadPicture(c *gin.Context) {
	session := middleware.MustSession(c)

	url, ok := uploadPicture(c, h.store, fmt.Sprintf("doctors/%d/profile.webp", session.UserID))
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Doctor{}).
		Where("id = ?", session.UserID).
		Update("image_url", url).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

// --------- Helpers ---------

func setIf[T any](m map[string]any, column string, v *T) {
	if v != nil {
		m[column] = *v
	}
}

func uploadPicture(c *gin.Context, store storage.Store, key string) (string, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		httperr.BadRequest(c, "missing_image", "Multipart field image is required.")
		return "", false
	}
	if fh.Size > maxPictureBytes {
		httperr.BadRequest(c, "image_too_large", "Images must be at most 5MB.")
		return "", false
	}

	f, err := fh.Open()
	if err != nil {
		httperr.Respond(c, err)
		return "", false
	}
	defer f.Close()

	data, err := imaging.ToWebP(f)
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "The file is not a supported image.")
		return "", false
	}

	url, err := store.Put(c.Request.Context(), key, "image/webp", data)
	if err != nil {
		httperr.Respond(c, httperr.ErrExternal("upload_failed", err))
		return "", false
	}
	return url, true
}
