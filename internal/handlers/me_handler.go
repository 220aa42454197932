package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		httperr.Unauthorized(c, "session_not_in_context", "Not signed in.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var user any
	switch session.Role {
	case status.RoleDoctor:
		var doc models.Doctor
		if err := db.First(&doc, session.UserID).Error; err != nil {
			httperr.Respond(c, notFoundAs(err, "doctor_not_found"))
			return
		}
		user = doc
	default:
		var p models.Patient
		if err := db.First(&p, session.UserID).Error; err != nil {
			httperr.Respond(c, notFoundAs(err, "patient_not_found"))
			return
		}
		user = p
	}

	c.JSON(http.StatusOK, gin.H{
		"role": session.Role,
		"user": user,
	})
}
