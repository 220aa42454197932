package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
)

const notificationPage = 50

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// Mine lists the latest delivery log entries addressed to the caller.
func (h *NotificationHandler) Mine(c *gin.Context) {
	session := middleware.MustSession(c)
	ctx := c.Request.Context()

	email, err := emailOf(h.db.WithContext(ctx), session)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	entries := []models.EmailNotification{}
	if err := h.db.WithContext(ctx).
		Where("recipient_email = ?", email).
		Order("sent_at DESC").
		Limit(notificationPage).
		Find(&entries).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, entries)
}

func emailOf(db *gorm.DB, s middleware.Session) (string, error) {
	var (
		table any = &models.Patient{}
		code      = "patient_not_found"
	)
	if s.Role == status.RoleDoctor {
		table, code = &models.Doctor{}, "doctor_not_found"
	}

	var emails []string
	err := db.Model(table).Where("id = ?", s.UserID).Pluck("email", &emails).Error
	if err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return "", httperr.ErrNotFound(code)
	}
	return emails[0], nil
}
