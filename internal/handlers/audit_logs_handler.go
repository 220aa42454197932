package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/models"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

// AuditLogsHandler exposes the caller's own trail. Nobody reads another
// actor's entries, not even a doctor reading their patients'.
type AuditLogsHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewAuditLogsHandler(db *gorm.DB, loc *time.Location) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, loc: loc}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	session := middleware.MustSession(c)

	page, limit := pagination(c, auditDefaultLimit, auditMaxLimit)

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Where("actor_id = ? AND actor_role = ?", session.UserID, string(session.Role))

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}

	// from/to are clinic-local days, to is inclusive
	if c.Query("from") != "" {
		from, ok := queryDate(c, "from")
		if !ok {
			return
		}
		q = q.Where("created_at >= ?", from.In(h.loc))
	}
	if c.Query("to") != "" {
		to, ok := queryDate(c, "to")
		if !ok {
			return
		}
		q = q.Where("created_at < ?", to.AddDays(1).In(h.loc))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.Page(c, logs, total, page, limit)
}

// pagination reads ?page and ?limit, falling back to defaults on junk.
func pagination(c *gin.Context, def, maxLimit int) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > maxLimit {
		limit = def
	}
	return page, limit
}
