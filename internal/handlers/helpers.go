package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/httperr"
)

// paramID reads a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(400, gin.H{
			"error_code": "invalid_request",
			"message":    err.Error(),
		})
		return false
	}
	return true
}

func queryDate(c *gin.Context, name string) (calendar.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter "+name+" is required.")
		return calendar.Date{}, false
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be formatted as YYYY-MM-DD.")
		return calendar.Date{}, false
	}
	return d, true
}

func notFoundAs(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}
