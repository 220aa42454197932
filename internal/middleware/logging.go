package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/metrics"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "requestID"
)

// RequestLogger tags the request with an id, then logs it with the errors
// handlers attached through httperr.Respond.
func RequestLogger(log *logger.Logger, m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		latency := time.Since(start)
		code := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(code), latency)

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     code,
			"latency_ms": latency.Milliseconds(),
		}
		if s, ok := SessionFrom(c); ok {
			fields["actor_id"] = s.UserID
			fields["actor_role"] = s.Role
		}
		if id := c.Param("id"); id != "" {
			fields["resource_id"] = id
		}

		entry := log.WithRequestID(requestID).WithFields(fields)

		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.Errors()).Error("request failed")
			return
		}
		if code >= 500 {
			entry.Error("request completed")
			return
		}
		entry.Info("request completed")
	}
}
