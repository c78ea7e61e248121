package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID tags every request with the caller's X-Request-ID or a new UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one line per request. Successful polls log at debug so
// a status dashboard refreshing every few seconds stays out of the log.
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"id":     c.GetString(requestIDKey),
			"route":  c.Request.Method + " " + c.Request.URL.Path,
			"status": status,
			"took":   time.Since(began).Round(time.Microsecond),
		})
		switch {
		case status >= http.StatusInternalServerError || len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Status API request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("Status API request rejected")
		default:
			entry.Debug("Status API request")
		}
	}
}

// RecoverJSON answers a handler panic with a JSON 500 carrying the request ID
func RecoverJSON(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(logger.WriterLevel(logrus.ErrorLevel), func(c *gin.Context, recovered any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      "internal error",
			"request_id": c.GetString(requestIDKey),
		})
	})
}
