package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/logbook"
)

const (
	defaultSummaryDays = 7
	maxSummaryDays     = 90
)

// Handler serves the status API endpoints
type Handler struct {
	status StatusProvider
	book   LogbookReader
	jobs   JobLister
	logger *logrus.Logger
}

func NewHandler(status StatusProvider, book LogbookReader, jobs JobLister, logger *logrus.Logger) *Handler {
	return &Handler{status: status, book: book, jobs: jobs, logger: logger}
}

// GetStatus handles GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Status())
}

// GetEvents handles GET /api/events?since=&limit=
func (h *Handler) GetEvents(c *gin.Context) {
	since, err := parseSince(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339 or unix seconds"})
		return
	}

	limit := logbook.DefaultQueryLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = logbook.ClampLimit(parsed)
	}

	events, err := h.book.QueryEvents(c.Request.Context(), since, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": nonNil(events),
		"count":  len(events),
		"limit":  limit,
	})
}

// GetSummary handles GET /api/summary?days=
func (h *Handler) GetSummary(c *gin.Context) {
	days := defaultSummaryDays
	if d := c.Query("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = min(parsed, maxSummaryDays)
	}

	summaries, err := h.book.SummarizeRange(c.Request.Context(), days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to summarize logbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize logbook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":      days,
		"summaries": summaries,
	})
}

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	status := h.status.Status()
	body := gin.H{
		"timestamp":       time.Now().UTC(),
		"mode":            status.Mode,
		"connectivity":    status.Connectivity,
		"storage_healthy": status.StorageHealthy,
	}
	if h.jobs != nil {
		body["jobs"] = h.jobs.Jobs()
	}

	if err := h.book.Ping(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Logbook health check failed")
		body["status"] = "unhealthy"
		body["error"] = "logbook unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	if !status.StorageHealthy {
		body["status"] = "degraded"
		c.JSON(http.StatusOK, body)
		return
	}

	body["status"] = "healthy"
	c.JSON(http.StatusOK, body)
}

func parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
