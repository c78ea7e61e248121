package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"hotspot-monitor/internal/logbook"
	"hotspot-monitor/internal/logger"
	"hotspot-monitor/internal/models"
	"hotspot-monitor/internal/scheduler"
)

type fakeStatus struct {
	status models.Status
}

func (f *fakeStatus) Status() models.Status { return f.status }

type fakeBook struct {
	events    []models.LogEvent
	summaries []models.DailySummary
	pingErr   error
	queryErr  error

	gotSince time.Time
	gotLimit int
	gotDays  int
}

func (f *fakeBook) QueryEvents(_ context.Context, since time.Time, limit int) ([]models.LogEvent, error) {
	f.gotSince, f.gotLimit = since, limit
	return f.events, f.queryErr
}

func (f *fakeBook) SummarizeRange(_ context.Context, days int) ([]models.DailySummary, error) {
	f.gotDays = days
	return f.summaries, nil
}

func (f *fakeBook) Ping(context.Context) error { return f.pingErr }

type fakeJobs struct{}

func (fakeJobs) Jobs() []scheduler.JobStatus {
	return []scheduler.JobStatus{{Name: "Logbook Maintenance"}}
}

func newTestServer(status *fakeStatus, book *fakeBook) *Server {
	return New(status, book, fakeJobs{}, "127.0.0.1:0", logger.Discard())
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetStatus(t *testing.T) {
	st := &fakeStatus{status: models.Status{
		Mode:                models.ModeRecovering,
		Connectivity:        models.ConnectivityDown,
		ConsecutiveFailures: 2,
		StorageHealthy:      true,
	}}
	s := newTestServer(st, &fakeBook{})

	rec := get(t, s, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var got models.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Mode != models.ModeRecovering || got.ConsecutiveFailures != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestGetEvents(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
		wantSince time.Time
	}{
		{"defaults", "", http.StatusOK, logbook.DefaultQueryLimit, time.Time{}},
		{"rfc3339 since", "?since=2026-03-01T10:00:00Z&limit=5", http.StatusOK, 5, ts},
		{"unix since", "?since=1772359200", http.StatusOK, logbook.DefaultQueryLimit, time.Unix(1772359200, 0)},
		{"limit clamped", "?limit=100000", http.StatusOK, logbook.MaxQueryLimit, time.Time{}},
		{"bad since", "?since=yesterday", http.StatusBadRequest, 0, time.Time{}},
		{"bad limit", "?limit=ten", http.StatusBadRequest, 0, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := &fakeBook{events: []models.LogEvent{{Timestamp: ts, Kind: models.EventDisconnected}}}
			s := newTestServer(&fakeStatus{}, book)

			rec := get(t, s, "/api/events"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if book.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", book.gotLimit, tt.wantLimit)
			}
			if !book.gotSince.Equal(tt.wantSince) {
				t.Errorf("since = %v, want %v", book.gotSince, tt.wantSince)
			}

			var body struct {
				Events []models.LogEvent `json:"events"`
				Count  int               `json:"count"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Count != 1 || len(body.Events) != 1 {
				t.Errorf("count = %d, events = %d", body.Count, len(body.Events))
			}
		})
	}
}

func TestGetEventsEmptyIsArray(t *testing.T) {
	s := newTestServer(&fakeStatus{}, &fakeBook{})
	rec := get(t, s, "/api/events")

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body["events"]) != "[]" {
		t.Errorf("events = %s, want []", body["events"])
	}
}

func TestGetEventsQueryError(t *testing.T) {
	s := newTestServer(&fakeStatus{}, &fakeBook{queryErr: errors.New("locked")})
	if rec := get(t, s, "/api/events"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetSummary(t *testing.T) {
	tests := []struct {
		query    string
		wantCode int
		wantDays int
	}{
		{"", http.StatusOK, defaultSummaryDays},
		{"?days=3", http.StatusOK, 3},
		{"?days=365", http.StatusOK, maxSummaryDays},
		{"?days=0", http.StatusBadRequest, 0},
		{"?days=x", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			book := &fakeBook{summaries: []models.DailySummary{{Date: "2026-03-01", DisconnectCount: 1}}}
			s := newTestServer(&fakeStatus{}, book)

			rec := get(t, s, "/api/summary"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && book.gotDays != tt.wantDays {
				t.Errorf("days = %d, want %d", book.gotDays, tt.wantDays)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		storageOK  bool
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"healthy", true, nil, http.StatusOK, "healthy"},
		{"degraded storage", false, nil, http.StatusOK, "degraded"},
		{"database down", true, errors.New("closed"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStatus{status: models.Status{StorageHealthy: tt.storageOK}}
			s := newTestServer(st, &fakeBook{pingErr: tt.pingErr})

			rec := get(t, s, "/api/health")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body struct {
				Status string                `json:"status"`
				Jobs   []scheduler.JobStatus `json:"jobs"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantStatus)
			}
			if len(body.Jobs) != 1 {
				t.Errorf("jobs = %d, want 1", len(body.Jobs))
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeStatus{}, &fakeBook{})
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(&fakeStatus{}, &fakeBook{})
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestRecoverJSON(t *testing.T) {
	s := newTestServer(&fakeStatus{}, &fakeBook{})
	s.router.GET("/boom", func(c *gin.Context) { panic("handler bug") })

	rec := get(t, s, "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["request_id"] == "" || body["request_id"] != rec.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %q, header = %q", body["request_id"], rec.Header().Get("X-Request-ID"))
	}
}
