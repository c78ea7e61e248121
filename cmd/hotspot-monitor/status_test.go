package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotspot-monitor/internal/config"
	"hotspot-monitor/internal/models"
)

func TestFetchStatus(t *testing.T) {
	want := models.Status{
		Mode:                models.ModeMonitoring,
		Connectivity:        models.ConnectivityUp,
		ConsecutiveFailures: 0,
		StorageHealthy:      true,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	got, err := fetchStatus(context.Background(), strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("fetchStatus: %v", err)
	}
	if got.Connectivity != want.Connectivity || !got.StorageHealthy {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFetchStatusServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := fetchStatus(context.Background(), strings.TrimPrefix(srv.URL, "http://")); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, models.Status{
		Mode:                models.ModeRecovering,
		Connectivity:        models.ConnectivityDown,
		ConsecutiveFailures: 3,
		Episode:             &models.RecoveryEpisode{ID: "ep-1", Attempts: 2},
	})

	out := buf.String()
	for _, want := range []string{"RECOVERING", "DOWN", "Consecutive failures: 3", "ep-1 (2 attempts so far)", "FAILING"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintConfigHealth(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	printConfigHealth(&buf, &cfg, errors.New("hotspots[0].ssid cannot be empty"))
	if !strings.Contains(buf.String(), "Configuration: INVALID") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	cfg.Path = "hotspot_config.toml"
	cfg.Hotspots = []models.HotspotProfile{{SSID: "Office"}}
	printConfigHealth(&buf, &cfg, nil)
	if !strings.Contains(buf.String(), "Configuration: OK (hotspot_config.toml, 1 hotspots, browser headless)") {
		t.Errorf("got %q", buf.String())
	}
}
