package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hotspot-monitor/internal/logger"
)

func TestProbeVerdicts(t *testing.T) {
	tests := []struct {
		name      string
		results   map[string]error
		reachable bool
		reason    []string
	}{
		{
			name:      "all targets answer",
			results:   map[string]error{"a": nil, "b": nil},
			reachable: true,
		},
		{
			name:      "one of two answers",
			results:   map[string]error{"a": errors.New("refused"), "b": nil},
			reachable: true,
		},
		{
			name:      "none answer",
			results:   map[string]error{"a": errors.New("refused"), "b": errors.New("no route")},
			reachable: false,
			reason:    []string{"a: refused", "b: no route"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := CheckerFunc(func(ctx context.Context, target string) error {
				return tt.results[target]
			})
			p := NewWithChecker([]string{"a", "b"}, time.Second, checker, logger.Discard())

			result := p.Probe(context.Background())
			if result.Reachable != tt.reachable {
				t.Fatalf("Reachable = %v, want %v (reason %q)", result.Reachable, tt.reachable, result.Reason)
			}
			for _, want := range tt.reason {
				if !strings.Contains(result.Reason, want) {
					t.Errorf("Reason %q does not mention %q", result.Reason, want)
				}
			}
			if tt.reachable && result.Reason != "" {
				t.Errorf("Reason = %q, want empty for reachable verdict", result.Reason)
			}
			if result.Timestamp.IsZero() {
				t.Error("Timestamp not set")
			}
		})
	}
}

func TestProbeSurvivesPanickingChecker(t *testing.T) {
	checker := CheckerFunc(func(ctx context.Context, target string) error {
		panic("boom")
	})
	p := NewWithChecker([]string{"a", "b"}, time.Second, checker, logger.Discard())

	result := p.Probe(context.Background())
	if result.Reachable {
		t.Fatal("expected unreachable verdict")
	}
	if !strings.Contains(result.Reason, "checker panic") {
		t.Errorf("Reason = %q, want checker panic", result.Reason)
	}
}

func TestProbeFirstSuccessCancelsSlowTargets(t *testing.T) {
	var cancelled atomic.Int32
	checker := CheckerFunc(func(ctx context.Context, target string) error {
		if target == "fast" {
			return nil
		}
		<-ctx.Done()
		cancelled.Add(1)
		return ctx.Err()
	})
	p := NewWithChecker([]string{"slow", "fast"}, 10*time.Second, checker, logger.Discard())

	start := time.Now()
	result := p.Probe(context.Background())
	if !result.Reachable {
		t.Fatalf("expected reachable, got reason %q", result.Reason)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("probe took %v, slow target was not cancelled", elapsed)
	}
	if cancelled.Load() != 1 {
		t.Errorf("cancelled = %d, want 1", cancelled.Load())
	}
}

func TestProbeTimeout(t *testing.T) {
	checker := CheckerFunc(func(ctx context.Context, target string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	p := NewWithChecker([]string{"a", "b"}, 50*time.Millisecond, checker, logger.Discard())

	result := p.Probe(context.Background())
	if result.Reachable {
		t.Fatal("expected unreachable")
	}
	if !strings.Contains(result.Reason, "timed out") {
		t.Errorf("Reason = %q, want timeout", result.Reason)
	}
}

func TestProbeNoTargets(t *testing.T) {
	p := NewWithChecker(nil, time.Second, CheckerFunc(func(context.Context, string) error { return nil }), logger.Discard())
	if result := p.Probe(context.Background()); result.Reachable {
		t.Fatal("probe without targets must not report reachable")
	}
}

func TestHTTPChecker(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ok.Close()

	portal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://portal.example/login", http.StatusFound)
	}))
	defer portal.Close()

	loginPage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>please log in</html>"))
	}))
	defer loginPage.Close()

	c := NewHTTPChecker()
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"204 is reachable", ok.URL, ""},
		{"redirect is captive", portal.URL, "captive portal"},
		{"200 page is captive", loginPage.URL, "unexpected status 200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Check(context.Background(), tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Check() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Check() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCheckerTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	addr := ln.Addr().String()
	c := DefaultChecker()
	if err := c.Check(context.Background(), "tcp://"+addr); err != nil {
		t.Fatalf("tcp check against listener: %v", err)
	}

	ln.Close()
	if err := c.Check(context.Background(), "tcp://"+addr); err == nil {
		t.Error("expected error after listener closed")
	}
	if err := c.Check(context.Background(), "ftp://example.com"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}
