package login

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"hotspot-monitor/internal/logger"
	"hotspot-monitor/internal/models"
)

// fakeBrowser counts opened and closed sessions
type fakeBrowser struct {
	mu      sync.Mutex
	opened  int
	closed  int
	openErr error
	page    func() *fakePage
	last    *fakePage
}

func (b *fakeBrowser) Open(ctx context.Context, opts SessionOptions) (Session, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened++
	p := b.page()
	p.browser = b
	b.last = p
	return p, nil
}

func (b *fakeBrowser) balanced() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened == b.closed
}

// fakePage treats selectors as present unless listed in missing. Missing
// selectors, or every selector when hang is set, wait until ctx expires.
type fakePage struct {
	browser   *fakeBrowser
	missing   map[string]bool
	hang      bool
	panicOn   string
	actions   []string
	typed     map[string]string
	shotTaken bool
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.actions = append(p.actions, "navigate "+url)
	return nil
}

func (p *fakePage) WaitReady(ctx context.Context, selector string) error {
	if p.panicOn != "" && selector == p.panicOn {
		panic("renderer crashed")
	}
	if p.hang || p.missing[selector] {
		<-ctx.Done()
		return models.ErrElementNotFound
	}
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.actions = append(p.actions, "click "+selector)
	return nil
}

func (p *fakePage) Type(ctx context.Context, selector, text string) error {
	if p.typed == nil {
		p.typed = make(map[string]string)
	}
	p.typed[selector] += text
	p.actions = append(p.actions, "type "+selector)
	return nil
}

func (p *fakePage) CurrentURL(ctx context.Context) (string, error) {
	return "http://portal.example/login", nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	p.shotTaken = true
	return []byte("png"), nil
}

func (p *fakePage) Close() error {
	p.browser.mu.Lock()
	defer p.browser.mu.Unlock()
	p.browser.closed++
	return nil
}

type staticProber struct{ reachable bool }

func (s staticProber) Probe(ctx context.Context) models.ProbeResult {
	r := models.ProbeResult{Timestamp: time.Now(), Reachable: s.reachable}
	if !s.reachable {
		r.Reason = "still behind portal"
	}
	return r
}

func profile(strategy models.Strategy) models.HotspotProfile {
	return models.HotspotProfile{
		SSID:      "EE WiFi",
		Strategy:  strategy,
		Username:  "user@example.com",
		Password:  "hunter2",
		PortalURL: "http://portal.example/",
	}
}

func selectorOf(strategy models.Strategy, name string) string {
	for _, st := range flows[strategy] {
		if st.name == name {
			return st.selector
		}
	}
	return ""
}

func newExecutor(b Browser, reachable bool, opts Options) *Executor {
	if opts.StepTimeout == 0 {
		opts.StepTimeout = 50 * time.Millisecond
	}
	return NewExecutor(b, staticProber{reachable: reachable}, opts, logger.Discard())
}

func TestAttemptLoginStrategies(t *testing.T) {
	multi := models.StrategyMultiStepBusiness
	tests := []struct {
		name      string
		strategy  models.Strategy
		missing   []string
		reachable bool
		wantOK    bool
		wantErr   string
	}{
		{name: "click-through", strategy: models.StrategyClickThrough, reachable: true, wantOK: true},
		{name: "form-based", strategy: models.StrategyFormBased, reachable: true, wantOK: true},
		{name: "multi-step full flow", strategy: multi, reachable: true, wantOK: true},
		{
			name:      "multi-step without cookie banner",
			strategy:  multi,
			missing:   []string{selectorOf(multi, "cookie_consent")},
			reachable: true,
			wantOK:    true,
		},
		{
			name:      "multi-step falls back to Enter",
			strategy:  multi,
			missing:   []string{selectorOf(multi, "next"), selectorOf(multi, "final_submit")},
			reachable: true,
			wantOK:    true,
		},
		{
			name:     "mandatory step missing",
			strategy: multi,
			missing:  []string{selectorOf(multi, "account_tab")},
			wantErr:  `step "account_tab"`,
		},
		{
			name:     "portal accepted but still offline",
			strategy: models.StrategyFormBased,
			wantErr:  "internet not reachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := make(map[string]bool)
			for _, m := range tt.missing {
				missing[m] = true
			}
			b := &fakeBrowser{page: func() *fakePage { return &fakePage{missing: missing} }}
			e := newExecutor(b, tt.reachable, Options{})

			res := e.AttemptLogin(context.Background(), profile(tt.strategy), 5*time.Second)
			if res.Success != tt.wantOK {
				t.Fatalf("Success = %v, want %v (error %q)", res.Success, tt.wantOK, res.Error)
			}
			if tt.wantErr != "" && !strings.Contains(res.Error, tt.wantErr) {
				t.Errorf("Error = %q, want it to contain %q", res.Error, tt.wantErr)
			}
			if res.Network != "EE WiFi" || res.Strategy != tt.strategy {
				t.Errorf("result identity = %q/%q", res.Network, res.Strategy)
			}
			if res.Elapsed <= 0 {
				t.Error("Elapsed not measured")
			}
			if !b.balanced() {
				t.Errorf("opened %d sessions, closed %d", b.opened, b.closed)
			}
		})
	}
}

func TestAttemptLoginTypesCredentials(t *testing.T) {
	b := &fakeBrowser{page: func() *fakePage { return &fakePage{} }}
	e := newExecutor(b, true, Options{})

	res := e.AttemptLogin(context.Background(), profile(models.StrategyFormBased), time.Second)
	if !res.Success {
		t.Fatalf("login failed: %s", res.Error)
	}
	typed := b.last.typed
	if typed[selectorOf(models.StrategyFormBased, "username")] != "user@example.com" {
		t.Errorf("username not typed: %v", typed)
	}
	if typed[passwordField] != "hunter2" {
		t.Errorf("password not typed: %v", typed)
	}
	if strings.Contains(res.Error, "hunter2") {
		t.Error("password leaked into result")
	}
}

func TestAttemptLoginEnterFallbackUsesPreviousField(t *testing.T) {
	multi := models.StrategyMultiStepBusiness
	b := &fakeBrowser{page: func() *fakePage {
		return &fakePage{missing: map[string]bool{selectorOf(multi, "final_submit"): true}}
	}}
	e := newExecutor(b, true, Options{})

	res := e.AttemptLogin(context.Background(), profile(multi), time.Second)
	if !res.Success {
		t.Fatalf("login failed: %s", res.Error)
	}
	if got := b.last.typed[passwordField]; got != "hunter2\r" {
		t.Errorf("password field received %q, want password then Enter", got)
	}
}

func TestAttemptLoginSelectorOverride(t *testing.T) {
	custom := "//button[@id='go']"
	p := profile(models.StrategyClickThrough)
	p.Selectors = map[string]string{"accept_terms": custom}

	b := &fakeBrowser{page: func() *fakePage { return &fakePage{} }}
	e := newExecutor(b, true, Options{})

	if res := e.AttemptLogin(context.Background(), p, time.Second); !res.Success {
		t.Fatalf("login failed: %s", res.Error)
	}
	found := false
	for _, a := range b.last.actions {
		if a == "click "+custom {
			found = true
		}
	}
	if !found {
		t.Errorf("override selector not clicked, actions: %v", b.last.actions)
	}
}

func TestAttemptLoginReleasesSessionOnEveryPath(t *testing.T) {
	tests := []struct {
		name    string
		page    func() *fakePage
		timeout time.Duration
		wantErr string
	}{
		{
			name:    "overall timeout",
			page:    func() *fakePage { return &fakePage{hang: true} },
			timeout: 20 * time.Millisecond,
		},
		{
			name: "panic inside a step",
			page: func() *fakePage {
				return &fakePage{panicOn: selectorOf(models.StrategyFormBased, "username")}
			},
			timeout: time.Second,
			wantErr: "login panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBrowser{page: tt.page}
			e := newExecutor(b, true, Options{StepTimeout: time.Second})

			start := time.Now()
			res := e.AttemptLogin(context.Background(), profile(models.StrategyFormBased), tt.timeout)
			if res.Success {
				t.Fatal("expected failure")
			}
			if time.Since(start) > 2*time.Second {
				t.Errorf("attempt overran its timeout")
			}
			if tt.wantErr != "" && !strings.Contains(res.Error, tt.wantErr) {
				t.Errorf("Error = %q, want %q", res.Error, tt.wantErr)
			}
			if !b.balanced() || b.opened != 1 {
				t.Errorf("opened %d sessions, closed %d", b.opened, b.closed)
			}
		})
	}
}

func TestAttemptLoginCancelledOptionalStepIsNotSkipped(t *testing.T) {
	multi := models.StrategyMultiStepBusiness
	page := &fakePage{missing: map[string]bool{selectorOf(multi, "cookie_consent"): true}}
	b := &fakeBrowser{page: func() *fakePage { return page }}
	e := newExecutor(b, true, Options{StepTimeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := e.AttemptLogin(ctx, profile(multi), 5*time.Second)
	if res.Success {
		t.Fatal("expected failure after cancellation")
	}
	if !strings.Contains(res.Error, `"cookie_consent"`) {
		t.Errorf("Error = %q, want the interrupted cookie_consent step", res.Error)
	}
	for _, a := range page.actions {
		if strings.HasPrefix(a, "click ") || strings.HasPrefix(a, "type ") {
			t.Errorf("step ran after cancellation: %s", a)
		}
	}
	if !b.balanced() {
		t.Errorf("opened %d sessions, closed %d", b.opened, b.closed)
	}
}

func TestAttemptLoginBrowserUnavailable(t *testing.T) {
	b := &fakeBrowser{openErr: errors.New("chrome not found")}
	e := newExecutor(b, true, Options{})

	res := e.AttemptLogin(context.Background(), profile(models.StrategyClickThrough), time.Second)
	if res.Success || !strings.Contains(res.Error, "browser unavailable") {
		t.Fatalf("result = %+v, want browser unavailable", res)
	}
}

func TestAttemptLoginDebugScreenshot(t *testing.T) {
	dir := t.TempDir()
	b := &fakeBrowser{page: func() *fakePage { return &fakePage{} }}
	e := newExecutor(b, false, Options{Debug: true, ScreenshotDir: dir})

	res := e.AttemptLogin(context.Background(), profile(models.StrategyClickThrough), time.Second)
	if res.Success {
		t.Fatal("expected failure while offline")
	}
	if !b.last.shotTaken {
		t.Fatal("no screenshot taken in debug mode")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "EE_WiFi_") {
		t.Errorf("screenshot files = %v", entries)
	}
}
