package login

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/metrics"
	"hotspot-monitor/internal/models"
)

// Options configures the executor
type Options struct {
	Headless      bool
	ExecPath      string
	StepTimeout   time.Duration
	SettleDelay   time.Duration
	Debug         bool
	ScreenshotDir string
}

// Executor drives a browser through a hotspot's login flow
type Executor struct {
	browser Browser
	prober  models.Prober
	opts    Options
	logger  *logrus.Logger
}

var _ models.LoginExecutor = (*Executor)(nil)

// NewExecutor creates an Executor. The prober is used to confirm
// connectivity after the final step.
func NewExecutor(browser Browser, prober models.Prober, opts Options, logger *logrus.Logger) *Executor {
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 10 * time.Second
	}
	return &Executor{browser: browser, prober: prober, opts: opts, logger: logger}
}

// AttemptLogin runs one login attempt bounded by timeout. Failures are
// reported in the result, never returned or panicked.
func (e *Executor) AttemptLogin(ctx context.Context, profile models.HotspotProfile, timeout time.Duration) (result models.LoginResult) {
	start := time.Now()
	result = models.LoginResult{Network: profile.SSID, Strategy: profile.Strategy}

	log := e.logger.WithFields(logrus.Fields{
		"network":  profile.SSID,
		"strategy": profile.Strategy,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Login attempt panicked")
			result.Success = false
			result.Error = fmt.Sprintf("login panic: %v", r)
		}
		result.Elapsed = time.Since(start)
		metrics.RecordLogin(string(profile.Strategy), result.Success, result.Elapsed)
	}()

	if err := e.attempt(ctx, profile, timeout, log); err != nil {
		log.WithError(err).Warn("Login attempt failed")
		result.Error = err.Error()
		return result
	}

	result.Success = true
	log.Info("Login attempt succeeded")
	return result
}

func (e *Executor) attempt(ctx context.Context, profile models.HotspotProfile, timeout time.Duration, log *logrus.Entry) error {
	steps, ok := stepsFor(profile)
	if !ok {
		return fmt.Errorf("unsupported login strategy %q", profile.Strategy)
	}
	if unknown := unknownOverrides(profile); len(unknown) > 0 {
		log.WithField("selectors", strings.Join(unknown, ",")).Warn("Ignoring selector overrides for unknown steps")
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := e.browser.Open(attemptCtx, SessionOptions{Headless: e.opts.Headless, ExecPath: e.opts.ExecPath})
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrBrowserUnavailable, err)
	}
	metrics.BrowserSessions.Inc()
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("Browser session close failed")
		}
		metrics.BrowserSessions.Dec()
	}()

	if err := e.runSteps(attemptCtx, session, profile, steps, log); err != nil {
		e.screenshot(session, profile, log)
		return err
	}

	if e.opts.SettleDelay > 0 {
		select {
		case <-attemptCtx.Done():
			return fmt.Errorf("waiting for portal to settle: %w", attemptCtx.Err())
		case <-time.After(e.opts.SettleDelay):
		}
	}

	verdict := e.prober.Probe(attemptCtx)
	if !verdict.Reachable {
		e.screenshot(session, profile, log)
		return fmt.Errorf("%w: %s", models.ErrNotReachable, verdict.Reason)
	}
	return nil
}

func (e *Executor) runSteps(ctx context.Context, session Session, profile models.HotspotProfile, steps []step, log *logrus.Entry) error {
	if err := session.Navigate(ctx, profile.PortalURL); err != nil {
		return &models.StepError{Step: "navigate", Err: err}
	}
	if url, err := session.CurrentURL(ctx); err == nil {
		log.WithField("url", url).Debug("Portal page loaded")
	}

	var previous *step
	for i := range steps {
		st := steps[i]
		if err := ctx.Err(); err != nil {
			return &models.StepError{Step: st.name, Err: err}
		}

		err := e.waitFor(ctx, session, st.selector)
		switch {
		case err == nil:
			if err := e.perform(ctx, session, st, profile); err != nil {
				return &models.StepError{Step: st.name, Err: err}
			}
			log.WithField("step", st.name).Debug("Login step done")

		case ctx.Err() != nil:
			// cancelled mid-wait; not a missing element
			return &models.StepError{Step: st.name, Err: ctx.Err()}

		case st.optional && errors.Is(err, models.ErrElementNotFound):
			log.WithField("step", st.name).Debug("Optional login step skipped")
			continue

		case st.enterFallback && previous != nil && errors.Is(err, models.ErrElementNotFound):
			log.WithField("step", st.name).Debug("Button not found, pressing Enter in previous field")
			if err := e.bounded(ctx, func(c context.Context) error {
				return session.Type(c, previous.selector, "\r")
			}); err != nil {
				return &models.StepError{Step: st.name, Err: fmt.Errorf("enter fallback: %w", err)}
			}

		default:
			return &models.StepError{Step: st.name, Err: err}
		}

		if st.action != actionClick {
			previous = &steps[i]
		}
	}
	return nil
}

func (e *Executor) waitFor(ctx context.Context, session Session, selector string) error {
	return e.bounded(ctx, func(c context.Context) error {
		return session.WaitReady(c, selector)
	})
}

func (e *Executor) perform(ctx context.Context, session Session, st step, profile models.HotspotProfile) error {
	return e.bounded(ctx, func(c context.Context) error {
		switch st.action {
		case actionTypeUsername:
			return session.Type(c, st.selector, profile.Username.Reveal())
		case actionTypePassword:
			return session.Type(c, st.selector, profile.Password.Reveal())
		default:
			return session.Click(c, st.selector)
		}
	})
}

// bounded runs fn under the per-step timeout
func (e *Executor) bounded(ctx context.Context, fn func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, e.opts.StepTimeout)
	defer cancel()
	return fn(stepCtx)
}

func (e *Executor) screenshot(session Session, profile models.HotspotProfile, log *logrus.Entry) {
	if !e.opts.Debug || e.opts.ScreenshotDir == "" {
		return
	}
	shooter, ok := session.(Screenshotter)
	if !ok {
		return
	}

	// the attempt context may already be spent
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.StepTimeout)
	defer cancel()

	png, err := shooter.Screenshot(ctx)
	if err != nil {
		log.WithError(err).Debug("Screenshot failed")
		return
	}
	if err := os.MkdirAll(e.opts.ScreenshotDir, 0o755); err != nil {
		log.WithError(err).Warn("Cannot create screenshot directory")
		return
	}
	name := fmt.Sprintf("%s_%s.png", sanitize(profile.SSID), time.Now().Format("20060102_150405"))
	path := filepath.Join(e.opts.ScreenshotDir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		log.WithError(err).Warn("Cannot write screenshot")
		return
	}
	log.WithField("file", path).Info("Saved login failure screenshot")
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, s)
}
