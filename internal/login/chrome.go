package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/models"
)

// Chrome opens sessions on a local Chrome/Chromium through the DevTools
// protocol
type Chrome struct {
	logger *logrus.Logger
}

// NewChrome creates a chromedp-backed Browser
func NewChrome(logger *logrus.Logger) *Chrome {
	return &Chrome{logger: logger}
}

func (c *Chrome) Open(ctx context.Context, opts SessionOptions) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("mute-audio", true),
	)
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.DisableGPU, chromedp.WindowSize(1920, 1080))
	} else {
		allocOpts = append(allocOpts, chromedp.WindowSize(1200, 800))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	// The browser's lifetime is owned by Close, not by the caller's ctx
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(c.logger.WithField("component", "chromedp").Debugf),
		chromedp.WithErrorf(c.logger.WithField("component", "chromedp").Debugf),
	)

	s := &chromeSession{browserCtx: browserCtx, browserCancel: browserCancel, allocCancel: allocCancel}

	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()

	select {
	case err := <-started:
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("start browser: %w", err)
		}
	case <-ctx.Done():
		s.Close()
		return nil, fmt.Errorf("start browser: %w", ctx.Err())
	}
	return s, nil
}

type chromeSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// run executes actions in the browser, bounded by the caller's ctx
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitReady(ctx context.Context, selector string) error {
	err := s.run(ctx, chromedp.WaitVisible(selector, chromedp.BySearch))
	return waitError(err, selector, s.browserCtx.Err() == nil)
}

// waitError reports a wait that ran out of time on a live browser as a
// missing element. Cancellation passes through unchanged.
func waitError(err error, selector string, browserAlive bool) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) && browserAlive {
		return fmt.Errorf("%w: %s", models.ErrElementNotFound, selector)
	}
	return err
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.BySearch, chromedp.NodeVisible))
}

func (s *chromeSession) Type(ctx context.Context, selector, text string) error {
	if text == kb.Enter {
		return s.run(ctx, chromedp.SendKeys(selector, kb.Enter, chromedp.BySearch))
	}
	return s.run(ctx,
		chromedp.Clear(selector, chromedp.BySearch),
		chromedp.SendKeys(selector, text, chromedp.BySearch),
	)
}

func (s *chromeSession) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *chromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// Close shuts the browser down and waits for the process to exit
func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
