package login

import "context"

// SessionOptions configures one browser session
type SessionOptions struct {
	Headless bool
	ExecPath string
}

// Browser starts browser sessions
type Browser interface {
	Open(ctx context.Context, opts SessionOptions) (Session, error)
}

// Session is one scoped browser instance. Selectors are XPath expressions.
// Close must release every process and handle the session owns.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until selector matches a visible element. It returns
	// an error wrapping models.ErrElementNotFound when ctx expires first.
	WaitReady(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Screenshotter is implemented by sessions that can capture the page
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}
