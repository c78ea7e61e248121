package login

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hotspot-monitor/internal/models"
)

func TestWaitError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		browserAlive bool
		wantNotFound bool
		wantErr      error
	}{
		{"found", nil, true, false, nil},
		{"step timed out", context.DeadlineExceeded, true, true, nil},
		{"wrapped timeout", fmt.Errorf("wait: %w", context.DeadlineExceeded), true, true, nil},
		{"shutdown cancels the wait", context.Canceled, true, false, context.Canceled},
		{"browser gone", context.DeadlineExceeded, false, false, context.DeadlineExceeded},
		{"other failure", errors.New("websocket closed"), true, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := waitError(tt.err, "#accept", tt.browserAlive)
			if got := errors.Is(err, models.ErrElementNotFound); got != tt.wantNotFound {
				t.Errorf("waitError(%v) = %v, ErrElementNotFound = %v, want %v", tt.err, err, got, tt.wantNotFound)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("waitError(%v) = %v, want %v", tt.err, err, tt.wantErr)
			}
			if tt.err == nil && err != nil {
				t.Errorf("waitError(nil) = %v", err)
			}
		})
	}
}
