package models

import (
	"fmt"
	"strings"
	"time"
)

// Strategy tags the interaction sequence a portal requires
type Strategy string

const (
	StrategyClickThrough      Strategy = "click-through"
	StrategyFormBased         Strategy = "form-based"
	StrategyMultiStepBusiness Strategy = "multi-step-business"
)

// ParseStrategy accepts the canonical tags plus the underscore spellings
// used by older configuration files.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "click-through", "click_through":
		return StrategyClickThrough, nil
	case "form-based", "form_based":
		return StrategyFormBased, nil
	case "multi-step-business", "multi_step_business", "bt_business":
		return StrategyMultiStepBusiness, nil
	}
	return "", fmt.Errorf("unknown login strategy %q", s)
}

// NeedsCredentials reports whether the strategy types a username and password
func (s Strategy) NeedsCredentials() bool {
	return s == StrategyFormBased || s == StrategyMultiStepBusiness
}

// LoginResult is the outcome of one login attempt
type LoginResult struct {
	Network  string        `json:"network"`
	Strategy Strategy      `json:"strategy"`
	Success  bool          `json:"success"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Error    string        `json:"error,omitempty"`
}
