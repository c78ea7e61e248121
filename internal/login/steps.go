package login

import (
	"sort"
	"strings"

	"hotspot-monitor/internal/models"
)

type action int

const (
	actionClick action = iota
	actionTypeUsername
	actionTypePassword
)

func (a action) String() string {
	switch a {
	case actionTypeUsername:
		return "type-username"
	case actionTypePassword:
		return "type-password"
	}
	return "click"
}

// step is one wait-then-interact unit of a login flow
type step struct {
	name     string
	selector string
	action   action
	optional bool
	// enterFallback presses Enter in the previous field when this step's
	// button never appears
	enterFallback bool
}

// anyOf joins XPath alternatives into one union expression
func anyOf(paths ...string) string {
	return strings.Join(paths, " | ")
}

func buttonText(texts ...string) string {
	paths := make([]string, 0, len(texts)*2)
	for _, t := range texts {
		paths = append(paths,
			"//button[contains(normalize-space(.), '"+t+"')]",
			"//a[contains(normalize-space(.), '"+t+"')]",
		)
	}
	return anyOf(paths...)
}

var (
	usernameField = anyOf(
		"//input[@name='loginfmt']",
		"//input[@id='loginfmt']",
		"//input[@type='email']",
		"//input[@name='username' or @id='username']",
		"//input[@name='email' or @id='email']",
		"//input[contains(@class, 'username') or contains(@class, 'email')]",
		"//input[contains(@placeholder, 'mail') or contains(@placeholder, 'sername')]",
		"//input[contains(@aria-label, 'mail') or contains(@aria-label, 'sername')]",
		"//input[@type='text']",
	)

	passwordField = anyOf(
		"//input[@type='password']",
		"//input[@name='password' or @id='password']",
		"//input[@name='passwd' or @id='passwd']",
		"//input[@name='pwd' or @id='pwd']",
	)

	submitButton = anyOf(
		"//button[@type='submit']",
		"//input[@type='submit']",
	)

	nextButton = anyOf(
		"//button[@id='idSIButton9']",
		"//input[@id='idSIButton9']",
		"//input[@value='Next' or @value='Continue']",
		"//button[contains(normalize-space(.), 'Next')]",
		"//button[contains(normalize-space(.), 'Continue')]",
		"//form//button[@type='submit']",
		"//form//input[@type='submit']",
	)

	finalSubmitButton = anyOf(
		"//button[@id='idSIButton9']",
		"//input[@id='idSIButton9']",
		"//input[@value='Sign in' or @value='Login' or @value='Submit']",
		"//button[contains(normalize-space(.), 'Sign in')]",
		"//button[contains(normalize-space(.), 'Log in')]",
		"//form//button[@type='submit']",
		"//form//input[@type='submit']",
	)
)

// flows maps each strategy to its ordered steps
var flows = map[models.Strategy][]step{
	models.StrategyClickThrough: {
		{name: "accept_terms", action: actionClick, selector: buttonText(
			"Accept", "Agree", "Continue", "Get Started", "Connect")},
	},
	models.StrategyFormBased: {
		{name: "username", action: actionTypeUsername, selector: anyOf(
			"//input[@type='text' or @type='email' or @name='username' or @name='email']")},
		{name: "password", action: actionTypePassword, selector: passwordField},
		{name: "submit", action: actionClick, selector: submitButton},
	},
	models.StrategyMultiStepBusiness: {
		{name: "cookie_consent", action: actionClick, optional: true, selector: anyOf(
			"//button[contains(@class, 'btn--acceptAll')]",
			"//button[contains(normalize-space(.), 'Accept all cookies')]",
			"//button[contains(normalize-space(.), 'Accept')]",
		)},
		{name: "login_entry", action: actionClick, selector: anyOf(
			"//a[@id='customer-login']",
			"//button[contains(normalize-space(.), 'Log in now')]",
			"//a[contains(normalize-space(.), 'Log in')]",
			"//button[contains(normalize-space(.), 'Login')]",
		)},
		{name: "account_tab", action: actionClick, selector: anyOf(
			"//button[@id='customer-login-btbb']",
			"//button[contains(normalize-space(.), 'BT Business')]",
			"//a[contains(normalize-space(.), 'BT Business')]",
		)},
		{name: "submit", action: actionClick, selector: anyOf(
			"//input[@id='submit-btb']",
			"//button[contains(normalize-space(.), 'Click here to log in')]",
			submitButton,
		)},
		{name: "username", action: actionTypeUsername, selector: usernameField},
		{name: "next", action: actionClick, enterFallback: true, selector: nextButton},
		{name: "password", action: actionTypePassword, selector: passwordField},
		{name: "final_submit", action: actionClick, enterFallback: true, selector: finalSubmitButton},
	},
}

// stepsFor returns the strategy's steps with any per-profile selector
// overrides applied
func stepsFor(profile models.HotspotProfile) ([]step, bool) {
	base, ok := flows[profile.Strategy]
	if !ok {
		return nil, false
	}
	steps := make([]step, len(base))
	copy(steps, base)
	for i := range steps {
		if sel, ok := profile.Selectors[steps[i].name]; ok && sel != "" {
			steps[i].selector = sel
		}
	}
	return steps, true
}

// unknownOverrides returns selector override keys that name no step of
// the profile's strategy
func unknownOverrides(profile models.HotspotProfile) []string {
	known := make(map[string]bool)
	for _, st := range flows[profile.Strategy] {
		known[st.name] = true
	}
	var unknown []string
	for name := range profile.Selectors {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
