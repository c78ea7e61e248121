package models

import "encoding/json"

const redacted = "********"

// Secret holds a credential that must never appear in logs or API output
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string { return s.String() }

// Reveal returns the plaintext value. Only the login executor calls it.
func (s Secret) Reveal() string { return string(s) }

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// HotspotProfile identifies one network the monitor may re-authenticate against
type HotspotProfile struct {
	SSID        string            `json:"ssid"`
	Strategy    Strategy          `json:"strategy"`
	Username    Secret            `json:"username"`
	Password    Secret            `json:"password"`
	PortalURL   string            `json:"portal_url"`
	Description string            `json:"description,omitempty"`
	Selectors   map[string]string `json:"selectors,omitempty"` // step name -> selector override
}
