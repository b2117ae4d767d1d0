// Package theme keeps the light/dark theme of a page in sync with the user's
// choice, the persisted preference and the system preference.
package theme

import (
	"fmt"
	"strings"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.Trim(strings.TrimSpace(s), `"`))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) IsDark() bool {
	return t == Dark
}

// Provenance is the signal that last determined the active theme.
type Provenance string

const (
	ProvenanceSystem    Provenance = "system"
	ProvenancePersisted Provenance = "persisted"
	ProvenanceUser      Provenance = "user"
)

// Change is sent to subscribers whenever the applied theme changes.
type Change struct {
	Theme      Theme      `json:"theme"`
	Provenance Provenance `json:"provenance"`
	IsDark     bool       `json:"isDark"`
}
