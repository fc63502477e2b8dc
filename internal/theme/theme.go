// Package theme resolves and propagates the light/dark theme of the registry shell.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTheme is returned when a string is not a known theme.
var ErrInvalidTheme = errors.New("invalid theme")

// ErrInvalidPreference is returned by ParseChoice for unknown values.
var ErrInvalidPreference = errors.New("invalid theme preference")

// Theme is the resolved visual mode.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Valid reports whether t is Light or Dark.
func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// String returns the string representation of the theme.
func (t Theme) String() string {
	return string(t)
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	return Select(t, Dark, Light)
}

// Parse converts a string into a Theme.
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	default:
		return "", fmt.Errorf("%w: %q (must be light or dark)", ErrInvalidTheme, s)
	}
}

// Select returns light or dark depending on t. Invalid themes select the
// light variant, matching the Light fallback of Resolve.
func Select[T any](t Theme, light, dark T) T {
	switch t {
	case Light:
		return light
	case Dark:
		return dark
	default:
		return light
	}
}

// Preference is the user's explicit choice. The zero value means no
// choice has been stored.
type Preference string

const (
	PreferenceUnset  Preference = ""
	PreferenceLight  Preference = "light"
	PreferenceDark   Preference = "dark"
	PreferenceSystem Preference = "system"
)

// ParsePreference converts a stored or user supplied value into a
// Preference. Unrecognized values map to PreferenceUnset.
func ParsePreference(s string) Preference {
	switch Preference(strings.ToLower(strings.TrimSpace(s))) {
	case PreferenceLight:
		return PreferenceLight
	case PreferenceDark:
		return PreferenceDark
	case PreferenceSystem:
		return PreferenceSystem
	default:
		return PreferenceUnset
	}
}

// ParseChoice parses a preference typed by a user: light, dark, system or
// unset. Unlike ParsePreference it rejects unknown values.
func ParseChoice(s string) (Preference, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "unset" {
		return PreferenceUnset, nil
	}
	p := ParsePreference(v)
	if p == PreferenceUnset {
		return PreferenceUnset, fmt.Errorf("%w: %q (must be light, dark, system or unset)", ErrInvalidPreference, s)
	}
	return p, nil
}

// Explicit returns the theme pinned by the preference, if any.
func (p Preference) Explicit() (Theme, bool) {
	switch p {
	case PreferenceLight:
		return Light, true
	case PreferenceDark:
		return Dark, true
	default:
		return "", false
	}
}

// FollowsSystem reports whether the preference tracks the ambient value.
func (p Preference) FollowsSystem() bool {
	_, explicit := p.Explicit()
	return !explicit
}

// String returns the preference, or "unset" for the zero value.
func (p Preference) String() string {
	if p == PreferenceUnset {
		return "unset"
	}
	return string(p)
}
