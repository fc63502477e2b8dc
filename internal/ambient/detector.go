// Package ambient tracks the system (ambient) light/dark preference.
package ambient

import (
	"fmt"
	"sync"

	"github.com/darkawower/reagentry/internal/theme"
)

// Detector reads the ambient theme once. ok is false when the value
// cannot be determined.
type Detector interface {
	Detect() (t theme.Theme, ok bool)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func() (theme.Theme, bool)

// Detect calls f.
func (f DetectorFunc) Detect() (theme.Theme, bool) {
	return f()
}

// Reported holds the ambient value pushed by a client, typically a
// browser reporting its prefers-color-scheme media query.
type Reported struct {
	mu sync.RWMutex
	t  theme.Theme
}

// NewReported creates an empty Reported detector.
func NewReported() *Reported {
	return &Reported{}
}

// Set records t as the latest reported value.
func (r *Reported) Set(t theme.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", theme.ErrInvalidTheme, string(t))
	}
	r.mu.Lock()
	r.t = t
	r.mu.Unlock()
	return nil
}

// Clear forgets the reported value.
func (r *Reported) Clear() {
	r.mu.Lock()
	r.t = ""
	r.mu.Unlock()
}

// Detect returns the latest reported value.
func (r *Reported) Detect() (theme.Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.t, r.t.Valid()
}

type chain []Detector

// Chain returns a detector that asks each detector in order and returns
// the first available value. Nil detectors are skipped.
func Chain(detectors ...Detector) Detector {
	c := make(chain, 0, len(detectors))
	for _, d := range detectors {
		if d != nil {
			c = append(c, d)
		}
	}
	return c
}

func (c chain) Detect() (theme.Theme, bool) {
	for _, d := range c {
		if t, ok := d.Detect(); ok && t.Valid() {
			return t, true
		}
	}
	return "", false
}
