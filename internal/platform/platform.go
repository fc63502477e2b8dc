// Package platform provides OS-specific ambient theme detection.
package platform

import (
	"os/exec"

	"github.com/darkawower/reagentry/internal/theme"
)

// Platform provides access to OS-specific services.
type Platform interface {
	// Name returns the platform identifier (e.g., "darwin", "linux", "windows").
	Name() string

	// IsSupported returns true if ambient detection is implemented natively.
	IsSupported() bool

	// Theme returns the theme detection service.
	Theme() ThemeService

	// Browser returns the service that opens URLs in the default browser.
	Browser() BrowserService
}

// ThemeService detects the system color theme.
type ThemeService interface {
	// Detect returns the current system theme. ok is false when the
	// platform does not expose a preference.
	Detect() (t theme.Theme, ok bool)
}

// BrowserService opens URLs.
type BrowserService interface {
	// Open opens url with the default application.
	Open(url string) error
}

// Runner executes a command and returns its standard output.
type Runner func(name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}
