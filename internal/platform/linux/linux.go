// Package linux provides Linux desktop platform implementations.
package linux

import "github.com/darkawower/reagentry/internal/platform"

func init() {
	platform.Register("linux", func() platform.Platform {
		return New(platform.ExecRunner)
	})
}

// Platform implements platform.Platform for Linux desktops.
type Platform struct {
	theme   *ThemeService
	browser *BrowserService
}

// New creates a new Linux platform instance.
func New(run platform.Runner) *Platform {
	return &Platform{
		theme:   NewThemeService(run),
		browser: NewBrowserService(run),
	}
}

// Name returns the platform identifier.
func (p *Platform) Name() string {
	return "linux"
}

// IsSupported returns true; detection needs a GNOME-compatible settings daemon.
func (p *Platform) IsSupported() bool {
	return true
}

// Theme returns the theme detection service.
func (p *Platform) Theme() platform.ThemeService {
	return p.theme
}

// Browser returns the URL opener.
func (p *Platform) Browser() platform.BrowserService {
	return p.browser
}

var _ platform.Platform = (*Platform)(nil)
