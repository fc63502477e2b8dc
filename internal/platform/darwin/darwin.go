// Package darwin provides macOS-specific platform implementations.
package darwin

import "github.com/darkawower/reagentry/internal/platform"

func init() {
	platform.Register("darwin", func() platform.Platform {
		return New(platform.ExecRunner)
	})
}

// Platform implements platform.Platform for macOS.
type Platform struct {
	theme   *ThemeService
	browser *BrowserService
}

// New creates a new macOS platform instance.
func New(run platform.Runner) *Platform {
	return &Platform{
		theme:   NewThemeService(run),
		browser: NewBrowserService(run),
	}
}

// Name returns the platform identifier.
func (p *Platform) Name() string {
	return "darwin"
}

// IsSupported returns true as macOS is fully supported.
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

// Compile-time check that Platform implements platform.Platform.
var _ platform.Platform = (*Platform)(nil)
