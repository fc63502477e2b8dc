//go:build windows

package windows

import (
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/darkawower/reagentry/internal/platform"
	"github.com/darkawower/reagentry/internal/theme"
)

func init() {
	platform.Register("windows", func() platform.Platform {
		return New(platform.ExecRunner)
	})
}

// Platform implements platform.Platform for Windows.
type Platform struct {
	theme   *ThemeService
	browser *BrowserService
}

// New creates a new Windows platform instance.
func New(run platform.Runner) *Platform {
	return &Platform{
		theme:   &ThemeService{},
		browser: &BrowserService{run: run},
	}
}

// Name returns the platform identifier.
func (p *Platform) Name() string {
	return "windows"
}

// IsSupported returns true as Windows 10+ exposes the app theme.
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

// ThemeService reads the per-user app theme from the registry.
type ThemeService struct{}

// Detect returns the app theme. Builds older than Windows 10 1809 lack
// the value and report unavailable.
func (s *ThemeService) Detect() (theme.Theme, bool) {
	k, err := registry.OpenKey(registry.CURRENT_USER, personalizeKey, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue(appsUseLightName)
	if err != nil {
		return "", false
	}
	return themeFromAppsUseLight(v), true
}

// BrowserService opens URLs through the URL protocol handler.
type BrowserService struct {
	run platform.Runner
}

// Open opens url with the default browser.
func (s *BrowserService) Open(url string) error {
	if output, err := s.run("rundll32", "url.dll,FileProtocolHandler", url); err != nil {
		return fmt.Errorf("failed to open %s: %w (output: %s)", url, err, string(output))
	}
	return nil
}
