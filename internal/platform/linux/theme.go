package linux

import (
	"strings"

	"github.com/darkawower/reagentry/internal/platform"
	"github.com/darkawower/reagentry/internal/theme"
)

const interfaceSchema = "org.gnome.desktop.interface"

// ThemeService implements platform.ThemeService using gsettings.
type ThemeService struct {
	run platform.Runner
}

// NewThemeService creates a new Linux theme service.
func NewThemeService(run platform.Runner) *ThemeService {
	if run == nil {
		run = platform.ExecRunner
	}
	return &ThemeService{run: run}
}

// Detect reads the freedesktop color-scheme key and falls back to the GTK
// theme name. Without gsettings the preference is unavailable.
func (s *ThemeService) Detect() (theme.Theme, bool) {
	scheme, err := s.get("color-scheme")
	if err == nil {
		switch scheme {
		case "prefer-dark":
			return theme.Dark, true
		case "prefer-light":
			return theme.Light, true
		}
	}

	gtkTheme, gtkErr := s.get("gtk-theme")
	if gtkErr == nil {
		if strings.HasSuffix(strings.ToLower(gtkTheme), "-dark") || strings.Contains(strings.ToLower(gtkTheme), "-dark-") {
			return theme.Dark, true
		}
		return theme.Light, true
	}

	if err == nil {
		return theme.Light, true
	}
	return "", false
}

func (s *ThemeService) get(key string) (string, error) {
	out, err := s.run("gsettings", "get", interfaceSchema, key)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(out)), "'\""), nil
}
