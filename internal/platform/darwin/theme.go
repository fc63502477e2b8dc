package darwin

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/darkawower/reagentry/internal/platform"
	"github.com/darkawower/reagentry/internal/theme"
)

// ThemeService implements platform.ThemeService for macOS.
type ThemeService struct {
	run platform.Runner
}

// NewThemeService creates a new macOS theme service.
func NewThemeService(run platform.Runner) *ThemeService {
	if run == nil {
		run = platform.ExecRunner
	}
	return &ThemeService{run: run}
}

// Detect returns the current system theme by reading AppleInterfaceStyle.
func (s *ThemeService) Detect() (theme.Theme, bool) {
	output, err := s.run("defaults", "read", "-g", "AppleInterfaceStyle")
	if err != nil {
		// defaults exits non-zero when the key is absent, which is light mode
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return theme.Light, true
		}
		return "", false
	}

	style := strings.TrimSpace(string(output))
	if strings.EqualFold(style, "dark") {
		return theme.Dark, true
	}

	return theme.Light, true
}
