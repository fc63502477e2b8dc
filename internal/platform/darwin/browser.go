package darwin

import (
	"fmt"

	"github.com/darkawower/reagentry/internal/platform"
)

// BrowserService implements platform.BrowserService for macOS.
type BrowserService struct {
	run platform.Runner
}

// NewBrowserService creates a new macOS browser service.
func NewBrowserService(run platform.Runner) *BrowserService {
	if run == nil {
		run = platform.ExecRunner
	}
	return &BrowserService{run: run}
}

// Open opens url with the default application.
func (s *BrowserService) Open(url string) error {
	if output, err := s.run("open", url); err != nil {
		return fmt.Errorf("failed to open %s: %w (output: %s)", url, err, string(output))
	}
	return nil
}
