// Package stub provides a fallback platform implementation for systems
// without a native theme setting.
package stub

import (
	"fmt"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/darkawower/reagentry/internal/platform"
	"github.com/darkawower/reagentry/internal/theme"
)

func init() {
	// Register stub as fallback for unsupported platforms
	// This will be overridden if a specific platform registers itself
	for _, name := range []string{"freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "aix"} {
		platform.Register(name, func() platform.Platform {
			return New()
		})
	}
}

// Platform implements platform.Platform as a fallback for unsupported systems.
type Platform struct {
	name  string
	theme *ThemeService
}

// New creates a new stub platform instance.
func New() *Platform {
	return &Platform{
		name:  runtime.GOOS,
		theme: NewThemeService(os.Stdout),
	}
}

// Name returns the platform identifier.
func (p *Platform) Name() string {
	return p.name
}

// IsSupported returns false as this is a fallback implementation.
func (p *Platform) IsSupported() bool {
	return false
}

// Theme returns the terminal background detector.
func (p *Platform) Theme() platform.ThemeService {
	return p.theme
}

// Browser returns the browser service (stub).
func (p *Platform) Browser() platform.BrowserService {
	return &stubBrowserService{}
}

// Compile-time check that Platform implements platform.Platform.
var _ platform.Platform = (*Platform)(nil)

// ThemeService approximates the ambient theme with the terminal
// background colour. The background is queried once and cached.
type ThemeService struct {
	out *termenv.Output
	tty bool
}

// NewThemeService creates a detector for the terminal behind f.
func NewThemeService(f *os.File) *ThemeService {
	return &ThemeService{
		out: termenv.NewOutput(f, termenv.WithColorCache(true)),
		tty: isatty.IsTerminal(f.Fd()),
	}
}

// Detect reports unavailable unless the output is an interactive terminal.
func (s *ThemeService) Detect() (theme.Theme, bool) {
	if !s.tty || s.out.Profile == termenv.Ascii {
		return "", false
	}
	if s.out.HasDarkBackground() {
		return theme.Dark, true
	}
	return theme.Light, true
}

// stubBrowserService cannot open URLs.
type stubBrowserService struct{}

func (s *stubBrowserService) Open(url string) error {
	return fmt.Errorf("%w: opening %s on %s", platform.ErrUnsupported, url, runtime.GOOS)
}
