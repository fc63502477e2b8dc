package platform

import (
	"errors"
	"runtime"
	"sync"

	"github.com/darkawower/reagentry/internal/theme"
)

var ErrUnsupported = errors.New("operation not supported on this platform")

type platformBuilder func() Platform

var (
	registry     = make(map[string]platformBuilder)
	registryLock sync.RWMutex
)

// Register installs the builder used for osName.
func Register(osName string, builder platformBuilder) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[osName] = builder
}

var (
	current     Platform
	currentOnce sync.Once
	currentLock sync.Mutex
)

// Current returns the platform for runtime.GOOS.
func Current() Platform {
	currentLock.Lock()
	defer currentLock.Unlock()

	currentOnce.Do(func() {
		current = newPlatform(runtime.GOOS)
	})
	return current
}

func newPlatform(osName string) Platform {
	registryLock.RLock()
	defer registryLock.RUnlock()

	if builder, ok := registry[osName]; ok {
		return builder()
	}

	return &unsupportedPlatform{name: osName}
}

type unsupportedPlatform struct {
	name string
}

func (p *unsupportedPlatform) Name() string            { return p.name }
func (p *unsupportedPlatform) IsSupported() bool       { return false }
func (p *unsupportedPlatform) Theme() ThemeService     { return &unsupportedTheme{} }
func (p *unsupportedPlatform) Browser() BrowserService { return &unsupportedBrowser{} }

type unsupportedTheme struct{}

func (s *unsupportedTheme) Detect() (theme.Theme, bool) { return "", false }

type unsupportedBrowser struct{}

func (s *unsupportedBrowser) Open(url string) error { return ErrUnsupported }

// SetPlatform overrides the current platform.
func SetPlatform(p Platform) {
	currentLock.Lock()
	defer currentLock.Unlock()

	currentOnce.Do(func() {})
	current = p
}

// ResetPlatform restores runtime detection.
func ResetPlatform() {
	currentLock.Lock()
	defer currentLock.Unlock()

	currentOnce = sync.Once{}
	current = nil
}
