package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/darkawower/reagentry/internal/ambient"
	"github.com/darkawower/reagentry/internal/colors"
	"github.com/darkawower/reagentry/internal/config"
	"github.com/darkawower/reagentry/internal/logging"
	"github.com/darkawower/reagentry/internal/platform"
	"github.com/darkawower/reagentry/internal/state"
	"github.com/darkawower/reagentry/internal/theme"
	"github.com/darkawower/reagentry/internal/web"
)

const shutdownTimeout = 10 * time.Second

// App wires the theme provider to its store, the ambient watcher and the
// web shell.
type App struct {
	config   *config.Config
	log      logging.Logger
	platform platform.Platform
	store    theme.Store
	reported *ambient.Reported
	watcher  *ambient.Watcher
	provider *theme.Provider

	assetsOnce sync.Once
	assets     web.Assets

	// Options
	defaultTheme string
	ephemeral    bool
	detector     ambient.Detector
	addr         string
}

// Option is a function that configures the App.
type Option func(*App)

// WithDefaultTheme overrides the configured first-paint theme.
func WithDefaultTheme(t string) Option {
	return func(a *App) {
		a.defaultTheme = t
	}
}

// WithEphemeralState keeps the preference in memory only.
func WithEphemeralState(ephemeral bool) Option {
	return func(a *App) {
		a.ephemeral = ephemeral
	}
}

// WithDetector replaces platform detection with d. Browser reports are
// still consulted first.
func WithDetector(d ambient.Detector) Option {
	return func(a *App) {
		a.detector = d
	}
}

// WithLogger sets the application logger.
func WithLogger(l logging.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// WithAddr overrides the configured listen address.
func WithAddr(addr string) Option {
	return func(a *App) {
		a.addr = addr
	}
}

// WithPlatform overrides runtime platform detection.
func WithPlatform(p platform.Platform) Option {
	return func(a *App) {
		a.platform = p
	}
}

// New creates a new App instance. The provider is constructed but not
// mounted.
func New(configPath string, opts ...Option) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.defaultTheme != "" {
		t, err := theme.Parse(a.defaultTheme)
		if err != nil {
			return nil, fmt.Errorf("invalid default theme: %w", err)
		}
		cfg.Theme.Default = t.String()
	}
	if a.addr != "" {
		cfg.Server.Addr = a.addr
	}
	if a.log == nil {
		a.log = logging.NewLogger(cfg.LoggerConfig())
	}
	if a.platform == nil {
		a.platform = platform.Current()
	}

	if a.ephemeral {
		a.store = theme.NewMemoryStore(theme.PreferenceUnset)
	} else {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to create directories: %w", err)
		}
		a.store = state.NewPreferenceStore(cfg.State.Path, state.WithLogger(a.log))
	}

	a.reported = ambient.NewReported()
	a.watcher = ambient.New(
		ambient.Chain(a.reported, a.systemDetector()),
		ambient.WithPollInterval(cfg.Ambient.PollInterval.Duration),
		ambient.WithLogger(a.log),
	)
	a.provider = theme.NewProvider(
		theme.Config{DefaultTheme: cfg.DefaultTheme()},
		a.store,
		a.watcher,
		theme.WithLogger(a.log),
	)

	return a, nil
}

func (a *App) systemDetector() ambient.Detector {
	if a.detector != nil {
		return a.detector
	}
	if !a.config.Ambient.Detect {
		return nil
	}
	return a.platform.Theme()
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() logging.Logger {
	return a.log
}

// Platform returns the OS platform.
func (a *App) Platform() platform.Platform {
	return a.platform
}

// Provider returns the theme provider.
func (a *App) Provider() *theme.Provider {
	return a.provider
}

// Watcher returns the ambient watcher.
func (a *App) Watcher() *ambient.Watcher {
	return a.watcher
}

// Reported returns the detector fed by browser reports.
func (a *App) Reported() *ambient.Reported {
	return a.reported
}

// SetPreference mounts the provider if needed and applies pref.
func (a *App) SetPreference(pref theme.Preference) theme.State {
	a.provider.SetTheme(pref)
	return a.provider.State()
}

// Assets returns the per-theme shell assets. Backdrop colours are
// computed on first use.
func (a *App) Assets() web.Assets {
	a.assetsOnce.Do(func() {
		a.assets = web.Assets{
			LogoLight:       a.config.Logo(theme.Light),
			LogoDark:        a.config.Logo(theme.Dark),
			ThemeColorLight: a.themeColor(theme.Light),
			ThemeColorDark:  a.themeColor(theme.Dark),
		}
	})
	return a.assets
}

func (a *App) themeColor(t theme.Theme) string {
	c, err := colors.ThemeColor(a.config.Backdrop(t), t)
	if err != nil {
		a.log.Warn("backdrop colour unavailable, using fallback",
			"theme", t,
			"backdrop", a.config.Backdrop(t),
			"error", err,
		)
	}
	return c.Hex()
}

// Handler returns the web shell.
func (a *App) Handler() http.Handler {
	return web.NewHandler(a.provider, a.watcher, a.reported, a.Assets(), a.log).Routes()
}

// Serve listens on the configured address and runs until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Server.Addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener mounts the provider and runs the ambient watcher and the
// web shell on ln until ctx is done or either fails. The provider is
// closed on return.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	defer a.provider.Close()

	a.provider.Mount()

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		return a.watcher.Run(gctx)
	})

	g.Go(func() error {
		a.log.Info("web shell listening", "addr", ln.Addr().String(), "theme", a.provider.Theme())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down web shell")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Watch mounts the provider, reports every state change to fn and polls
// the ambient watcher until ctx is done.
func (a *App) Watch(ctx context.Context, fn func(theme.State)) error {
	unsubscribe := a.provider.Subscribe(fn)
	defer unsubscribe()

	a.provider.Mount()
	return a.watcher.Run(ctx)
}

// Close releases the provider. The stored preference is kept.
func (a *App) Close() {
	a.provider.Close()
}
