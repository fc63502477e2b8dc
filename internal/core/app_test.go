package core

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkawower/reagentry/internal/ambient"
	"github.com/darkawower/reagentry/internal/logging"
	"github.com/darkawower/reagentry/internal/platform"
	"github.com/darkawower/reagentry/internal/state"
	"github.com/darkawower/reagentry/internal/theme"
)

type fakePlatform struct {
	system theme.Theme
	opened []string
}

func (p *fakePlatform) Name() string                     { return "fake" }
func (p *fakePlatform) IsSupported() bool                { return true }
func (p *fakePlatform) Theme() platform.ThemeService     { return p }
func (p *fakePlatform) Browser() platform.BrowserService { return p }

func (p *fakePlatform) Detect() (theme.Theme, bool) {
	return p.system, p.system.Valid()
}

func (p *fakePlatform) Open(url string) error {
	p.opened = append(p.opened, url)
	return nil
}

func writeConfig(t *testing.T, body string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	statePath := filepath.Join(dir, "data", "state.json")
	content := "[state]\npath = \"" + filepath.ToSlash(statePath) + "\"\n" + body
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath, statePath
}

func newApp(t *testing.T, body string, opts ...Option) (*App, string) {
	t.Helper()
	cfgPath, statePath := writeConfig(t, body)
	opts = append([]Option{WithLogger(logging.NewDisabledLogger())}, opts...)
	app, err := New(cfgPath, opts...)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app, statePath
}

func TestNew(t *testing.T) {
	app, statePath := newApp(t, "[theme]\ndefault = \"dark\"\n", WithPlatform(&fakePlatform{}))

	assert.Equal(t, theme.Dark, app.Config().DefaultTheme())
	assert.Equal(t, theme.Dark, app.Provider().Theme())
	assert.Equal(t, theme.PhaseFirstPaint, app.Provider().Phase())
	assert.NotNil(t, app.Watcher())
	assert.NotNil(t, app.Reported())
	assert.NotNil(t, app.Logger())
	assert.Equal(t, "fake", app.Platform().Name())

	assert.DirExists(t, filepath.Dir(statePath))
}

func TestNew_Options(t *testing.T) {
	t.Run("default theme override", func(t *testing.T) {
		app, _ := newApp(t, "", WithDefaultTheme("Dark"), WithPlatform(&fakePlatform{}))
		assert.Equal(t, theme.Dark, app.Provider().Config().DefaultTheme)
	})

	t.Run("invalid default theme", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "")
		_, err := New(cfgPath, WithDefaultTheme("sepia"), WithLogger(logging.NewDisabledLogger()))
		require.Error(t, err)
		assert.ErrorIs(t, err, theme.ErrInvalidTheme)
	})

	t.Run("addr override", func(t *testing.T) {
		app, _ := newApp(t, "", WithAddr("127.0.0.1:9999"), WithPlatform(&fakePlatform{}))
		assert.Equal(t, "127.0.0.1:9999", app.Config().Server.Addr)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "[theme]\ndefault = \"sepia\"\n")
		_, err := New(cfgPath, WithLogger(logging.NewDisabledLogger()))
		require.Error(t, err)
	})
}

func TestApp_AmbientDetection(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		opts     []Option
		reported theme.Theme
		expected theme.Theme
	}{
		{
			name:     "platform detection",
			body:     "[ambient]\ndetect = true\n",
			opts:     []Option{WithPlatform(&fakePlatform{system: theme.Dark})},
			expected: theme.Dark,
		},
		{
			name:     "detection disabled",
			body:     "[ambient]\ndetect = false\n",
			opts:     []Option{WithPlatform(&fakePlatform{system: theme.Dark})},
			expected: theme.Light,
		},
		{
			name:     "browser report wins over platform",
			body:     "[ambient]\ndetect = true\n",
			opts:     []Option{WithPlatform(&fakePlatform{system: theme.Dark})},
			reported: theme.Light,
			expected: theme.Light,
		},
		{
			name: "custom detector",
			body: "[ambient]\ndetect = false\n",
			opts: []Option{
				WithPlatform(&fakePlatform{}),
				WithDetector(ambient.DetectorFunc(func() (theme.Theme, bool) { return theme.Dark, true })),
			},
			expected: theme.Dark,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newApp(t, tt.body, append(tt.opts, WithEphemeralState(true))...)
			if tt.reported != "" {
				require.NoError(t, app.Reported().Set(tt.reported))
			}

			s := app.Status()
			assert.Equal(t, tt.expected, s.State.Current)
			assert.Equal(t, theme.PhaseReconciled, s.Phase)
		})
	}
}

func TestApp_SetPreference(t *testing.T) {
	app, statePath := newApp(t, "[ambient]\ndetect = false\n", WithPlatform(&fakePlatform{}))

	s := app.SetPreference(theme.PreferenceDark)
	assert.Equal(t, theme.State{Current: theme.Dark, Preference: theme.PreferenceDark}, s)
	assert.Equal(t, theme.PhaseReconciled, app.Provider().Phase())

	st, err := state.Load(statePath)
	require.NoError(t, err)
	v, ok := st.Get(state.PreferenceKey)
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	// A second app over the same state starts from the stored preference.
	cfgPath := filepath.Join(filepath.Dir(filepath.Dir(statePath)), "config.toml")
	again, err := New(cfgPath, WithLogger(logging.NewDisabledLogger()), WithPlatform(&fakePlatform{}))
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, theme.Dark, again.Status().State.Current)
}

func TestApp_EphemeralState(t *testing.T) {
	app, statePath := newApp(t, "", WithEphemeralState(true), WithPlatform(&fakePlatform{}))

	app.SetPreference(theme.PreferenceDark)
	assert.NoFileExists(t, statePath)

	s := app.Status()
	assert.Empty(t, s.StatePath)
	assert.False(t, s.Degraded)
}

func TestApp_Status(t *testing.T) {
	app, statePath := newApp(t, "[ambient]\ndetect = true\n", WithPlatform(&fakePlatform{system: theme.Dark}))

	s := app.Status()
	assert.Equal(t, theme.State{Current: theme.Dark, Preference: theme.PreferenceUnset}, s.State)
	assert.Equal(t, theme.Dark, s.Ambient)
	assert.True(t, s.AmbientOK)
	assert.Equal(t, "fake", s.Platform)
	assert.Equal(t, statePath, s.StatePath)
	assert.False(t, s.Degraded)
}

func TestApp_Assets(t *testing.T) {
	app, _ := newApp(t, "", WithPlatform(&fakePlatform{}))

	assets := app.Assets()
	assert.Equal(t, "/static/logo-light.svg", assets.LogoLight)
	assert.Equal(t, "/static/logo-dark.svg", assets.LogoDark)
	assert.Equal(t, "#ffffff", assets.ThemeColorLight)
	assert.Equal(t, "#0d1117", assets.ThemeColorDark)
}

func TestApp_Assets_MissingBackdrop(t *testing.T) {
	app, _ := newApp(t, "[assets]\nbackdrop-dark = \"/nonexistent/dark.png\"\n", WithPlatform(&fakePlatform{}))

	assert.Equal(t, "#0d1117", app.Assets().ThemeColorDark)
}

func TestApp_ServeListener(t *testing.T) {
	app, _ := newApp(t, "[ambient]\ndetect = true\n",
		WithEphemeralState(true),
		WithPlatform(&fakePlatform{system: theme.Dark}),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.ServeListener(ctx, ln)
	}()

	url := "http://" + ln.Addr().String() + "/theme"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "dark", body["theme"])
	assert.Equal(t, "reconciled", body["phase"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	app.SetPreference(theme.PreferenceLight)
	assert.Equal(t, theme.Dark, app.Provider().Theme(), "closed provider ignores changes")
}

func TestApp_Serve_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	app, _ := newApp(t, "", WithEphemeralState(true), WithAddr(ln.Addr().String()), WithPlatform(&fakePlatform{}))

	err = app.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestApp_Watch(t *testing.T) {
	var (
		mu     sync.Mutex
		system = theme.Light
	)
	detector := ambient.DetectorFunc(func() (theme.Theme, bool) {
		mu.Lock()
		defer mu.Unlock()
		return system, true
	})

	app, _ := newApp(t, "", WithEphemeralState(true), WithDetector(detector), WithPlatform(&fakePlatform{}))

	var (
		seenMu sync.Mutex
		seen   []theme.State
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Watch(ctx, func(s theme.State) {
			seenMu.Lock()
			seen = append(seen, s)
			seenMu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		return app.Provider().Phase() == theme.PhaseReconciled
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	system = theme.Dark
	mu.Unlock()
	app.Watcher().Refresh()

	require.Eventually(t, func() bool {
		return app.Provider().Theme() == theme.Dark
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, err == nil || errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}

	seenMu.Lock()
	defer seenMu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, theme.Dark, seen[len(seen)-1].Current)
}
