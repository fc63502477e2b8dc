package web

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkawower/reagentry/internal/ambient"
	"github.com/darkawower/reagentry/internal/theme"
)

var testAssets = Assets{
	LogoLight:       "/static/logo-light.svg",
	LogoDark:        "/static/logo-dark.svg",
	ThemeColorLight: "#ffffff",
	ThemeColorDark:  "#0d1117",
}

type fixture struct {
	handler  *Handler
	provider *theme.Provider
	store    *theme.MemoryStore
	reported *ambient.Reported
	server   http.Handler
}

func newFixture(t *testing.T, def theme.Theme, mount bool) *fixture {
	t.Helper()

	store := theme.NewMemoryStore(theme.PreferenceUnset)
	reported := ambient.NewReported()
	watcher := ambient.New(reported)
	provider := theme.NewProvider(theme.Config{DefaultTheme: def}, store, watcher)
	t.Cleanup(provider.Close)
	if mount {
		provider.Mount()
	}

	h := NewHandler(provider, watcher, reported, testAssets, nil)
	return &fixture{
		handler:  h,
		provider: provider,
		store:    store,
		reported: reported,
		server:   h.Routes(),
	}
}

func (f *fixture) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var s stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func TestShell_FirstPaintUsesDefault(t *testing.T) {
	f := newFixture(t, theme.Dark, false)
	require.NoError(t, f.reported.Set(theme.Light))

	rec := f.do(t, http.MethodGet, "/", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
	assert.Contains(t, body, `data-theme="dark"`)
	assert.Contains(t, body, `src="/static/logo-dark.svg"`)
	assert.Contains(t, body, `content="#0d1117"`)
	assert.Equal(t, theme.PhaseFirstPaint, f.provider.Phase(), "rendering never reconciles")
}

func TestShell_RendersReconciledTheme(t *testing.T) {
	f := newFixture(t, theme.Dark, false)
	require.NoError(t, f.reported.Set(theme.Light))
	f.provider.Mount()

	body := f.do(t, http.MethodGet, "/", "", "").Body.String()

	assert.Contains(t, body, `data-theme="light"`)
	assert.Contains(t, body, `src="/static/logo-light.svg"`)
	assert.Contains(t, body, `data-light="/static/logo-light.svg"`)
	assert.Contains(t, body, `data-dark="/static/logo-dark.svg"`)
	assert.Contains(t, body, `name="theme-color"`)
	assert.Contains(t, body, `content="#ffffff"`)
	assert.Contains(t, body, `<option value="system" selected>System</option>`)
	assert.Contains(t, body, `data-bind`)
	assert.Contains(t, body, "/theme/events")
}

func TestShell_PickerReflectsPreference(t *testing.T) {
	f := newFixture(t, theme.Light, true)
	f.provider.SetTheme(theme.PreferenceDark)

	body := f.do(t, http.MethodGet, "/", "", "").Body.String()

	assert.Contains(t, body, `<option value="dark" selected>Dark</option>`)
	assert.Contains(t, body, `<option value="light">Light</option>`)
}

func TestGetTheme(t *testing.T) {
	f := newFixture(t, theme.Light, true)

	rec := f.do(t, http.MethodGet, "/theme", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, stateResponse{Theme: theme.Light, Preference: "unset", Phase: "reconciled"}, decodeState(t, rec))
}

func TestSetTheme_JSON(t *testing.T) {
	f := newFixture(t, theme.Light, true)

	rec := f.do(t, http.MethodPost, "/theme", "application/json", `{"preference":"dark"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stateResponse{Theme: theme.Dark, Preference: "dark", Phase: "reconciled"}, decodeState(t, rec))
	assert.Equal(t, theme.PreferenceDark, f.store.Get())
}

func TestSetTheme_Form(t *testing.T) {
	f := newFixture(t, theme.Light, true)

	form := url.Values{"preference": {"dark"}}.Encode()
	rec := f.do(t, http.MethodPost, "/theme", "application/x-www-form-urlencoded", form)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, theme.Dark, f.provider.Theme())

	rec = f.do(t, http.MethodPost, "/theme", "application/x-www-form-urlencoded", "preference=unset")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, theme.PreferenceUnset, f.store.Get())
	assert.Equal(t, theme.Light, f.provider.Theme())
}

func TestSetTheme_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		code        string
	}{
		{name: "unknown preference", contentType: "application/json", body: `{"preference":"sepia"}`, code: "BAD_PREFERENCE"},
		{name: "empty form", contentType: "application/x-www-form-urlencoded", body: "", code: "BAD_PREFERENCE"},
		{name: "malformed json", contentType: "application/json", body: `{"preference":`, code: "BAD_JSON"},
		{name: "unknown field", contentType: "application/json", body: `{"pref":"dark"}`, code: "BAD_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, theme.Light, true)

			rec := f.do(t, http.MethodPost, "/theme", tt.contentType, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
			assert.Equal(t, theme.PreferenceUnset, f.store.Get())
		})
	}
}

func TestReportAmbient(t *testing.T) {
	f := newFixture(t, theme.Light, true)

	var seen []theme.State
	f.provider.Subscribe(func(s theme.State) { seen = append(seen, s) })

	rec := f.do(t, http.MethodPost, "/theme/ambient", "application/json", `{"theme":"dark"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theme.Dark, decodeState(t, rec).Theme)
	require.Len(t, seen, 1)

	// Repeating the same value does not notify again
	f.do(t, http.MethodPost, "/theme/ambient", "application/json", `{"theme":"dark"}`)
	assert.Len(t, seen, 1)
}

func TestReportAmbient_ExplicitPreferenceWins(t *testing.T) {
	f := newFixture(t, theme.Light, true)
	f.provider.SetTheme(theme.PreferenceLight)

	rec := f.do(t, http.MethodPost, "/theme/ambient", "application/json", `{"theme":"dark"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theme.Light, decodeState(t, rec).Theme)
}

func TestReportAmbient_Invalid(t *testing.T) {
	f := newFixture(t, theme.Light, true)

	rec := f.do(t, http.MethodPost, "/theme/ambient", "application/json", `{"theme":"system"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BAD_THEME")

	_, ok := f.reported.Detect()
	assert.False(t, ok)
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t, theme.Light, true)

	for _, path := range []string{"/static/logo-light.svg", "/static/logo-dark.svg", "/static/app.css"} {
		t.Run(path, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, path, "", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.NotEmpty(t, rec.Body.String())
		})
	}

	rec := f.do(t, http.MethodGet, "/static/missing.svg", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_ReadProviderInScope(t *testing.T) {
	provider := theme.NewProvider(theme.Config{DefaultTheme: theme.Light}, nil, nil)
	t.Cleanup(provider.Close)
	provider.SetTheme(theme.PreferenceDark)

	// The handler holds no provider of its own; everything comes from the
	// request context.
	h := NewHandler(nil, nil, nil, testAssets, nil)
	ctx := theme.NewContext(context.Background(), provider)

	rec := httptest.NewRecorder()
	h.page(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-theme="dark"`)
	assert.Contains(t, body, `<option value="dark" selected>Dark</option>`)

	rec = httptest.NewRecorder()
	h.getTheme(rec, httptest.NewRequest(http.MethodGet, "/theme", nil).WithContext(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stateResponse{Theme: theme.Dark, Preference: "dark", Phase: "reconciled"}, decodeState(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(`{"preference":"light"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.setTheme(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theme.Light, decodeState(t, rec).Theme)
	assert.Equal(t, theme.Light, provider.Theme())
}

func TestMissingProviderFailsLoudly(t *testing.T) {
	h := NewHandler(nil, nil, nil, testAssets, nil)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/", h.page)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEvents(t *testing.T) {
	f := newFixture(t, theme.Light, true)
	srv := httptest.NewServer(f.server)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/theme/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first := readEvent(t, reader)
	assert.Equal(t, `{"theme":"light","preference":"unset"}`, first)

	f.provider.SetTheme(theme.PreferenceDark)
	second := readEvent(t, reader)
	assert.Equal(t, `{"theme":"dark","preference":"dark"}`, second)
}

// readEvent returns the data line of the next "theme" event.
func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var data string
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			t.Fatal("stream closed before event")
		}
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "event: theme":
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && data != "":
			return data
		}
	}
}

func TestAssets(t *testing.T) {
	assert.Equal(t, "/static/logo-light.svg", testAssets.Logo(theme.Light))
	assert.Equal(t, "/static/logo-dark.svg", testAssets.Logo(theme.Dark))
	assert.Equal(t, "#ffffff", testAssets.ThemeColor(theme.Light))
	assert.Equal(t, "#0d1117", testAssets.ThemeColor(theme.Dark))
}
