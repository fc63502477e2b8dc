// Package web serves the registry shell and its theme endpoints.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	gomponents "maragu.dev/gomponents"

	"github.com/darkawower/reagentry/internal/ambient"
	"github.com/darkawower/reagentry/internal/logging"
	"github.com/darkawower/reagentry/internal/theme"
	"github.com/darkawower/reagentry/internal/web/assets"
)

// Assets are the theme-dependent values rendered into the shell.
type Assets struct {
	LogoLight       string
	LogoDark        string
	ThemeColorLight string
	ThemeColorDark  string
}

// Logo returns the logo URL for t.
func (a Assets) Logo(t theme.Theme) string {
	return theme.Select(t, a.LogoLight, a.LogoDark)
}

// ThemeColor returns the theme-color meta value for t.
func (a Assets) ThemeColor(t theme.Theme) string {
	return theme.Select(t, a.ThemeColorLight, a.ThemeColorDark)
}

type Handler struct {
	Provider *theme.Provider
	Watcher  *ambient.Watcher
	Reported *ambient.Reported
	Assets   Assets
	Logger   logging.Logger
}

func NewHandler(
	provider *theme.Provider,
	watcher *ambient.Watcher,
	reported *ambient.Reported,
	assets Assets,
	logger logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewDisabledLogger()
	}
	return &Handler{
		Provider: provider,
		Watcher:  watcher,
		Reported: reported,
		Assets:   assets,
		Logger:   logger.With("component", "web"),
	}
}

// Routes builds the HTTP router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(h.logRequests)
	r.Use(chimw.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets.StaticFS()))))

	r.Group(func(r chi.Router) {
		r.Use(h.withProvider)

		r.Get("/", h.page)
		r.Route("/theme", func(r chi.Router) {
			r.Get("/", h.getTheme)
			r.Post("/", h.setTheme)
			r.Post("/ambient", h.reportAmbient)
			r.Get("/events", h.events)
		})
	})

	return r
}

// withProvider puts the provider in scope for every component rendered
// below it.
func (h *Handler) withProvider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(theme.NewContext(r.Context(), h.Provider)))
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
