package web

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/darkawower/reagentry/internal/theme"
)

const maxBodyBytes = 1 << 10

type stateResponse struct {
	Theme      theme.Theme `json:"theme"`
	Preference string      `json:"preference"`
	Phase      string      `json:"phase"`
}

func newStateResponse(c theme.Consumer) stateResponse {
	s := c.State()
	return stateResponse{
		Theme:      s.Current,
		Preference: s.Preference.String(),
		Phase:      c.Phase().String(),
	}
}

func (h *Handler) getTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateResponse(theme.MustFromContext(r.Context())))
}

// setTheme accepts a form post from the picker or a JSON body
// {"preference": "..."}. Form posts are redirected back to the shell.
func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	c := theme.MustFromContext(r.Context())

	asJSON := isJSON(r)
	var raw string
	if asJSON {
		var req struct {
			Preference string `json:"preference"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "BAD_JSON", err.Error())
			return
		}
		raw = req.Preference
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeErr(w, http.StatusBadRequest, "BAD_FORM", "request body must be a valid form")
			return
		}
		raw = r.PostForm.Get("preference")
	}

	pref, err := theme.ParseChoice(raw)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "BAD_PREFERENCE", err.Error())
		return
	}

	c.SetTheme(pref)
	resp := newStateResponse(c)
	h.Logger.Info("theme preference changed", "preference", pref.String(), "theme", resp.Theme)

	if !asJSON {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// reportAmbient receives the client's prefers-color-scheme value.
func (h *Handler) reportAmbient(w http.ResponseWriter, r *http.Request) {
	c := theme.MustFromContext(r.Context())

	var req struct {
		Theme string `json:"theme"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}

	t, err := theme.Parse(req.Theme)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "BAD_THEME", err.Error())
		return
	}

	if h.Reported == nil {
		writeErr(w, http.StatusNotImplemented, "AMBIENT_DISABLED", "ambient reporting is not enabled")
		return
	}
	if err := h.Reported.Set(t); err != nil {
		writeErr(w, http.StatusBadRequest, "BAD_THEME", err.Error())
		return
	}
	if h.Watcher != nil {
		h.Watcher.Refresh()
	}

	writeJSON(w, http.StatusOK, newStateResponse(c))
}

// events streams provider states as server-sent events, starting with the
// current one. Slow clients only see the latest state.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	c := theme.MustFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "STREAM_UNAVAILABLE", "streaming is not available")
		return
	}

	updates := make(chan theme.State, 1)
	unsubscribe := c.Subscribe(func(s theme.State) {
		for {
			select {
			case updates <- s:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, c.State()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case s := <-updates:
			if err := writeEvent(w, s); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, s theme.State) error {
	payload, err := json.Marshal(struct {
		Theme      theme.Theme `json:"theme"`
		Preference string      `json:"preference"`
	}{s.Current, s.Preference.String()})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: theme\ndata: %s\n\n", payload)
	return err
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("request body must be a single JSON object: %w", err)
	}
	return nil
}
