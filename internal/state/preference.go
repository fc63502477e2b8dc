package state

import (
	"sync"

	"github.com/darkawower/reagentry/internal/logging"
	"github.com/darkawower/reagentry/internal/theme"
)

// PreferenceKey is the namespaced key holding the theme preference.
const PreferenceKey = "reagentry.theme.preference"

// PreferenceStore keeps the user's theme preference in the state file.
//
// Storage problems never reach the caller: an unreadable file reads as
// "no preference", and a failed write switches the store to an in-memory
// value for the rest of the process lifetime.
type PreferenceStore struct {
	path string
	log  logging.Logger

	mu       sync.Mutex
	degraded bool
	memory   theme.Preference
}

// Option configures a PreferenceStore.
type Option func(*PreferenceStore)

// WithLogger sets the store logger.
func WithLogger(l logging.Logger) Option {
	return func(s *PreferenceStore) {
		s.log = l
	}
}

// NewPreferenceStore creates a store backed by the state file at path.
func NewPreferenceStore(path string, opts ...Option) *PreferenceStore {
	s := &PreferenceStore{
		path: expandPath(path),
		log:  logging.NewDisabledLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "preference-store")
	return s
}

var _ theme.Store = (*PreferenceStore)(nil)

// Get returns the stored preference, or theme.PreferenceUnset when there
// is no usable record.
func (s *PreferenceStore) Get() theme.Preference {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded {
		return s.memory
	}

	st, err := Load(s.path)
	if err != nil {
		s.log.Warn("preference unreadable, treating as unset", "path", s.path, "error", err)
		return theme.PreferenceUnset
	}

	raw, ok := st.Get(PreferenceKey)
	if !ok {
		return theme.PreferenceUnset
	}
	return theme.ParsePreference(raw)
}

// Set persists p. theme.PreferenceUnset removes the record.
func (s *PreferenceStore) Set(p theme.Preference) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded {
		s.memory = p
		return
	}

	if err := s.write(p); err != nil {
		s.log.Warn("preference storage unavailable, keeping value in memory",
			"path", s.path,
			"preference", p.String(),
			"error", err,
		)
		s.degraded = true
		s.memory = p
	}
}

// Degraded reports whether the store has fallen back to memory.
func (s *PreferenceStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Path returns the backing file path.
func (s *PreferenceStore) Path() string {
	return s.path
}

func (s *PreferenceStore) write(p theme.Preference) error {
	st, err := Load(s.path)
	if err != nil {
		// Unreadable content is replaced rather than merged.
		s.log.Debug("discarding unreadable state file", "path", s.path, "error", err)
		st = New(s.path)
	}

	if p == theme.PreferenceUnset {
		st.Delete(PreferenceKey)
	} else {
		st.Set(PreferenceKey, string(p))
	}

	return st.Save()
}
