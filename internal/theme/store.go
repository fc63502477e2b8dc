package theme

import "sync"

// MemoryStore is a process-local preference store.
type MemoryStore struct {
	mu   sync.Mutex
	pref Preference
}

// NewMemoryStore creates a store holding pref.
func NewMemoryStore(pref Preference) *MemoryStore {
	return &MemoryStore{pref: pref}
}

var _ Store = (*MemoryStore)(nil)

// Get returns the held preference.
func (m *MemoryStore) Get() Preference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pref
}

// Set replaces the held preference.
func (m *MemoryStore) Set(p Preference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pref = p
}
