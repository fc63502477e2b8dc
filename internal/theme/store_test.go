package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(PreferenceUnset)
	assert.Equal(t, PreferenceUnset, m.Get())

	for _, pref := range []Preference{PreferenceLight, PreferenceDark, PreferenceSystem, PreferenceUnset} {
		m.Set(pref)
		assert.Equal(t, pref, m.Get())
	}
}

func TestNewProvider_NilStoreKeepsPreferenceInMemory(t *testing.T) {
	p := NewProvider(Config{DefaultTheme: Light}, nil, nil)
	p.Mount()

	p.SetTheme(PreferenceDark)
	assert.Equal(t, State{Current: Dark, Preference: PreferenceDark}, p.State())

	_, ok := p.store.(*MemoryStore)
	assert.True(t, ok)
	assert.Equal(t, PreferenceDark, p.store.Get())
}
