// Package core assembles the theme provider, its store, the ambient
// watcher and the web shell into one application.
package core

import (
	"github.com/darkawower/reagentry/internal/state"
	"github.com/darkawower/reagentry/internal/theme"
)

// Status is a point-in-time view of the application's theme.
type Status struct {
	// State is the provider's current state.
	State theme.State

	// Phase is the provider lifecycle phase.
	Phase theme.Phase

	// Ambient is the system theme, valid only when AmbientOK is true.
	Ambient   theme.Theme
	AmbientOK bool

	// Platform is the OS platform name.
	Platform string

	// StatePath is the preference file, empty for in-memory state.
	StatePath string

	// Degraded reports that preference writes fell back to memory.
	Degraded bool
}

// Status mounts the provider if needed and returns its current view.
func (a *App) Status() Status {
	a.provider.Mount()

	ambient, ok := a.watcher.Current()
	s := Status{
		State:     a.provider.State(),
		Phase:     a.provider.Phase(),
		Ambient:   ambient,
		AmbientOK: ok,
		Platform:  a.platform.Name(),
	}
	if ps, isFile := a.store.(*state.PreferenceStore); isFile {
		s.StatePath = ps.Path()
		s.Degraded = ps.Degraded()
	}
	return s
}
