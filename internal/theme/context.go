package theme

import (
	"context"
	"errors"
)

// ErrNoProvider is the panic value of MustFromContext when no provider is
// in scope.
var ErrNoProvider = errors.New("theme: no provider in context - wrap the tree with theme.NewContext")

// Consumer is the read interface handed to presentational components.
type Consumer interface {
	// Theme returns the live resolved theme.
	Theme() Theme

	// State returns the theme and preference as one snapshot.
	State() State

	// Phase returns the provider lifecycle phase.
	Phase() Phase

	// Subscribe registers fn for state changes and returns its
	// cancellation handle.
	Subscribe(fn func(State)) (unsubscribe func())

	// SetTheme forwards a preference change to the provider.
	SetTheme(pref Preference)
}

var _ Consumer = (*Provider)(nil)

type contextKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// MustFromContext returns the provider in scope. It panics with
// ErrNoProvider when there is none; a component rendered outside a
// provider is a wiring mistake and never falls back to a default.
func MustFromContext(ctx context.Context) Consumer {
	p, ok := ctx.Value(contextKey{}).(*Provider)
	if !ok || p == nil {
		panic(ErrNoProvider)
	}
	return p
}
