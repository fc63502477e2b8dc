package theme

import (
	"sync"

	"github.com/google/uuid"

	"github.com/darkawower/reagentry/internal/logging"
)

// Store persists the user's explicit preference.
type Store interface {
	// Get returns the stored preference, or PreferenceUnset.
	Get() Preference

	// Set persists the preference. Failures are absorbed by the store.
	Set(p Preference)
}

// Watcher reports the ambient (system) theme.
type Watcher interface {
	// Current reads the ambient theme once. ok is false when it cannot be
	// determined.
	Current() (t Theme, ok bool)

	// Subscribe registers fn for ambient changes and returns its
	// cancellation handle.
	Subscribe(fn func(Theme)) (unsubscribe func())
}

// Config is supplied once, at provider construction.
type Config struct {
	// DefaultTheme is rendered until the environment has been read.
	DefaultTheme Theme
}

// State is a snapshot of the provider's live theme record.
type State struct {
	Current    Theme      `json:"theme"`
	Preference Preference `json:"preference"`
}

// Phase is the provider lifecycle position.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseFirstPaint
	PhaseReconciled
)

func (p Phase) String() string {
	switch p {
	case PhaseFirstPaint:
		return "first-paint"
	case PhaseReconciled:
		return "reconciled"
	default:
		return "uninitialized"
	}
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Provider) {
		p.log = l
	}
}

// Provider owns the theme state of one rendered tree. It starts in the
// first-paint phase with the configured default, reconciles against the
// store and the ambient watcher exactly once on Mount, and from then on
// follows preference changes and ambient events.
//
// Listeners registered with Subscribe run synchronously after each
// transition and must not call SetTheme themselves.
type Provider struct {
	id      string
	cfg     Config
	store   Store
	watcher Watcher
	log     logging.Logger

	// transition serializes state changes together with their notifications.
	transition sync.Mutex
	mountOnce  sync.Once

	mu        sync.RWMutex
	state     State
	phase     Phase
	system    Theme
	closed    bool
	unwatch   func()
	listeners map[int]func(State)
	nextID    int
}

// NewProvider creates a provider in the first-paint phase. It performs no
// I/O: the first render always uses cfg.DefaultTheme. A nil store keeps the
// preference in a MemoryStore.
func NewProvider(cfg Config, store Store, watcher Watcher, opts ...Option) *Provider {
	if !cfg.DefaultTheme.Valid() {
		cfg.DefaultTheme = Light
	}
	if store == nil {
		store = NewMemoryStore(PreferenceUnset)
	}

	p := &Provider{
		id:        uuid.NewString(),
		cfg:       cfg,
		store:     store,
		watcher:   watcher,
		log:       logging.NewDisabledLogger(),
		state:     State{Current: cfg.DefaultTheme, Preference: PreferenceUnset},
		phase:     PhaseFirstPaint,
		listeners: make(map[int]func(State)),
		nextID:    1,
	}

	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("component", "theme", "provider", p.id)

	return p
}

// ID returns the provider instance identifier.
func (p *Provider) ID() string {
	return p.id
}

// Config returns the construction-time configuration.
func (p *Provider) Config() Config {
	return p.cfg
}

// State returns the current snapshot.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Theme returns the current resolved theme.
func (p *Provider) Theme() Theme {
	return p.State().Current
}

// Phase returns the lifecycle phase.
func (p *Provider) Phase() Phase {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.phase
}

// Mount reads the store and the ambient watcher, resolves, and moves the
// provider from first-paint to reconciled. Only the first call has an
// effect; it also subscribes to ambient changes.
func (p *Provider) Mount() {
	p.mountOnce.Do(p.mount)
}

func (p *Provider) mount() {
	p.transition.Lock()
	defer p.transition.Unlock()

	if p.isClosed() {
		return
	}

	// Subscribe before reading so that a change between the read and the
	// subscription is not lost; events wait on the transition lock.
	var unwatch func()
	if p.watcher != nil {
		unwatch = p.watcher.Subscribe(p.handleSystemChange)
	}

	pref := p.store.Get()
	system := p.readSystem()
	next := State{
		Current:    Resolve(pref, system, p.cfg.DefaultTheme),
		Preference: pref,
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if unwatch != nil {
			unwatch()
		}
		return
	}
	p.unwatch = unwatch
	p.system = system
	p.phase = PhaseReconciled
	prev := p.state
	p.state = next
	listeners := p.listenersLocked()
	p.mu.Unlock()

	p.log.Debug("theme reconciled",
		"default", p.cfg.DefaultTheme,
		"preference", pref.String(),
		"system", system,
		"theme", next.Current,
	)

	if next != prev {
		notify(listeners, next)
	}
}

// SetTheme stores pref and applies it in one transition. An unmounted
// provider is reconciled first.
func (p *Provider) SetTheme(pref Preference) {
	p.Mount()

	p.transition.Lock()
	defer p.transition.Unlock()

	if p.isClosed() {
		p.log.Warn("theme change after close ignored", "preference", pref.String())
		return
	}

	p.store.Set(pref)

	p.mu.Lock()
	next := State{
		Current:    Resolve(pref, p.system, p.cfg.DefaultTheme),
		Preference: pref,
	}
	changed := p.swapLocked(next)
	listeners := p.listenersLocked()
	p.mu.Unlock()

	p.log.Debug("theme preference set", "preference", pref.String(), "theme", next.Current)

	if changed {
		notify(listeners, next)
	}
}

// handleSystemChange applies an ambient event. The event may have waited
// on the transition lock behind a reconcile that read a newer value, so the
// watcher is read again and the event value only used when that read fails.
func (p *Provider) handleSystemChange(system Theme) {
	if !system.Valid() {
		return
	}

	p.transition.Lock()
	defer p.transition.Unlock()

	if t, ok := p.watcher.Current(); ok && t.Valid() {
		system = t
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.system = system
	if p.phase != PhaseReconciled || !p.state.Preference.FollowsSystem() {
		p.mu.Unlock()
		return
	}
	next := State{
		Current:    Resolve(p.state.Preference, system, p.cfg.DefaultTheme),
		Preference: p.state.Preference,
	}
	changed := p.swapLocked(next)
	listeners := p.listenersLocked()
	p.mu.Unlock()

	if changed {
		p.log.Debug("theme follows system", "theme", next.Current)
		notify(listeners, next)
	}
}

// Subscribe registers fn to be called with every new state. The returned
// function removes this registration only and is safe to call repeatedly.
func (p *Provider) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// Close cancels the ambient subscription and drops all listeners. The
// stored preference is left untouched. Close is idempotent.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	unwatch := p.unwatch
	p.unwatch = nil
	p.listeners = make(map[int]func(State))
	p.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	p.log.Debug("theme provider closed")
}

func (p *Provider) readSystem() Theme {
	if p.watcher == nil {
		return ""
	}
	t, ok := p.watcher.Current()
	if !ok || !t.Valid() {
		p.log.Debug("ambient theme unavailable, using default", "default", p.cfg.DefaultTheme)
		return ""
	}
	return t
}

func (p *Provider) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

func (p *Provider) swapLocked(next State) bool {
	prev := p.state
	p.state = next
	return prev != next
}

func (p *Provider) listenersLocked() []func(State) {
	out := make([]func(State), 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
