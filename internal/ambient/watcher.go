package ambient

import (
	"context"
	"sync"
	"time"

	"github.com/darkawower/reagentry/internal/logging"
	"github.com/darkawower/reagentry/internal/theme"
)

const (
	// DefaultPollInterval is used when no interval is configured.
	DefaultPollInterval = 5 * time.Second

	// MinPollInterval is the shortest accepted polling interval.
	MinPollInterval = time.Second
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithPollInterval sets the Run polling interval. Values below
// MinPollInterval are raised to it.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d < MinPollInterval {
			d = MinPollInterval
		}
		w.interval = d
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l logging.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// Watcher turns a Detector into a change feed.
//
// Current never blocks on listeners, so it is safe to call from inside a
// provider transition while an emission is waiting on that transition.
type Watcher struct {
	detector Detector
	interval time.Duration
	log      logging.Logger

	// emit serializes Refresh calls so emissions are ordered.
	emit  sync.Mutex
	last  theme.Theme
	known bool

	mu        sync.Mutex
	listeners map[int]func(theme.Theme)
	nextID    int
}

var _ theme.Watcher = (*Watcher)(nil)

// New creates a watcher over detector. A nil detector is never available.
func New(detector Detector, opts ...Option) *Watcher {
	if detector == nil {
		detector = Chain()
	}
	w := &Watcher{
		detector:  detector,
		interval:  DefaultPollInterval,
		log:       logging.NewDisabledLogger(),
		listeners: make(map[int]func(theme.Theme)),
		nextID:    1,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("component", "ambient")
	return w
}

// Interval returns the polling interval.
func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// Current reads the detector once.
func (w *Watcher) Current() (theme.Theme, bool) {
	t, ok := w.detector.Detect()
	if !ok || !t.Valid() {
		return "", false
	}
	return t, true
}

// Subscribe registers fn for ambient changes. Each call returns its own
// cancellation handle; calling it again is a no-op.
func (w *Watcher) Subscribe(fn func(theme.Theme)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners, id)
			w.mu.Unlock()
		})
	}
}

// Refresh reads the detector and notifies listeners when the value differs
// from the last one seen by Refresh. Unavailable reads are ignored. It
// reports whether listeners were notified.
func (w *Watcher) Refresh() bool {
	w.emit.Lock()
	defer w.emit.Unlock()

	t, ok := w.Current()
	if !ok {
		return false
	}
	if w.known && t == w.last {
		return false
	}

	prev := w.last
	w.last = t
	w.known = true

	w.mu.Lock()
	listeners := make([]func(theme.Theme), 0, len(w.listeners))
	for _, fn := range w.listeners {
		listeners = append(listeners, fn)
	}
	w.mu.Unlock()

	w.log.Debug("ambient theme changed", "from", prev, "to", t, "listeners", len(listeners))

	for _, fn := range listeners {
		fn(t)
	}
	return true
}

// Run polls the detector until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Debug("ambient watcher started", "interval", w.interval)
	w.Refresh()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("ambient watcher stopped")
			return nil
		case <-ticker.C:
			w.Refresh()
		}
	}
}
