package syncmon

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/threadboard/internal/comment"
	"github.com/roach88/threadboard/internal/notify"
	"github.com/roach88/threadboard/internal/tree"
)

// DefaultInterval is the period of the fallback reconciliation.
const DefaultInterval = 5 * time.Second

// Target is the context whose forest the monitor keeps current.
// Implemented by board.Service.
//
// Reload must call load and apply its result in one critical section with
// the context's own writes: a local post may not land between the read
// and the replace. A nil stale means replace unconditionally. changed
// reports whether the local content differs afterwards.
type Target interface {
	Reload(
		ctx context.Context,
		load func(context.Context) comment.Forest,
		stale func(local, stored comment.Forest) bool,
	) (local, stored comment.Forest, changed bool)
}

// Loader reads the shared forest. Implemented by store.CommentStore.
type Loader interface {
	Key() string
	Load(ctx context.Context) comment.Forest
}

// Ticker is the periodic trigger. Implemented by time.Ticker (via
// NewTimeTicker) and testutil.ManualTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Reason says why the monitor looked at the store.
type Reason string

const (
	ReasonNotification Reason = "notification"
	ReasonPoll         Reason = "poll"
)

// Result describes one handled trigger. Local and Stored are total node
// counts read just before the replace decision.
type Result struct {
	Reason   Reason
	Replaced bool
	Local    int
	Stored   int
}

// Monitor reconciles one context with the shared store.
//
// Thread-safety model:
//   - Run(): must be called from exactly one goroutine
//   - HandleChange(), Reconcile(): safe whenever Target is safe for concurrent use
type Monitor struct {
	target    Target
	store     Loader
	bus       notify.Broadcaster
	origin    string
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	staleness Staleness
	logger    *slog.Logger
	observe   func(Result)
	ready     chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the reconciliation period (default DefaultInterval).
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithTicker replaces NewTimeTicker, typically with a manual ticker in tests.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(m *Monitor) {
		m.newTicker = newTicker
	}
}

// WithStaleness sets the polling strategy (default CountStaleness).
func WithStaleness(s Staleness) Option {
	return func(m *Monitor) {
		m.staleness = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithObserver registers fn to be called after every handled trigger.
func WithObserver(fn func(Result)) Option {
	return func(m *Monitor) {
		m.observe = fn
	}
}

// New creates a monitor for target. bus may be nil, in which case only
// polling keeps the context current. origin must be the origin the
// context's CommentStore publishes with.
func New(target Target, store Loader, bus notify.Broadcaster, origin string, opts ...Option) *Monitor {
	m := &Monitor{
		target:    target,
		store:     store,
		bus:       bus,
		origin:    origin,
		interval:  DefaultInterval,
		newTicker: NewTimeTicker,
		staleness: CountStaleness{},
		logger:    slog.Default(),
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ready is closed once Run has subscribed and started its ticker.
func (m *Monitor) Ready() <-chan struct{} {
	return m.ready
}

// Staleness returns the polling strategy in use.
func (m *Monitor) Staleness() Staleness {
	return m.staleness
}

// Run handles notifications and ticks until ctx is cancelled.
// Cancelling ctx is the teardown hook: the subscription and ticker are released.
func (m *Monitor) Run(ctx context.Context) error {
	var changes <-chan notify.Change
	if m.bus != nil {
		sub := m.bus.Subscribe(m.store.Key(), m.origin)
		defer sub.Close()
		changes = sub.C
	}

	ticker := m.newTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("sync monitor starting",
		"key", m.store.Key(),
		"interval", m.interval,
		"staleness", m.staleness.Name(),
	)
	close(m.ready)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sync monitor stopping", "key", m.store.Key())
			return ctx.Err()

		case c, ok := <-changes:
			if !ok {
				// Broadcaster closed; keep polling.
				changes = nil
				continue
			}
			m.HandleChange(ctx, c)

		case <-ticker.C():
			m.Reconcile(ctx)
		}
	}
}

// HandleChange reloads the store and replaces the local forest wholesale
// when c concerns the comments key. It reports whether the local content
// changed.
func (m *Monitor) HandleChange(ctx context.Context, c notify.Change) bool {
	if c.Key != m.store.Key() {
		return false
	}
	local, stored, changed := m.target.Reload(ctx, m.store.Load, nil)

	res := Result{
		Reason:   ReasonNotification,
		Replaced: changed,
		Local:    tree.CountForest(local),
		Stored:   tree.CountForest(stored),
	}
	m.logger.Debug("change notification handled",
		"key", c.Key,
		"revision", c.Revision,
		"origin", c.Origin,
		"replaced", changed,
	)
	m.emit(res)
	return changed
}

// Reconcile performs one poll: reload the store and replace the local
// forest when the staleness check says it is out of date.
func (m *Monitor) Reconcile(ctx context.Context) bool {
	local, stored, changed := m.target.Reload(ctx, m.store.Load, m.staleness.Stale)

	res := Result{
		Reason:   ReasonPoll,
		Replaced: changed,
		Local:    tree.CountForest(local),
		Stored:   tree.CountForest(stored),
	}
	if changed {
		m.logger.Debug("forest replaced after poll", "key", m.store.Key(), "staleness", m.staleness.Name())
	}
	m.emit(res)
	return changed
}

func (m *Monitor) emit(res Result) {
	if m.observe != nil {
		m.observe(res)
	}
}
