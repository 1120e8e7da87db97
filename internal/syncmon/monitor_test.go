package syncmon

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/threadboard/internal/comment"
	"github.com/roach88/threadboard/internal/notify"
	"github.com/roach88/threadboard/internal/store"
	"github.com/roach88/threadboard/internal/testutil"
	"github.com/roach88/threadboard/internal/tree"
)

var t0 = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// view is a minimal Target: one context's engine behind a mutex.
type view struct {
	mu       sync.Mutex
	engine   *tree.Engine
	replaced int
}

func newView(f comment.Forest) *view {
	return &view{engine: tree.New(f)}
}

func (v *view) Forest() comment.Forest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.Forest()
}

func (v *view) Reload(
	ctx context.Context,
	load func(context.Context) comment.Forest,
	stale func(local, stored comment.Forest) bool,
) (comment.Forest, comment.Forest, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	local := v.engine.Forest()
	stored := load(ctx)
	if stale != nil && !stale(local, stored) {
		return local, stored, false
	}
	v.engine.Replace(stored)
	v.replaced++
	return local, stored, DigestStaleness{}.Stale(local, stored)
}

func (v *view) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.CountAll()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func top(id, author, text string) comment.Comment {
	return comment.New(id, author, text, t0, "")
}

func TestHandleChange_ReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	slots := store.NewMemory()
	other := store.NewCommentStore(slots)
	mine := store.NewCommentStore(slots)
	require.NoError(t, other.Save(ctx, comment.Forest{top("x", "Xena", "from other tab")}))

	local := newView(comment.Forest{top("unsaved", "Me", "local only")})
	m := New(local, mine, nil, "tab-a", WithLogger(quietLogger()))

	ok := m.HandleChange(ctx, notify.Change{Key: store.DefaultCommentsKey})

	assert.True(t, ok)
	got := local.Forest()
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID, "local unsynced edit is lost, no merge")
}

func TestHandleChange_IgnoresOtherKeys(t *testing.T) {
	local := newView(nil)
	m := New(local, store.NewCommentStore(store.NewMemory()), nil, "", WithLogger(quietLogger()))

	assert.False(t, m.HandleChange(context.Background(), notify.Change{Key: store.DefaultDraftKey}))
	assert.Equal(t, 0, local.replaced)
}

func TestReconcile_CountDifference(t *testing.T) {
	ctx := context.Background()
	cs := store.NewCommentStore(store.NewMemory())
	require.NoError(t, cs.Save(ctx, comment.Forest{top("a", "A", "1"), top("b", "B", "2")}))
	local := newView(comment.Forest{top("a", "A", "1")})

	var results []Result
	m := New(local, cs, nil, "", WithLogger(quietLogger()), WithObserver(func(r Result) {
		results = append(results, r)
	}))

	assert.True(t, m.Reconcile(ctx))
	assert.Equal(t, 2, local.count())
	assert.Equal(t, []Result{{Reason: ReasonPoll, Replaced: true, Local: 1, Stored: 2}}, results)

	assert.False(t, m.Reconcile(ctx), "already current")
}

func TestReconcile_RemovalDetected(t *testing.T) {
	ctx := context.Background()
	cs := store.NewCommentStore(store.NewMemory())
	require.NoError(t, cs.Clear(ctx))
	local := newView(comment.Forest{top("a", "A", "1")})

	m := New(local, cs, nil, "", WithLogger(quietLogger()))

	assert.True(t, m.Reconcile(ctx))
	assert.Equal(t, 0, local.count())
}

func TestHandleChange_SameContentNotReported(t *testing.T) {
	ctx := context.Background()
	cs := store.NewCommentStore(store.NewMemory())
	f := comment.Forest{top("a", "A", "1")}
	require.NoError(t, cs.Save(ctx, f))
	local := newView(f)

	var results []Result
	m := New(local, cs, nil, "", WithLogger(quietLogger()), WithObserver(func(r Result) {
		results = append(results, r)
	}))

	assert.False(t, m.HandleChange(ctx, notify.Change{Key: store.DefaultCommentsKey}))
	assert.Equal(t, []Result{{Reason: ReasonNotification, Local: 1, Stored: 1}}, results)
}

// The count heuristic misses an edit that keeps the node count.
func TestReconcile_CountMissesSameCountEdit(t *testing.T) {
	ctx := context.Background()
	cs := store.NewCommentStore(store.NewMemory())
	require.NoError(t, cs.Save(ctx, comment.Forest{top("b", "B", "replacement")}))
	local := newView(comment.Forest{top("a", "A", "original")})

	m := New(local, cs, nil, "", WithLogger(quietLogger()))

	assert.False(t, m.Reconcile(ctx))
	assert.Equal(t, "a", local.Forest()[0].ID, "stale content survives the poll")
}

func TestReconcile_DigestCatchesSameCountEdit(t *testing.T) {
	ctx := context.Background()
	cs := store.NewCommentStore(store.NewMemory())
	require.NoError(t, cs.Save(ctx, comment.Forest{top("b", "B", "replacement")}))
	local := newView(comment.Forest{top("a", "A", "original")})

	m := New(local, cs, nil, "", WithLogger(quietLogger()), WithStaleness(DigestStaleness{}))

	assert.True(t, m.Reconcile(ctx))
	assert.Equal(t, "b", local.Forest()[0].ID)
	assert.False(t, m.Reconcile(ctx))
}

func TestParseStaleness(t *testing.T) {
	s, err := ParseStaleness("")
	require.NoError(t, err)
	assert.Equal(t, "count", s.Name())

	s, err = ParseStaleness("digest")
	require.NoError(t, err)
	assert.Equal(t, "digest", s.Name())

	_, err = ParseStaleness("merge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge")
}

func TestNew_Defaults(t *testing.T) {
	m := New(newView(nil), store.NewCommentStore(store.NewMemory()), nil, "")
	assert.Equal(t, DefaultInterval, m.interval)
	assert.Equal(t, "count", m.Staleness().Name())
	assert.Equal(t, 5*time.Second, DefaultInterval)
}

func TestRun_NotificationsAndTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slots := store.NewMemory()
	hub := notify.NewHub()
	otherTab := store.NewCommentStore(slots, store.WithBroadcaster(hub, "tab-b"))
	myStore := store.NewCommentStore(slots, store.WithBroadcaster(hub, "tab-a"))
	local := newView(nil)

	var ticker *testutil.ManualTicker
	results := make(chan Result, 8)
	m := New(local, myStore, hub, "tab-a",
		WithLogger(quietLogger()),
		WithInterval(5*time.Second),
		WithTicker(func(d time.Duration) Ticker {
			ticker = testutil.NewManualTicker(d)
			return ticker
		}),
		WithObserver(func(r Result) { results <- r }),
	)

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	<-m.Ready()
	assert.Equal(t, 5*time.Second, ticker.Interval())

	// Another tab saves: notification path.
	require.NoError(t, otherTab.Save(ctx, comment.Forest{top("b1", "Ben", "hi")}))
	r := <-results
	assert.Equal(t, ReasonNotification, r.Reason)
	assert.Equal(t, 1, local.count())

	// My own save is not delivered back to me.
	require.NoError(t, myStore.Save(ctx, comment.Forest{top("b1", "Ben", "hi"), top("a1", "Ann", "yo")}))

	// A write that bypasses notifications is picked up by the poll.
	_, err := slots.Set(ctx, store.DefaultCommentsKey, `[{"id":"z","author":"Zed","text":"t","timestamp":"2026-10-16T09:00:00.000Z","parentId":null,"replies":[]}]`)
	require.NoError(t, err)
	require.True(t, ticker.Tick(t0))
	r = <-results
	assert.Equal(t, ReasonPoll, r.Reason)
	assert.False(t, r.Replaced, "same count: the poll does not notice")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
	assert.True(t, ticker.Stopped())
	assert.Equal(t, 0, hub.Len())
	assert.Empty(t, results, "own save must not trigger a notification")
}

func TestRun_SurvivesClosedBroadcaster(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs := store.NewCommentStore(store.NewMemory())
	hub := notify.NewHub()
	local := newView(nil)
	var ticker *testutil.ManualTicker
	results := make(chan Result, 1)
	m := New(local, cs, hub, "a",
		WithLogger(quietLogger()),
		WithTicker(func(d time.Duration) Ticker {
			ticker = testutil.NewManualTicker(d)
			return ticker
		}),
		WithObserver(func(r Result) { results <- r }),
	)
	go func() { _ = m.Run(ctx) }()
	<-m.Ready()

	hub.Close()
	require.NoError(t, cs.Save(ctx, comment.Forest{top("a", "A", "1")}))
	require.True(t, ticker.Tick(t0))

	r := <-results
	assert.Equal(t, ReasonPoll, r.Reason)
	assert.True(t, r.Replaced)
}
