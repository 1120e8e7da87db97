package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/threadboard/internal/board"
	"github.com/roach88/threadboard/internal/ident"
	"github.com/roach88/threadboard/internal/notify"
	"github.com/roach88/threadboard/internal/store"
	"github.com/roach88/threadboard/internal/syncmon"
	"github.com/roach88/threadboard/internal/testutil"
	"github.com/roach88/threadboard/internal/tree"
)

// Epoch is the clock reading at the start of every scenario.
var Epoch = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// errWritesFailed is what the store reports after a fail_writes step.
var errWritesFailed = errors.New("writes disabled by scenario")

// tab is one board context under test.
type tab struct {
	name  string
	svc   *board.Service
	store *store.CommentStore
	mon   *syncmon.Monitor
	sub   *notify.Subscription
}

// Harness executes one scenario.
type Harness struct {
	slots   *store.Memory
	hub     *notify.Hub
	clock   *testutil.ManualClock
	ids     ident.Generator
	tabs    map[string]*tab
	shared  *store.CommentStore
	logger  *slog.Logger
	result  *Result
	ordered []string
}

// sequentialIDs yields c1, c2, ...
type sequentialIDs struct {
	n int
}

func (g *sequentialIDs) Generate() string {
	g.n++
	return fmt.Sprintf("c%d", g.n)
}

// Run executes a scenario and returns the result.
//
// Each scenario runs over a fresh in-memory store for isolation.
// Execution errors (not assertion failures) are returned as error.
func Run(scenario *Scenario) (*Result, error) {
	staleness, err := syncmon.ParseStaleness(scenario.Staleness)
	if err != nil {
		return nil, err
	}

	var ids ident.Generator = &sequentialIDs{}
	if len(scenario.IDs) > 0 {
		ids = ident.NewFixedGenerator(scenario.IDs...)
	}

	h := &Harness{
		slots:  store.NewMemory(store.WithQuota(scenario.Quota)),
		hub:    notify.NewHub(),
		clock:  testutil.NewManualClock(Epoch),
		ids:    ids,
		tabs:   make(map[string]*tab),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result: NewResult(),
	}
	defer h.hub.Close()
	h.shared = store.NewCommentStore(h.slots, store.WithLogger(h.logger))

	ctx := context.Background()
	for _, name := range scenario.Contexts {
		h.open(ctx, name, staleness)
	}

	for i, step := range scenario.Steps {
		outcome, id, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		h.collectEvents()

		ev := TraceEvent{
			Context: step.Context,
			Op:      step.Op,
			Outcome: outcome,
			ID:      id,
			Stored:  tree.CountForest(h.shared.Load(ctx)),
		}
		if t, ok := h.tabs[step.Context]; ok {
			ev.Local = tree.CountForest(t.svc.Forest())
		}
		h.result.addTrace(ev)

		if step.Expect != "" && step.Expect != outcome {
			h.result.AddError(fmt.Sprintf("steps[%d] %s %s: expected %s, got %s",
				i, step.Context, step.Op, step.Expect, outcome))
		}
	}

	h.result.Stored = h.shared.Load(ctx)
	for _, name := range h.ordered {
		h.result.Local[name] = h.tabs[name].svc.Forest()
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func (h *Harness) open(ctx context.Context, name string, staleness syncmon.Staleness) {
	cs := store.NewCommentStore(h.slots,
		store.WithBroadcaster(h.hub, name),
		store.WithLogger(h.logger),
	)
	svc := board.New(ctx, cs,
		board.WithIDGenerator(h.ids),
		board.WithClock(h.clock.Now),
		board.WithLogger(h.logger),
	)
	h.tabs[name] = &tab{
		name:  name,
		svc:   svc,
		store: cs,
		mon:   syncmon.New(svc, cs, h.hub, name, syncmon.WithStaleness(staleness), syncmon.WithLogger(h.logger)),
		sub:   h.hub.Subscribe(cs.Key(), name),
	}
	h.ordered = append(h.ordered, name)
	h.result.Events[name] = []board.Event{}
}

// execute runs one step and returns its outcome and any new comment id.
func (h *Harness) execute(ctx context.Context, step Step) (string, string, error) {
	t := h.tabs[step.Context]

	switch step.Op {
	case OpPost, OpReply:
		c, err := t.svc.Submit(ctx, board.Submission{
			Author:   step.Author,
			Text:     step.Text,
			ParentID: step.Parent,
		})
		if err != nil {
			return outcomeOf(err), "", nil
		}
		return OutcomeOK, c.ID, nil

	case OpClear:
		if err := t.svc.ClearAll(ctx); err != nil {
			return outcomeOf(err), "", nil
		}
		return OutcomeOK, "", nil

	case OpRefresh:
		t.svc.Refresh(ctx)
		return OutcomeOK, "", nil

	case OpDeliver:
		outcome := OutcomeNone
		for {
			select {
			case c := <-t.sub.C:
				if t.mon.HandleChange(ctx, c) {
					outcome = OutcomeReplaced
				}
			default:
				return outcome, "", nil
			}
		}

	case OpReconcile:
		if t.mon.Reconcile(ctx) {
			return OutcomeReplaced, "", nil
		}
		return OutcomeUnchanged, "", nil

	case OpAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return "", "", err
		}
		h.clock.Advance(d)
		return OutcomeOK, "", nil

	case OpFailWrites:
		h.slots.FailWrites(errWritesFailed)
		return OutcomeOK, "", nil

	case OpRestoreWrites:
		h.slots.FailWrites(nil)
		return OutcomeOK, "", nil
	}
	return "", "", fmt.Errorf("unknown op %q", step.Op)
}

// outcomeOf maps a failed operation to its board error code.
func outcomeOf(err error) string {
	if code := board.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}

func (h *Harness) collectEvents() {
	for _, name := range h.ordered {
		h.result.Events[name] = append(h.result.Events[name], drain(h.tabs[name].svc)...)
	}
}

func drain(svc *board.Service) []board.Event {
	var out []board.Event
	for {
		select {
		case ev := <-svc.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}
