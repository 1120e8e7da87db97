package harness

import (
	"github.com/roach88/threadboard/internal/board"
	"github.com/roach88/threadboard/internal/comment"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Context string `json:"context,omitempty"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"`

	// ID is the id given to a new comment, if any.
	ID string `json:"id,omitempty"`

	// Local is the context's node count after the step (0 without a context).
	Local int `json:"local"`

	// Stored is the store's node count after the step.
	Stored int `json:"stored"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step met its expect and every assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Stored is the final store content.
	Stored comment.Forest `json:"stored"`

	// Local is each context's final forest.
	Local map[string]comment.Forest `json:"local"`

	// Events is every notification each context emitted, in order.
	Events map[string][]board.Event `json:"events"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Local:  make(map[string]comment.Forest),
		Events: make(map[string][]board.Event),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
