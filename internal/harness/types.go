package harness

import "github.com/roach88/banksim/internal/toolkit"

// TraceEvent records one tool call.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	CallID  string         `json:"call_id"`
	Tool    string         `json:"tool"`
	Kind    toolkit.Kind   `json:"kind,omitempty"` // empty for unregistered tools
	Args    map[string]any `json:"args,omitempty"`
	Result  string         `json:"result"`
	IsError bool           `json:"is_error"`
	Error   string         `json:"error,omitempty"` // error class when IsError
	Changed bool           `json:"changed"`         // state digest differs after the call
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID identifies the run in the trace store.
	RunID string `json:"run_id"`

	// Trace contains every tool call in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final container snapshot.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a call to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}

// WriteCount returns the number of WRITE calls in the trace.
func (r *Result) WriteCount() int {
	n := 0
	for _, e := range r.Trace {
		if e.Kind == toolkit.KindWrite {
			n++
		}
	}
	return n
}
