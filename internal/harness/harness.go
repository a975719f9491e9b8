package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/banksim/internal/bankdb"
	"github.com/roach88/banksim/internal/ir"
	"github.com/roach88/banksim/internal/store"
	"github.com/roach88/banksim/internal/testutil"
	"github.com/roach88/banksim/internal/toolkit"
)

// RunIDGenerator produces run identifiers for scenarios that do not pin
// their own.
type RunIDGenerator interface {
	Generate() string
}

// UUIDRunID generates time-ordered UUIDv7 run ids. Use it when recording
// real runs; tests use a fixed id so golden traces stay stable.
type UUIDRunID struct{}

// Generate returns a new UUIDv7 string.
func (UUIDRunID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Option configures a harness run.
type Option func(*Harness)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithStore records the run and every call in st.
func WithStore(st *store.Store) Option {
	return func(h *Harness) {
		h.store = st
	}
}

// WithRunIDGenerator sets the generator used when a scenario has no
// run_id.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(h *Harness) {
		if gen != nil {
			h.runIDs = gen
		}
	}
}

// Harness executes one scenario with a deterministic logical clock.
type Harness struct {
	store  *store.Store
	clock  *testutil.SeqClock
	runIDs RunIDGenerator
	logger *slog.Logger

	runID string
	db    *bankdb.DB
	tk    *toolkit.Toolkit
}

// Run executes a scenario and returns the result.
//
// Each scenario gets its own container and toolkit. Execution flow:
//  1. Load initial_state (fail-soft: invalid configuration falls back to
//     defaults with a warning)
//  2. Apply updates in order; a rejected update fails the scenario and
//     the flow is skipped
//  3. Execute flow steps, recording a trace and checking expectations;
//     READ calls are verified not to change the state digest
//  4. Evaluate assertions against the trace and final state
//
// The returned error is reserved for infrastructure failures such as a
// trace store write. Scenario failures are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewSeqClock(),
		runIDs: testutil.NewFixedRunID(""),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.runID = scenario.RunID
	if h.runID == "" {
		h.runID = h.runIDs.Generate()
	}
	h.logger = h.logger.With("scenario", scenario.Name, "run_id", h.runID)

	result := NewResult()
	result.RunID = h.runID

	db, err := PrepareState(scenario, h.logger)
	h.db = db
	if err != nil {
		result.AddError(err.Error())
		return h.finish(result)
	}
	h.tk = toolkit.New(h.db, toolkit.WithLogger(h.logger))

	initialDigest, err := h.db.Digest()
	if err != nil {
		return nil, fmt.Errorf("digest initial state: %w", err)
	}
	if h.store != nil {
		err := h.store.WriteRun(ctx, store.Run{
			ID:               h.runID,
			Scenario:         scenario.Name,
			InitialDigest:    initialDigest,
			SimulatorVersion: ir.SimulatorVersion,
			TraceVersion:     ir.TraceVersion,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := h.executeFlow(ctx, scenario.Flow, initialDigest, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	snapshot, err := h.db.Snapshot()
	if err != nil {
		return nil, err
	}
	actx := &AssertionContext{Toolkit: h.tk, State: snapshot}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return h.finish(result)
}

// PrepareState builds the container a scenario's flow starts from: the
// initial state loaded fail-soft, then every update in order. When an
// update is rejected the returned container holds the updates before it.
func PrepareState(scenario *Scenario, logger *slog.Logger) (*bankdb.DB, error) {
	db := bankdb.Load(scenario.InitialState, logger)
	for i, u := range scenario.Updates {
		if err := db.ApplyPartialUpdate(u); err != nil {
			return db, fmt.Errorf("updates[%d]: %w", i, err)
		}
	}
	return db, nil
}

func (h *Harness) finish(result *Result) (*Result, error) {
	snapshot, err := h.db.Snapshot()
	if err != nil {
		return nil, err
	}
	result.State = snapshot
	h.logger.Info("scenario finished", "pass", result.Pass, "calls", len(result.Trace), "errors", len(result.Errors))
	return result, nil
}

// executeFlow runs every step in order. A failed step is recorded and
// the flow continues, so later steps still appear in the trace.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, digest string, result *Result) error {
	for i, step := range flow {
		seq := h.clock.Next()

		callID, err := ir.CallID(h.runID, step.Invoke, step.Args, seq)
		if err != nil {
			return fmt.Errorf("flow step %d: failed to compute call ID: %w", i, err)
		}

		res, callErr := h.tk.Execute(ctx, toolkit.Call{ID: callID, Name: step.Invoke, Arguments: step.Args})

		after, err := h.db.Digest()
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		event := TraceEvent{
			Seq:     seq,
			CallID:  callID,
			Tool:    step.Invoke,
			Kind:    res.Kind,
			Args:    step.Args,
			Result:  res.Content,
			Changed: after != digest,
		}
		if callErr != nil {
			event.IsError = true
			event.Error = errorClass(callErr)
			event.Result = callErr.Error()
		}
		result.AddTrace(event)

		if event.Kind == toolkit.KindRead && event.Changed {
			result.AddError(fmt.Sprintf("flow[%d]: READ tool %s changed state", i, step.Invoke))
		}
		for _, msg := range checkExpect(step.Expect, event) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}

		if h.store != nil && event.Kind.Valid() {
			err := h.store.WriteCall(ctx, store.CallRecord{
				ID:          callID,
				RunID:       h.runID,
				Seq:         seq,
				Tool:        step.Invoke,
				Kind:        event.Kind,
				Args:        step.Args,
				Result:      event.Result,
				IsError:     event.IsError,
				StateDigest: after,
			})
			if err != nil {
				return fmt.Errorf("flow step %d: %w", i, err)
			}
		}

		h.logger.Debug("flow step completed",
			"step", i,
			"tool", step.Invoke,
			"kind", event.Kind,
			"call_id", callID,
			"is_error", event.IsError,
		)
		digest = after
	}
	return nil
}

// checkExpect compares one call's outcome with its expect clause.
// Without a clause the call must not fail.
func checkExpect(expect *ExpectClause, event TraceEvent) []string {
	if expect == nil {
		if event.IsError {
			return []string{fmt.Sprintf("unexpected %s error: %s", event.Error, event.Result)}
		}
		return nil
	}

	var msgs []string
	switch {
	case expect.Error == "" && event.IsError:
		msgs = append(msgs, fmt.Sprintf("unexpected %s error: %s", event.Error, event.Result))
	case expect.Error != "" && !event.IsError:
		msgs = append(msgs, fmt.Sprintf("expected %s error, got result %q", expect.Error, event.Result))
	case expect.Error != "" && expect.Error != event.Error:
		msgs = append(msgs, fmt.Sprintf("expected %s error, got %s error: %s", expect.Error, event.Error, event.Result))
	}

	if expect.Equals != nil && event.Result != *expect.Equals {
		msgs = append(msgs, fmt.Sprintf("expected result %q, got %q", *expect.Equals, event.Result))
	}
	if expect.Contains != "" && !strings.Contains(event.Result, expect.Contains) {
		msgs = append(msgs, fmt.Sprintf("expected result containing %q, got %q", expect.Contains, event.Result))
	}
	return msgs
}

// errorClass maps a call error onto the scenario error vocabulary.
func errorClass(err error) string {
	switch {
	case errors.Is(err, bankdb.ErrValidation):
		return ErrorValidation
	case errors.Is(err, toolkit.ErrInvalidArguments):
		return ErrorInvalidArguments
	case errors.Is(err, toolkit.ErrToolUnregistered), errors.Is(err, toolkit.ErrToolNameEmpty):
		return ErrorUnregistered
	case errors.Is(err, toolkit.ErrWriteDenied):
		return ErrorWriteDenied
	default:
		return ErrorOther
	}
}
