package store

import (
	"context"
	"fmt"

	"github.com/roach88/banksim/internal/toolkit"
)

// Run identifies one scenario execution.
type Run struct {
	ID               string
	Scenario         string
	InitialDigest    string // state digest after initial_state and updates
	SimulatorVersion string
	TraceVersion     string
}

// CallRecord is one traced tool call.
type CallRecord struct {
	ID          string
	RunID       string
	Seq         int64
	Tool        string
	Kind        toolkit.Kind
	Args        map[string]any
	Result      string // tool text, or the error message when IsError
	IsError     bool
	StateDigest string // digest after the call
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, initial_digest, simulator_version, trace_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.InitialDigest,
		run.SimulatorVersion,
		run.TraceVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteCall inserts a call record.
// Uses ON CONFLICT DO NOTHING for idempotency - a duplicate id, or a
// second call at the same (run_id, seq), is silently ignored.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteCall(ctx context.Context, call CallRecord) error {
	if !call.Kind.Valid() {
		return fmt.Errorf("write call: invalid kind %q", call.Kind)
	}

	argsJSON, err := marshalArgs(call.Args)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calls
		(id, run_id, seq, tool, kind, args, result, is_error, state_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		call.ID,
		call.RunID,
		call.Seq,
		call.Tool,
		string(call.Kind),
		argsJSON,
		call.Result,
		call.IsError,
		call.StateDigest,
	)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}
	return nil
}
