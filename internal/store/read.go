package store

import (
	"context"
	"fmt"

	"github.com/roach88/banksim/internal/toolkit"
)

const callColumns = `id, run_id, seq, tool, kind, args, result, is_error, state_digest`

// ReadCalls returns every call of a run ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) if the run has no calls.
func (s *Store) ReadCalls(ctx context.Context, runID string) ([]CallRecord, error) {
	return s.queryCalls(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
}

// ReadWrites returns only the WRITE calls of a run, which are its
// state-changing events, in the same order as ReadCalls.
func (s *Store) ReadWrites(ctx context.Context, runID string) ([]CallRecord, error) {
	return s.queryCalls(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE run_id = ? AND kind = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID, string(toolkit.KindWrite))
}

// ReadCall retrieves a single call by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCall(ctx context.Context, id string) (CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE id = ?
	`, id)
	return scanCall(row)
}

// CountWrites returns the number of WRITE calls recorded for a run.
func (s *Store) CountWrites(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM calls WHERE run_id = ? AND kind = ?
	`, runID, string(toolkit.KindWrite)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count writes: %w", err)
	}
	return n, nil
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, initial_digest, simulator_version, trace_version
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Scenario, &run.InitialDigest, &run.SimulatorVersion, &run.TraceVersion)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Runs returns every recorded run ordered by id.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, initial_digest, simulator_version, trace_version
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Scenario, &run.InitialDigest, &run.SimulatorVersion, &run.TraceVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *Store) queryCalls(ctx context.Context, query string, args ...any) ([]CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []CallRecord{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanCall scans one row from either *sql.Row or *sql.Rows.
// sql.ErrNoRows is returned unwrapped.
func scanCall(row scanner) (CallRecord, error) {
	var call CallRecord
	var kind, argsJSON string

	if err := row.Scan(
		&call.ID, &call.RunID, &call.Seq, &call.Tool, &kind,
		&argsJSON, &call.Result, &call.IsError, &call.StateDigest,
	); err != nil {
		return CallRecord{}, err
	}

	call.Kind = toolkit.Kind(kind)
	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return CallRecord{}, err
	}
	call.Args = args
	return call, nil
}
