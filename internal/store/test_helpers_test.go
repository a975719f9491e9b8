package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/banksim/internal/ir"
	"github.com/roach88/banksim/internal/toolkit"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun writes a run with minimal required fields.
func createTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run := Run{
		ID:               id,
		Scenario:         "scenario-" + id,
		InitialDigest:    "digest-0",
		SimulatorVersion: ir.SimulatorVersion,
		TraceVersion:     ir.TraceVersion,
	}
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}

// createTestCall builds a call record with a content-addressed id.
func createTestCall(runID string, seq int64, tool string, kind toolkit.Kind, args map[string]any) CallRecord {
	return CallRecord{
		ID:          ir.MustCallID(runID, tool, args, seq),
		RunID:       runID,
		Seq:         seq,
		Tool:        tool,
		Kind:        kind,
		Args:        args,
		Result:      "ok",
		StateDigest: "digest-0",
	}
}
