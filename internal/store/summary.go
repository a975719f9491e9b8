package store

import (
	"context"
	"fmt"

	"github.com/roach88/banksim/internal/toolkit"
)

// RunSummary condenses a run's trace.
type RunSummary struct {
	Run         Run
	Calls       int
	Writes      int
	Errors      int
	LastSeq     int64
	FinalDigest string // digest after the last call, or the initial digest
	Changed     bool   // FinalDigest differs from the initial digest
}

// GetRunSummary reads a run and its calls and summarizes them.
func (s *Store) GetRunSummary(ctx context.Context, runID string) (RunSummary, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("get run summary: %w", err)
	}

	calls, err := s.ReadCalls(ctx, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("get run summary: %w", err)
	}

	sum := RunSummary{
		Run:         run,
		Calls:       len(calls),
		FinalDigest: run.InitialDigest,
	}
	for _, c := range calls {
		if c.Kind == toolkit.KindWrite {
			sum.Writes++
		}
		if c.IsError {
			sum.Errors++
		}
		if c.Seq > sum.LastSeq {
			sum.LastSeq = c.Seq
			sum.FinalDigest = c.StateDigest
		}
	}
	sum.Changed = sum.FinalDigest != run.InitialDigest
	return sum, nil
}
