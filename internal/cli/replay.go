package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/banksim/internal/bankdb"
	"github.com/roach88/banksim/internal/harness"
	"github.com/roach88/banksim/internal/ir"
	"github.com/roach88/banksim/internal/store"
	"github.com/roach88/banksim/internal/toolkit"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string
	State    string // state file the run started from
	Scenario string // or the scenario file it came from
}

// ReplayMismatch is one difference between a recorded and a replayed call.
type ReplayMismatch struct {
	Seq      int64  `json:"seq"`
	Tool     string `json:"tool"`
	Field    string `json:"field"` // call_id, result, is_error or state_digest
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// ReplayResult holds the outcome of replaying one run.
type ReplayResult struct {
	RunID         string           `json:"run_id"`
	Calls         int              `json:"calls"`
	Deterministic bool             `json:"deterministic"`
	Mismatches    []ReplayMismatch `json:"mismatches,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute a recorded run and verify determinism",
		Long: `Re-execute every recorded call of a run against the state it started
from, and compare call ids, results, error flags and state digests with
the recording.

The starting state comes from --scenario (initial_state plus updates) or
--state. Its digest must match the run's recorded initial digest.

Exit codes:
  0 - Replay matches the recording
  1 - Replay diverged, or the starting state does not match
  2 - Command error (database or run not found, etc.)

Examples:
  banksim replay --db ./trace.db --run dispute_resolution --scenario ./scenarios/dispute_resolution.yaml
  banksim replay --db ./trace.db --run 0193... --state ./state.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace store (default: BANKSIM_TRACE_DB)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to replay (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.State, "state", "", "state file the run started from")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario file the run came from")
	cmd.MarkFlagsMutuallyExclusive("state", "scenario")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	path := opts.Database
	if path == "" {
		path = opts.Config.TraceDB
	}
	if path == "" {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "no trace store: pass --db or set BANKSIM_TRACE_DB", nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}
	calls, err := st.ReadCalls(ctx, run.ID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read calls", err)
	}

	db, err := replayStart(opts, f)
	if err != nil {
		return err
	}

	digest, err := db.Digest()
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to digest state", err)
	}
	if digest != run.InitialDigest {
		return f.Fail(ExitFailure, ErrCodeReplay, "starting state does not match the run's initial digest",
			fmt.Errorf("recorded %s, got %s", run.InitialDigest, digest))
	}

	result, err := replayCalls(ctx, toolkit.New(db, toolkit.WithLogger(opts.Logger)), db, run.ID, calls)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "replay failed", err)
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result, RunID: run.ID}
		if !result.Deterministic {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeReplay, Message: "replay diverged from the recording"}
		}
		if err := f.Encode(resp); err != nil {
			return err
		}
	} else {
		outputReplayText(f, result)
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay diverged from the recording")
	}
	return nil
}

// replayStart builds the container the run started from.
func replayStart(opts *ReplayOptions, f *OutputFormatter) (*bankdb.DB, error) {
	if opts.Scenario == "" {
		return openState(opts.State, opts.Logger, f)
	}

	scenario, err := harness.LoadScenario(opts.Scenario)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeParse, "failed to load scenario", err)
	}
	db, err := harness.PrepareState(scenario, opts.Logger)
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeInvalidState, "scenario update rejected", err)
	}
	return db, nil
}

// replayCalls re-executes recorded calls in order and compares each with
// its recording.
func replayCalls(ctx context.Context, tk *toolkit.Toolkit, db *bankdb.DB, runID string, calls []store.CallRecord) (ReplayResult, error) {
	result := ReplayResult{
		RunID:         runID,
		Calls:         len(calls),
		Deterministic: true,
	}

	for _, c := range calls {
		callID, err := ir.CallID(runID, c.Tool, c.Args, c.Seq)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("seq %d: %w", c.Seq, err)
		}

		res, callErr := tk.Execute(ctx, toolkit.Call{ID: callID, Name: c.Tool, Arguments: c.Args})
		content := res.Content
		if callErr != nil {
			content = callErr.Error()
		}

		digest, err := db.Digest()
		if err != nil {
			return ReplayResult{}, fmt.Errorf("seq %d: %w", c.Seq, err)
		}

		check := func(field, recorded, replayed string) {
			if recorded != replayed {
				result.Deterministic = false
				result.Mismatches = append(result.Mismatches, ReplayMismatch{
					Seq: c.Seq, Tool: c.Tool, Field: field, Recorded: recorded, Replayed: replayed,
				})
			}
		}
		check("call_id", c.ID, callID)
		check("result", c.Result, content)
		check("is_error", fmt.Sprint(c.IsError), fmt.Sprint(callErr != nil))
		check("state_digest", c.StateDigest, digest)
	}

	return result, nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult) {
	w := f.Writer

	fmt.Fprintf(w, "Replay of run %s: %d call(s)\n", result.RunID, result.Calls)
	for _, m := range result.Mismatches {
		fmt.Fprintf(w, "  [%d] %s: %s differs\n", m.Seq, m.Tool, m.Field)
		if f.Verbose {
			fmt.Fprintf(w, "       recorded: %s\n", m.Recorded)
			fmt.Fprintf(w, "       replayed: %s\n", m.Replayed)
		}
	}

	if result.Deterministic {
		fmt.Fprintln(w, "✓ Replay matches the recording")
		return
	}
	fmt.Fprintln(w, "✗ Replay diverged from the recording")
}
