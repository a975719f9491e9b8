package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/banksim/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run's timeline
	Writes   bool   // only WRITE calls
}

// TraceCall is one call in a run timeline.
type TraceCall struct {
	Seq         int64          `json:"seq"`
	ID          string         `json:"id"`
	Tool        string         `json:"tool"`
	Kind        string         `json:"kind"`
	Args        map[string]any `json:"args,omitempty"`
	Result      string         `json:"result"`
	IsError     bool           `json:"is_error"`
	StateDigest string         `json:"state_digest"`
}

// TraceStats holds summary statistics for a run.
type TraceStats struct {
	Calls       int    `json:"calls"`
	Writes      int    `json:"writes"`
	Errors      int    `json:"errors"`
	FinalDigest string `json:"final_digest"`
	Changed     bool   `json:"changed"`
}

// TraceRun describes a recorded run.
type TraceRun struct {
	ID               string     `json:"id"`
	Scenario         string     `json:"scenario"`
	InitialDigest    string     `json:"initial_digest"`
	SimulatorVersion string     `json:"simulator_version"`
	TraceVersion     string     `json:"trace_version"`
	Stats            TraceStats `json:"stats"`
}

// TraceResult holds one run's timeline.
type TraceResult struct {
	Run      TraceRun    `json:"run"`
	Timeline []TraceCall `json:"timeline"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded in a trace store.

Without --run, lists every run with its call counts. With --run, shows
the run's calls in order; --writes restricts the timeline to WRITE
calls, the run's state-changing events.

Examples:
  banksim trace --db ./trace.db
  banksim trace --db ./trace.db --run dispute_resolution
  banksim trace --db ./trace.db --run dispute_resolution --writes --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace store (default: BANKSIM_TRACE_DB)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show")
	cmd.Flags().BoolVar(&opts.Writes, "writes", false, "only show WRITE calls")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
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

	if opts.RunID == "" {
		return listRuns(ctx, st, f)
	}

	sum, err := st.GetRunSummary(ctx, opts.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	var calls []store.CallRecord
	if opts.Writes {
		calls, err = st.ReadWrites(ctx, opts.RunID)
	} else {
		calls, err = st.ReadCalls(ctx, opts.RunID)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read calls", err)
	}

	result := TraceResult{
		Run:      traceRun(sum),
		Timeline: make([]TraceCall, 0, len(calls)),
	}
	for _, c := range calls {
		result.Timeline = append(result.Timeline, TraceCall{
			Seq:         c.Seq,
			ID:          c.ID,
			Tool:        c.Tool,
			Kind:        string(c.Kind),
			Args:        c.Args,
			Result:      c.Result,
			IsError:     c.IsError,
			StateDigest: c.StateDigest,
		})
	}

	if f.JSON() {
		return f.Success(result)
	}
	outputTraceText(f.Writer, result, opts.Verbose)
	return nil
}

func listRuns(ctx context.Context, st *store.Store, f *OutputFormatter) error {
	runs, err := st.Runs(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	out := make([]TraceRun, 0, len(runs))
	for _, r := range runs {
		sum, err := st.GetRunSummary(ctx, r.ID)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to summarize run", err)
		}
		out = append(out, traceRun(sum))
	}

	if f.JSON() {
		return f.Success(map[string]any{"runs": out})
	}

	if len(out) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range out {
		fmt.Fprintf(f.Writer, "%s  %-24s  %d call(s), %d write(s), %d error(s)%s\n",
			r.ID, r.Scenario, r.Stats.Calls, r.Stats.Writes, r.Stats.Errors, changedMarker(r.Stats.Changed))
	}
	return nil
}

func traceRun(sum store.RunSummary) TraceRun {
	return TraceRun{
		ID:               sum.Run.ID,
		Scenario:         sum.Run.Scenario,
		InitialDigest:    sum.Run.InitialDigest,
		SimulatorVersion: sum.Run.SimulatorVersion,
		TraceVersion:     sum.Run.TraceVersion,
		Stats: TraceStats{
			Calls:       sum.Calls,
			Writes:      sum.Writes,
			Errors:      sum.Errors,
			FinalDigest: sum.FinalDigest,
			Changed:     sum.Changed,
		},
	}
}

func changedMarker(changed bool) string {
	if changed {
		return ", state changed"
	}
	return ""
}

// outputTraceText outputs a run timeline as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Trace for Run: %s (%s)\n", result.Run.ID, result.Run.Scenario)
	fmt.Fprintf(w, "Simulator %s, trace v%s\n", result.Run.SimulatorVersion, result.Run.TraceVersion)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no calls)")
	}
	for _, c := range result.Timeline {
		marker := ""
		if c.IsError {
			marker = " !"
		}
		fmt.Fprintf(w, "  [%d] %-5s %s%s\n", c.Seq, c.Kind, c.Tool, marker)
		if verbose {
			if len(c.Args) > 0 {
				fmt.Fprintf(w, "       Args: %s\n", formatArgs(c.Args))
			}
			fmt.Fprintf(w, "       ID: %s\n", truncateID(c.ID))
			fmt.Fprintf(w, "       State: %s\n", truncateID(c.StateDigest))
		}
		for _, line := range strings.Split(c.Result, "\n") {
			fmt.Fprintf(w, "       %s\n", line)
		}
	}
	fmt.Fprintln(w)

	s := result.Run.Stats
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Calls:  %d\n", s.Calls)
	fmt.Fprintf(w, "  Writes: %d\n", s.Writes)
	fmt.Fprintf(w, "  Errors: %d\n", s.Errors)
	fmt.Fprintf(w, "  State:  %s -> %s%s\n", truncateID(result.Run.InitialDigest), truncateID(s.FinalDigest), changedMarker(s.Changed))
}

// formatArgs formats a map of args for display.
// Uses sorted keys to ensure deterministic output.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
