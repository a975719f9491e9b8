package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/banksim/internal/bankdb"
	"github.com/roach88/banksim/internal/harness"
	"github.com/roach88/banksim/internal/ir"
	"github.com/roach88/banksim/internal/store"
	"github.com/roach88/banksim/internal/toolkit"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	State     string // state file; empty uses the defaults
	Args      string // tool arguments as a JSON object
	ReadOnly  bool
	ShowState bool
	Database  string // trace store; defaults to BANKSIM_TRACE_DB
	RunID     string
}

// InvokeResult is the JSON payload of the invoke command.
type InvokeResult struct {
	Call  toolkit.Result `json:"call"`
	State map[string]any `json:"state,omitempty"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <tool>",
		Short: "Invoke one tool against a state file",
		Long: `Invoke a single tool against a freshly loaded container and print
its text result.

The state file is loaded the way a scenario's initial state is: an
invalid file falls back to the defaults with a warning. Use
'banksim validate' to check a file strictly.

When a trace store is configured (--db or BANKSIM_TRACE_DB) the call is
recorded under a new run.

Examples:
  banksim invoke get_account_balances --state ./state.yaml
  banksim invoke transfer_funds --state ./state.yaml \
      --args '{"from_account_id":"A2","to_account_id":"A1","amount":"25.00"}' --show-state
  banksim invoke block_card --args '{"card_id":"C1"}' --read-only`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeTool(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "state file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "tool arguments as JSON")
	cmd.Flags().BoolVar(&opts.ReadOnly, "read-only", false, "reject WRITE tools")
	cmd.Flags().BoolVar(&opts.ShowState, "show-state", false, "print the state after the call")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the call in this SQLite trace store")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "run id for the recorded call (default: new UUIDv7)")

	return cmd
}

func invokeTool(ctx context.Context, opts *InvokeOptions, tool string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	args, err := parseArgsJSON(opts.Args)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParse, "invalid --args JSON", err)
	}

	db, err := openState(opts.State, opts.Logger, f)
	if err != nil {
		return err
	}

	tkOpts := []toolkit.Option{toolkit.WithLogger(opts.Logger)}
	if opts.ReadOnly {
		tkOpts = append(tkOpts, toolkit.WithReadOnly())
	}
	tk := toolkit.New(db, tkOpts...)

	runID := opts.RunID
	if runID == "" {
		runID = harness.UUIDRunID{}.Generate()
	}
	const seq = 1
	callID, err := ir.CallID(runID, tool, args, seq)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParse, "failed to compute call id", err)
	}

	rec, err := openRecorder(ctx, opts, db, runID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open trace store", err)
	}
	defer rec.close()

	res, callErr := tk.Execute(ctx, toolkit.Call{ID: callID, Name: tool, Arguments: args})
	f.VerboseLog("Call %s (%s) in run %s", callID, res.Kind, runID)

	if err := rec.record(ctx, seq, tool, args, res, callErr); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to record call", err)
	}

	if callErr != nil {
		if errors.Is(callErr, toolkit.ErrToolUnregistered) || errors.Is(callErr, toolkit.ErrToolNameEmpty) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("unknown tool %q", tool), callErr)
		}
		return f.Fail(ExitFailure, ErrCodeToolFailed, fmt.Sprintf("%s failed", tool), callErr)
	}

	result := InvokeResult{Call: res}
	if opts.ShowState {
		snapshot, err := db.Snapshot()
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeGeneric, "failed to snapshot state", err)
		}
		result.State = snapshot
	}

	if f.JSON() {
		return f.Encode(CLIResponse{Status: "ok", Data: result, RunID: runID})
	}

	fmt.Fprintln(f.Writer, res.Content)
	if result.State != nil {
		out, err := yaml.Marshal(result.State)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeGeneric, "failed to render state", err)
		}
		fmt.Fprintln(f.Writer)
		fmt.Fprint(f.Writer, string(out))
	}
	return nil
}

// parseArgsJSON decodes a JSON object, keeping numbers exact.
func parseArgsJSON(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	return args, nil
}

// recorder writes one invocation to the trace store. The zero value
// records nothing.
type recorder struct {
	st    *store.Store
	db    *bankdb.DB
	runID string
}

func openRecorder(ctx context.Context, opts *InvokeOptions, db *bankdb.DB, runID string) (*recorder, error) {
	path := opts.Database
	if path == "" {
		path = opts.Config.TraceDB
	}
	if path == "" {
		return &recorder{}, nil
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	digest, err := db.Digest()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	err = st.WriteRun(ctx, store.Run{
		ID:               runID,
		Scenario:         "invoke",
		InitialDigest:    digest,
		SimulatorVersion: ir.SimulatorVersion,
		TraceVersion:     ir.TraceVersion,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &recorder{st: st, db: db, runID: runID}, nil
}

func (r *recorder) record(ctx context.Context, seq int64, tool string, args map[string]any, res toolkit.Result, callErr error) error {
	// Unregistered tools have no kind and are not recorded.
	if r.st == nil || !res.Kind.Valid() {
		return nil
	}
	digest, err := r.db.Digest()
	if err != nil {
		return err
	}
	return r.st.WriteCall(ctx, store.CallRecord{
		ID:          res.CallID,
		RunID:       r.runID,
		Seq:         seq,
		Tool:        tool,
		Kind:        res.Kind,
		Args:        args,
		Result:      res.Content,
		IsError:     callErr != nil,
		StateDigest: digest,
	})
}

func (r *recorder) close() {
	if r.st != nil {
		_ = r.st.Close()
	}
}
