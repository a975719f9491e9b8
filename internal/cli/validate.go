package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/banksim/internal/bankdb"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Path    string         `json:"path,omitempty"`    // offending field when invalid
	Message string         `json:"message,omitempty"` // violation when invalid
	Counts  map[string]int `json:"counts,omitempty"`  // records per collection when valid
	Digest  string         `json:"digest,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <state-file>",
		Short: "Validate a banking state file",
		Long: `Validate a YAML or JSON banking configuration without running anything.

Checks the schema (unknown fields, enum values, types) and every record
invariant: balances, overdraft, credit limits, card and dispute
references. Unlike scenario loading, an invalid file is reported instead
of replaced by the defaults.

Exit codes:
  0 - State is valid
  1 - State violates the schema or an invariant
  2 - Command error (file missing or unparseable)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	raw, err := LoadStateFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("state file not found: %s", path), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeParse, "failed to load state file", err)
	}
	f.VerboseLog("Loaded %s (%d top-level section(s))", path, len(raw))

	db, err := bankdb.LoadStrict(raw)
	if err != nil {
		return outputValidationFailure(f, err)
	}

	digest, err := db.Digest()
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to digest state", err)
	}

	result := ValidationResult{
		Valid: true,
		Counts: map[string]int{
			"accounts":     len(db.Accounts),
			"cards":        len(db.Cards),
			"transactions": len(db.Transactions),
			"disputes":     len(db.Disputes),
		},
		Digest: digest,
	}

	if f.JSON() {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "✓ State valid: %d account(s), %d card(s), %d transaction(s), %d dispute(s)\n",
		result.Counts["accounts"], result.Counts["cards"], result.Counts["transactions"], result.Counts["disputes"])
	f.VerboseLog("Digest: %s", digest)
	return nil
}

// outputValidationFailure reports an invalid state. Failures are exit
// code 1, not command errors.
func outputValidationFailure(f *OutputFormatter, err error) error {
	result := ValidationResult{Valid: false, Message: err.Error()}
	var verr *bankdb.ValidationError
	if errors.As(err, &verr) {
		result.Path = verr.Path
		result.Message = verr.Message
	}

	if f.JSON() {
		if encErr := f.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeInvalidState,
				Message: err.Error(),
			},
		}); encErr != nil {
			return encErr
		}
		return WrapExitError(ExitFailure, "invalid state", err)
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	if result.Path != "" {
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n", ErrCodeInvalidState, result.Path, result.Message)
	} else {
		fmt.Fprintf(f.Writer, "  %s: %s\n", ErrCodeInvalidState, result.Message)
	}
	return WrapExitError(ExitFailure, "invalid state", err)
}
