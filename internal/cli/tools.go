package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/banksim/internal/bankdb"
	"github.com/roach88/banksim/internal/toolkit"
)

// ToolsOptions holds flags for the tools command.
type ToolsOptions struct {
	*RootOptions
	Kind       string // optional READ or WRITE filter
	Assertions bool   // also list assertion predicates
}

// ToolsResult is the JSON payload of the tools command.
type ToolsResult struct {
	Tools      []toolkit.Definition `json:"tools"`
	Assertions []toolkit.Definition `json:"assertions,omitempty"`
}

// NewToolsCommand creates the tools command.
func NewToolsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToolsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the banking tools and their classification",
		Long: `List every agent-callable tool with its READ/WRITE classification.

READ tools only observe state. WRITE tools may change it; a WRITE that
would break an invariant is rejected and leaves the state untouched.

Examples:
  banksim tools
  banksim tools --kind WRITE -v
  banksim tools --assertions --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTools(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only list tools of this kind (READ|WRITE)")
	cmd.Flags().BoolVar(&opts.Assertions, "assertions", false, "also list assertion predicates")

	return cmd
}

func runTools(opts *ToolsOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	kind := toolkit.Kind(strings.ToUpper(opts.Kind))
	if opts.Kind != "" && !kind.Valid() {
		return f.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("invalid kind %q: must be READ or WRITE", opts.Kind), nil)
	}

	tk := toolkit.New(bankdb.New())

	result := ToolsResult{Tools: []toolkit.Definition{}}
	for _, def := range tk.Tools() {
		if kind == "" || def.Kind == kind {
			result.Tools = append(result.Tools, def)
		}
	}
	if opts.Assertions {
		result.Assertions = tk.Assertions()
	}

	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	for _, def := range result.Tools {
		fmt.Fprintf(w, "%-5s  %-22s  %s\n", def.Kind, def.Name, def.Description)
		if opts.Verbose {
			writeParams(w, def.Params)
		}
	}
	if opts.Assertions {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Assertions:")
		for _, def := range result.Assertions {
			fmt.Fprintf(w, "  %-27s  %s\n", def.Name, def.Description)
			if opts.Verbose {
				writeParams(w, def.Params)
			}
		}
	}
	return nil
}

func writeParams(w io.Writer, params []toolkit.Param) {
	for _, p := range params {
		req := "optional"
		if p.Required {
			req = "required"
		}
		line := fmt.Sprintf("         %s (%s, %s)", p.Name, p.Type, req)
		if p.Description != "" {
			line += ": " + p.Description
		}
		fmt.Fprintln(w, line)
	}
}
