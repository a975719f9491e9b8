package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one banking conversation to replay against a fresh
// container: an initial configuration, optional partial updates, a flow
// of tool calls with expected results, and final assertions.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// InitialState is the raw configuration the container is loaded
	// from. Loading is fail-soft: an invalid configuration is logged and
	// replaced by the defaults.
	InitialState map[string]any `yaml:"initial_state,omitempty"`

	// Updates are partial updates applied in order after loading. Any
	// rejected update fails the scenario before the flow runs.
	Updates []map[string]any `yaml:"updates,omitempty"`

	// Flow is the sequence of tool calls.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunID pins the run identifier. If empty the harness's run id
	// generator is used.
	RunID string `yaml:"run_id,omitempty"`
}

// FlowStep is one tool call.
type FlowStep struct {
	// Invoke is the tool name.
	Invoke string `yaml:"invoke"`

	// Args are the tool arguments. Omit for tools without parameters.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect validates the call's outcome. If nil, the call must simply
	// not fail.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of one call.
type ExpectClause struct {
	// Contains requires the result text to contain this substring.
	Contains string `yaml:"contains,omitempty"`

	// Equals requires the result text to match exactly.
	Equals *string `yaml:"equals,omitempty"`

	// Error names the expected failure class. Empty means the call must
	// succeed.
	Error string `yaml:"error,omitempty"`
}

// Error classes reported for failed calls.
const (
	ErrorValidation       = "validation"
	ErrorInvalidArguments = "invalid_arguments"
	ErrorUnregistered     = "unregistered"
	ErrorWriteDenied      = "write_denied"
	ErrorOther            = "error"
)

var errorClasses = []string{
	ErrorValidation, ErrorInvalidArguments, ErrorUnregistered, ErrorWriteDenied, ErrorOther,
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "check": evaluate a toolkit assertion predicate
	// - "trace_contains": a tool was called with matching args
	// - "trace_order": tools were called in this order
	// - "trace_count": a tool was called exactly Count times
	// - "write_count": exactly Count WRITE calls were made
	// - "final_state": the value at Path equals Equals
	Type string `yaml:"type"`

	// Name is the predicate name (check).
	Name string `yaml:"name,omitempty"`

	// Want is the expected predicate outcome (check). Defaults to true.
	Want *bool `yaml:"want,omitempty"`

	// Tool is the tool name (trace_contains, trace_count).
	Tool string `yaml:"tool,omitempty"`

	// Args are predicate arguments (check) or the expected call
	// arguments as a subset match (trace_contains).
	Args map[string]any `yaml:"args,omitempty"`

	// Tools is the expected call order (trace_order).
	Tools []string `yaml:"tools,omitempty"`

	// Count is the expected number of calls (trace_count, write_count).
	Count int `yaml:"count,omitempty"`

	// Path is a dotted path into the final state, e.g.
	// "accounts.A1.balance" (final_state).
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path (final_state). A null
	// expects the field to be absent or null.
	Equals any `yaml:"equals"`
}

// Assertion type constants.
const (
	AssertCheck         = "check"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertWriteCount    = "write_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files directly inside dir,
// sorted by name.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, u := range s.Updates {
		if len(u) == 0 {
			return fmt.Errorf("updates[%d]: must be a non-empty mapping", i)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if step.Expect != nil && step.Expect.Error != "" && !isErrorClass(step.Expect.Error) {
			return fmt.Errorf("flow[%d].expect: unknown error class %q (expected one of %s)",
				i, step.Expect.Error, strings.Join(errorClasses, ", "))
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func isErrorClass(s string) bool {
	for _, c := range errorClasses {
		if c == s {
			return true
		}
	}
	return false
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCheck:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for check", index)
		}
	case AssertTraceContains:
		if a.Tool == "" {
			return fmt.Errorf("assertions[%d]: tool is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Tools) == 0 {
			return fmt.Errorf("assertions[%d]: tools list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Tool == "" {
			return fmt.Errorf("assertions[%d]: tool is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertWriteCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for write_count", index)
		}
	case AssertFinalState:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
