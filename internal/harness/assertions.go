package harness

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/banksim/internal/ir"
	"github.com/roach88/banksim/internal/toolkit"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %v\n", event.Seq, event.Kind, event.Tool, formatArgs(event.Args))
		}
	}

	return buf.String()
}

// AssertionContext provides what assertions evaluate against.
type AssertionContext struct {
	Toolkit *toolkit.Toolkit
	State   map[string]any
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCheck:
			if actx == nil || actx.Toolkit == nil {
				err = fmt.Errorf("assertion[%d]: check requires a toolkit", i)
			} else {
				err = assertCheck(actx.Toolkit, assertion)
			}
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertWriteCount:
			err = assertWriteCount(result, assertion)
		case AssertFinalState:
			if actx == nil || actx.State == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires a state snapshot", i)
			} else {
				err = assertFinalState(actx.State, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// assertCheck evaluates a toolkit predicate. Want defaults to true.
func assertCheck(tk *toolkit.Toolkit, assertion Assertion) error {
	want := true
	if assertion.Want != nil {
		want = *assertion.Want
	}

	got, err := tk.Check(assertion.Name, assertion.Args)
	if err != nil {
		return &AssertionError{
			Type:     "check",
			Expected: fmt.Sprintf("%s%v to evaluate", assertion.Name, formatArgs(assertion.Args)),
			Actual:   err.Error(),
		}
	}
	if got != want {
		return &AssertionError{
			Type:     "check",
			Expected: fmt.Sprintf("%s%v = %t", assertion.Name, formatArgs(assertion.Args), want),
			Actual:   fmt.Sprintf("%t", got),
		}
	}
	return nil
}

// assertTraceContains checks if the trace contains a call to the tool
// whose args include the expected args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Tool == assertion.Tool && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     "trace_contains",
		Expected: fmt.Sprintf("tool %s with args %v", assertion.Tool, formatArgs(assertion.Args)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if tools were first called in the specified
// order. Calls don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Tool]; !seen {
			positions[event.Tool] = i + 1 // 1-indexed for readability
		}
	}

	for _, tool := range assertion.Tools {
		if positions[tool] == 0 {
			return &AssertionError{
				Type:     "trace_order",
				Expected: fmt.Sprintf("all tools present: %v", assertion.Tools),
				Actual:   fmt.Sprintf("missing tool: %s", tool),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Tools); i++ {
		prev := assertion.Tools[i-1]
		curr := assertion.Tools[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     "trace_order",
				Expected: fmt.Sprintf("tools in order: %v", assertion.Tools),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the tool was called exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Tool == assertion.Tool {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     "trace_count",
			Expected: fmt.Sprintf("%d calls to %s", assertion.Count, assertion.Tool),
			Actual:   fmt.Sprintf("%d calls", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertWriteCount checks the number of WRITE calls.
func assertWriteCount(result *Result, assertion Assertion) error {
	if n := result.WriteCount(); n != assertion.Count {
		return &AssertionError{
			Type:     "write_count",
			Expected: fmt.Sprintf("%d WRITE calls", assertion.Count),
			Actual:   fmt.Sprintf("%d WRITE calls", n),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertFinalState checks the value at a dotted path in the final state.
// A number compares by decimal value, so an expected 2500 matches the
// stored "2500.00".
func assertFinalState(state map[string]any, assertion Assertion) error {
	actual, found := lookupPath(state, assertion.Path)
	if !found && assertion.Equals != nil {
		return &AssertionError{
			Type:     "final_state",
			Expected: fmt.Sprintf("%s = %v", assertion.Path, assertion.Equals),
			Actual:   fmt.Sprintf("%s not present", assertion.Path),
		}
	}

	if !stateValuesEqual(assertion.Equals, actual) {
		return &AssertionError{
			Type:     "final_state",
			Expected: fmt.Sprintf("%s = %v (type %T)", assertion.Path, assertion.Equals, assertion.Equals),
			Actual:   fmt.Sprintf("%s = %v (type %T)", assertion.Path, actual, actual),
		}
	}
	return nil
}

// lookupPath walks a dotted path through nested maps.
func lookupPath(state map[string]any, path string) (any, bool) {
	var cur any = state
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// stateValuesEqual compares an expected scenario value with a snapshot
// value.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if isNumber(expected) || isNumber(actual) {
		ed, eok := asDecimal(expected)
		ad, aok := asDecimal(actual)
		if eok && aok {
			return ed.Equal(ad)
		}
	}

	eb, err := ir.MarshalCanonical(expected)
	if err != nil {
		return false
	}
	ab, err := ir.MarshalCanonical(actual)
	if err != nil {
		return false
	}
	return bytes.Equal(eb, ab)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

// asDecimal converts numbers and numeric strings. Decimal strings only
// compare numerically against a number, so ids like "01" and "1" stay
// distinct.
func asDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(val), true
	case string:
		d, err := decimal.NewFromString(val)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// matchArgs checks if actual args contain all expected args (subset
// match). Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !stateValuesEqual(expectedVal, actualVal) {
			return false
		}
	}
	return true
}

// formatArgs renders args with sorted keys for stable messages.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "()"
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
	return "(" + strings.Join(parts, ", ") + ")"
}
