package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed banking.cue
var bankingSchema string

// TopLevelFields lists the recognized top-level configuration names in
// schema order.
var TopLevelFields = []string{
	"accounts",
	"cards",
	"transactions",
	"disputes",
	"payment_settings",
	"surroundings",
	"security_context",
}

// Validator holds a compiled #State definition.
// Each Validator owns its CUE context; share one only within a single
// goroutine.
type Validator struct {
	ctx   *cue.Context
	state cue.Value
}

// Error reports a configuration that does not satisfy the schema.
type Error struct {
	Path    string // dotted path of the first offending field, if known
	Message string // first error message
	Details string // all CUE errors, one per line
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(bankingSchema, cue.Filename("banking.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile banking schema: %w", err)
	}

	state := root.LookupPath(cue.ParsePath("#State"))
	if !state.Exists() {
		return nil, fmt.Errorf("banking schema has no #State definition")
	}

	return &Validator{ctx: ctx, state: state}, nil
}

// MustNew is like New but panics on error. The schema is embedded, so a
// failure here is a build defect, not a runtime condition.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Normalize validates raw against #State and returns the defaulted JSON
// encoding. A nil raw yields the all-default state.
func (v *Validator) Normalize(raw map[string]any) ([]byte, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	for key := range raw {
		if !IsTopLevelField(key) {
			return nil, &Error{
				Path:    key,
				Message: fmt.Sprintf("unrecognized field (expected one of %s)", strings.Join(TopLevelFields, ", ")),
			}
		}
	}

	normalized, err := normalizeNumbers(raw)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}

	value := v.ctx.Encode(normalized)
	if err := value.Err(); err != nil {
		return nil, newError(err)
	}

	unified := v.state.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, newError(err)
	}

	data, err := unified.MarshalJSON()
	if err != nil {
		return nil, newError(err)
	}
	return data, nil
}

// IsTopLevelField reports whether name is a recognized top-level field.
func IsTopLevelField(name string) bool {
	for _, f := range TopLevelFields {
		if f == name {
			return true
		}
	}
	return false
}

func newError(err error) *Error {
	e := &Error{
		Message: err.Error(),
		Details: strings.TrimSpace(cueerrors.Details(err, nil)),
	}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		e.Path = strings.Join(errs[0].Path(), ".")
		format, args := errs[0].Msg()
		e.Message = fmt.Sprintf(format, args...)
	}
	return e
}

// normalizeNumbers returns a copy of v in which integral float64 values
// become int64. JSON decoding yields float64 for every number; CUE would
// otherwise treat 3 as 3.0 and reject it for int fields.
func normalizeNumbers(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalizeNumbers(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeNumbers(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite number %v", val)
		}
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val), nil
		}
		return val, nil
	case float32:
		return normalizeNumbers(float64(val))
	case int:
		return int64(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val)
		}
		return normalizeNumbers(f)
	default:
		return v, nil
	}
}
