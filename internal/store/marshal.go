package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/banksim/internal/ir"
)

// marshalArgs converts tool arguments to canonical JSON TEXT for storage.
// A nil map is stored as {}.
func marshalArgs(args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// unmarshalArgs parses canonical JSON TEXT back into arguments. Integers
// decode as int64 so values above 2^53 survive; canonical JSON never
// stores fractional numbers.
func unmarshalArgs(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return intNumbers(obj).(map[string]any), nil
}

func intNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			val[k] = intNumbers(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = intNumbers(elem)
		}
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		return val
	default:
		return v
	}
}
