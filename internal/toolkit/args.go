package toolkit

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// ParamType is the accepted type of a tool argument.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeBoolean ParamType = "boolean"
	// TypeNumber accepts any Go number, a json.Number, a decimal.Decimal
	// or a plain decimal string such as "25.00".
	TypeNumber ParamType = "number"
)

// Param declares one tool argument.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
}

// validateArgs checks arguments against declared params: required
// params must be present and non-null, unknown names are rejected, and
// every present value must match its declared type. Keys are checked in
// sorted order so the reported error is stable.
func validateArgs(params []Param, args map[string]any) error {
	byName := make(map[string]Param, len(params))
	for _, p := range params {
		byName[p.Name] = p
		if !p.Required {
			continue
		}
		if v, ok := args[p.Name]; !ok || v == nil {
			return fmt.Errorf("missing required argument %q", p.Name)
		}
	}

	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		p, ok := byName[key]
		if !ok {
			return fmt.Errorf("unknown argument %q", key)
		}
		value := args[key]
		if value == nil {
			continue
		}
		if !p.Type.matches(value) {
			return fmt.Errorf("argument %q must be %s", key, p.Type)
		}
	}
	return nil
}

func (t ParamType) matches(value any) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		_, err := toDecimal(value)
		return err == nil
	default:
		return false
	}
}

// Args are validated tool arguments. Accessors assume validation has
// already run and return zero values for absent optional arguments.
type Args map[string]any

// String returns a string argument.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// OptString returns a string argument and whether it was supplied.
func (a Args) OptString(name string) (string, bool) {
	s, ok := a[name].(string)
	return s, ok
}

// Bool returns a boolean argument, or def when it is absent.
func (a Args) Bool(name string, def bool) bool {
	b, ok := a[name].(bool)
	if !ok {
		return def
	}
	return b
}

// Decimal returns a numeric argument as a decimal.
func (a Args) Decimal(name string) (decimal.Decimal, error) {
	d, err := toDecimal(a[name])
	if err != nil {
		return decimal.Zero, fmt.Errorf("argument %q: %w", name, err)
	}
	return d, nil
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromString(strconv.FormatUint(uint64(v), 10))
	case uint8:
		return decimal.NewFromInt(int64(v)), nil
	case uint16:
		return decimal.NewFromInt(int64(v)), nil
	case uint32:
		return decimal.NewFromInt(int64(v)), nil
	case uint64:
		return decimal.NewFromString(strconv.FormatUint(v, 10))
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("not a number: %T", value)
	}
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("non-finite number %v", f)
	}
	return decimal.NewFromFloat(f), nil
}
