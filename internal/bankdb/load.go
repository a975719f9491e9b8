package bankdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/roach88/banksim/internal/schema"
)

// Load builds a container from a scenario's initial configuration.
//
// A nil config yields the default container. Load never returns an
// error: an invalid configuration is logged at Warn level and replaced by
// the default container, so a broken fixture cannot abort a harness run
// before the agent starts. A nil logger uses slog.Default().
func Load(raw map[string]any, logger *slog.Logger) *DB {
	db, err := LoadStrict(raw)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("invalid initial state, falling back to defaults", "error", err)
		return New()
	}
	return db
}

// LoadStrict is like Load but returns a *LoadError (wrapping the
// *ValidationError) instead of falling back to defaults.
func LoadStrict(raw map[string]any) (*DB, error) {
	db := New()
	if raw == nil {
		return db, nil
	}

	v, err := db.schemaValidator()
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	next, err := build(v, raw)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	next.validator = v
	return next, nil
}

// build validates raw against the schema, decodes it and checks the
// record invariants. Every failure is a *ValidationError.
func build(v *schema.Validator, raw map[string]any) (*DB, error) {
	data, err := v.Normalize(raw)
	if err != nil {
		var schemaErr *schema.Error
		if errors.As(err, &schemaErr) {
			return nil, &ValidationError{Path: schemaErr.Path, Message: schemaErr.Message, Err: err}
		}
		return nil, &ValidationError{Message: err.Error(), Err: err}
	}

	db := New()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(db); err != nil {
		return nil, &ValidationError{Message: "decode state: " + err.Error(), Err: err}
	}

	if err := db.Validate(); err != nil {
		return nil, err
	}
	return db, nil
}
