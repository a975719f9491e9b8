package bankdb

import (
	"fmt"
	"sort"

	"github.com/roach88/banksim/internal/schema"
)

// ApplyPartialUpdate merges updates into the current state.
//
// Merge policy is per key and per field:
//   - top-level names must be recognized fields, anything else is rejected
//   - objects merge recursively, so a patch naming an existing record
//     changes only the fields it mentions, and nested singletons such as
//     surroundings.device merge the same way
//   - a new collection key must carry every required field of its record;
//     defaults fill the rest
//   - null removes: it clears an optional field, deletes a record, or
//     resets a whole collection or singleton to its default
//   - scalars and arrays replace wholesale
//
// The merged state is validated in full. On any failure the returned
// error is a *ValidationError and the DB is unchanged.
func (db *DB) ApplyPartialUpdate(updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	for _, key := range sortedNames(updates) {
		if !schema.IsTopLevelField(key) {
			return invalid(key, "unrecognized field")
		}
	}

	v, err := db.schemaValidator()
	if err != nil {
		return fmt.Errorf("apply partial update: %w", err)
	}

	current, err := db.Snapshot()
	if err != nil {
		return fmt.Errorf("apply partial update: %w", err)
	}
	mergeInto(current, updates)

	next, err := build(v, current)
	if err != nil {
		return err
	}
	db.adopt(next)
	return nil
}

// Mutate runs fn against a deep copy of the state. If fn succeeds and the
// copy satisfies every invariant, the copy replaces the current state.
// Otherwise the error is returned (a *ValidationError for invariant
// violations) and the DB is unchanged.
func (db *DB) Mutate(fn func(next *DB) error) error {
	next := db.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	db.adopt(next)
	return nil
}

// mergeInto deep merges patch into dst. dst is owned by the caller and is
// modified in place; patch is only read.
func mergeInto(dst map[string]any, patch map[string]any) {
	for key, pv := range patch {
		if pv == nil {
			delete(dst, key)
			continue
		}

		patchObj, isObj := pv.(map[string]any)
		if !isObj {
			dst[key] = pv
			continue
		}

		dstObj, ok := dst[key].(map[string]any)
		if !ok {
			dstObj = make(map[string]any, len(patchObj))
			dst[key] = dstObj
		}
		mergeInto(dstObj, patchObj)
	}
}

func sortedNames(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
