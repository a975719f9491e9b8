// Package bankdb is the mutable state container for one simulated banking
// user.
//
// A DB owns every collection (accounts, cards, transactions, disputes) and
// singleton (payment settings, surroundings, security context) for a single
// scenario run. It is built once per scenario, mutated in place by tool
// calls, and discarded at the end. Nothing in a DB is shared with another
// DB.
//
// # Writes
//
// There are two write paths and both are atomic-or-reject:
//
//   - ApplyPartialUpdate merges a loosely-typed patch (JSON-shaped map)
//     into the current state. The patch is deep merged per key and per
//     field, validated against the CUE schema in package schema, decoded,
//     and checked against the record invariants before it replaces the
//     current state.
//   - Mutate runs a typed edit against a clone and swaps the clone in only
//     if every invariant still holds.
//
// A rejected write returns *ValidationError and leaves the DB unchanged.
//
// # Bootstrap
//
// Load never fails: a malformed initial configuration is logged and
// replaced by the all-default state. LoadStrict returns the error instead.
package bankdb
