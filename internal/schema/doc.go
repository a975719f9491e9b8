// Package schema validates loosely-typed banking state configurations.
//
// The schema lives in banking.cue and is embedded at build time. A
// Validator checks a raw configuration (as decoded from JSON or YAML)
// against the closed #State definition and returns JSON with every
// default resolved, ready to decode into typed records.
//
// Cross-record invariants (card links, overdraft rules) are not expressed
// here; package bankdb checks them after decoding.
package schema
