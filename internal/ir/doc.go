// Package ir provides the canonical value encoding used for state digests,
// tool-call identities and golden traces.
//
// This package sits at the bottom of the import graph. It knows nothing
// about banking records: callers hand it JSON-shaped Go values
// (map[string]any, []any, strings, bools, integers, decimals) and get back
// deterministic bytes.
//
// Key design constraints:
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Strings are NFC normalized at the serialization boundary
//   - Floats never appear in output; they are rendered through decimal
//   - Logical sequence numbers only, never wall-clock timestamps
package ir
