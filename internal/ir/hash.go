package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainState = "banksim/state/v1"
	DomainCall  = "banksim/call/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateDigest hashes a rendered state snapshot. Two containers with the
// same observable state produce the same digest.
func StateDigest(snapshot map[string]any) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("StateDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// CallID computes the content-addressed ID for one tool call within a run.
// The ID is stable across replays given the same inputs.
func CallID(runID, tool string, args map[string]any, seq int64) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	obj := map[string]any{
		"run_id": runID,
		"tool":   tool,
		"args":   args,
		"seq":    seq,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CallID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCall, canonical), nil
}

// MustCallID is like CallID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCallID(runID, tool string, args map[string]any, seq int64) string {
	id, err := CallID(runID, tool, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}
