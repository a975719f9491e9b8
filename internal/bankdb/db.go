package bankdb

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/banksim/internal/ir"
	"github.com/roach88/banksim/internal/schema"
)

// DB is the state container for one scenario.
//
// Collections are keyed by record id. The exported fields are read freely
// by tools; writes must go through Mutate or ApplyPartialUpdate so that
// invariants are enforced atomically.
//
// A DB is not safe for concurrent use. The harness serializes tool calls.
type DB struct {
	Accounts        map[string]*Account     `json:"accounts"`
	Cards           map[string]*Card        `json:"cards"`
	Transactions    map[string]*Transaction `json:"transactions"`
	Disputes        map[string]*Dispute     `json:"disputes"`
	PaymentSettings PaymentSetting          `json:"payment_settings"`
	Surroundings    Surroundings            `json:"surroundings"`
	SecurityContext SecurityContext         `json:"security_context"`

	validator *schema.Validator
}

// New returns an all-default container: every collection empty and every
// singleton at its documented default.
func New() *DB {
	return &DB{
		Accounts:        make(map[string]*Account),
		Cards:           make(map[string]*Card),
		Transactions:    make(map[string]*Transaction),
		Disputes:        make(map[string]*Dispute),
		PaymentSettings: DefaultPaymentSetting(),
		Surroundings:    DefaultSurroundings(),
		SecurityContext: DefaultSecurityContext(),
	}
}

// schemaValidator compiles the CUE schema on first use. Each DB owns its
// validator; nothing is shared across containers.
func (db *DB) schemaValidator() (*schema.Validator, error) {
	if db.validator == nil {
		v, err := schema.New()
		if err != nil {
			return nil, err
		}
		db.validator = v
	}
	return db.validator, nil
}

// clone returns a deep copy of the data in db. The validator is shared
// because the clone never outlives the write that created it.
func (db *DB) clone() *DB {
	out := &DB{
		Accounts:        make(map[string]*Account, len(db.Accounts)),
		Cards:           make(map[string]*Card, len(db.Cards)),
		Transactions:    make(map[string]*Transaction, len(db.Transactions)),
		Disputes:        make(map[string]*Dispute, len(db.Disputes)),
		PaymentSettings: db.PaymentSettings.clone(),
		Surroundings:    db.Surroundings.clone(),
		SecurityContext: db.SecurityContext,
		validator:       db.validator,
	}
	for id, a := range db.Accounts {
		out.Accounts[id] = a.clone()
	}
	for id, c := range db.Cards {
		out.Cards[id] = c.clone()
	}
	for id, t := range db.Transactions {
		out.Transactions[id] = t.clone()
	}
	for id, d := range db.Disputes {
		out.Disputes[id] = d.clone()
	}
	return out
}

// adopt replaces db's data with next's. The *DB identity is preserved so
// a toolkit bound to db sees the new state.
func (db *DB) adopt(next *DB) {
	db.Accounts = next.Accounts
	db.Cards = next.Cards
	db.Transactions = next.Transactions
	db.Disputes = next.Disputes
	db.PaymentSettings = next.PaymentSettings
	db.Surroundings = next.Surroundings
	db.SecurityContext = next.SecurityContext
}

// Snapshot renders the full state as a JSON-shaped map. Decimals render
// as canonical decimal strings and integers as int64. Loading a snapshot
// yields an equal DB.
func (db *DB) Snapshot() (map[string]any, error) {
	data, err := json.Marshal(db)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	out, err := decodePlain(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return out, nil
}

// Digest returns a content hash of the current state. Equal states have
// equal digests.
func (db *DB) Digest() (string, error) {
	snap, err := db.Snapshot()
	if err != nil {
		return "", err
	}
	return ir.StateDigest(snap)
}

// AccountIDs returns account ids in sorted order.
func (db *DB) AccountIDs() []string { return ir.SortedKeys(db.Accounts) }

// CardIDs returns card ids in sorted order.
func (db *DB) CardIDs() []string { return ir.SortedKeys(db.Cards) }

// TransactionIDs returns transaction ids in sorted order.
func (db *DB) TransactionIDs() []string { return ir.SortedKeys(db.Transactions) }

// DisputeIDs returns dispute ids in sorted order.
func (db *DB) DisputeIDs() []string { return ir.SortedKeys(db.Disputes) }

// decodePlain decodes a JSON object into plain Go values. Integers become
// int64 and other numbers stay decimal strings, so no float64 ever
// appears.
func decodePlain(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return plainNumbers(raw).(map[string]any), nil
}

func plainNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			val[k] = plainNumbers(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = plainNumbers(elem)
		}
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		return val.String()
	default:
		return v
	}
}
