package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/banksim/internal/config"
)

const testState = `accounts:
  A1: { account_type: checking, balance: "120.50" }
  A2: { account_type: savings, balance: 2500 }
cards:
  C1: { linked_account: A1 }
  C2: { linked_account: A2, status: blocked, credit_limit: 1000, current_usage: "250.00" }
transactions:
  T1: { amount: "-42.10", merchant: Corner Grocery, status: cleared, card_id: C1 }
`

const testScenario = `name: small_transfer
description: move money from savings to checking
initial_state:
  accounts:
    A1: { account_type: checking, balance: "120.50" }
    A2: { account_type: savings, balance: 2500 }
updates:
  - security_context: { logged_in: true }
flow:
  - invoke: transfer_funds
    args: { from_account_id: A2, to_account_id: A1, amount: "79.50" }
    expect:
      equals: "Transferred $79.50 from A2 to A1."
  - invoke: get_account_balances
    expect:
      contains: "$200.00"
assertions:
  - type: check
    name: assert_account_balance
    args: { account_id: A1, minimum_balance: 200 }
`

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand(cfg, nil)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
