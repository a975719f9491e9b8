package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/banksim/internal/config"
	"github.com/roach88/banksim/internal/store"
)

const failingScenario = `name: wrong_expectation
description: expects the wrong balance
flow:
  - invoke: get_account_balances
    expect:
      equals: "Checking Account (A1): $1.00"
`

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeCommand(t, config.Config{}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	out, err := executeCommand(t, config.Config{}, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := executeCommand(t, config.Config{}, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small_transfer.yaml", testScenario)

	out, err := executeCommand(t, config.Config{}, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ small_transfer\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small_transfer.yaml", testScenario)
	writeFile(t, dir, "wrong_expectation.yaml", failingScenario)

	out, err := executeCommand(t, config.Config{}, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 2)

	failed := resp.Data.Scenarios[1]
	assert.Equal(t, "wrong_expectation", failed.Name)
	assert.Equal(t, "wrong_expectation", failed.RunID)
	assert.False(t, failed.Pass)
	require.NotEmpty(t, failed.Errors)
	assert.Contains(t, failed.Errors[0], `flow[0] get_account_balances: expected result "Checking Account (A1): $1.00", got "No accounts found."`)
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nflow: []\n")

	out, err := executeCommand(t, config.Config{}, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small_transfer.yaml", testScenario)
	writeFile(t, dir, "wrong_expectation.yaml", failingScenario)

	out, err := executeCommand(t, config.Config{}, "test", dir, "--filter", "small-*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	out, err = executeCommand(t, config.Config{}, "test", dir, "--filter", "small_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small_transfer.yaml", testScenario)
	goldenPath := filepath.Join(dir, "golden", "small_transfer.golden")

	out, err := executeCommand(t, config.Config{}, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ small_transfer (golden updated)")

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"run_id":"small_transfer"`)
	assert.Contains(t, string(golden), `"amount":"79.50"`)

	// Golden files are not picked up as scenarios.
	out, err = executeCommand(t, config.Config{}, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"trace":[]}`), 0o644))
	out, err = executeCommand(t, config.Config{}, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandRecordsRuns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenarios/small_transfer.yaml", testScenario)
	dbPath := filepath.Join(dir, "trace.db")

	_, err := executeCommand(t, config.Config{}, "test", filepath.Join(dir, "scenarios"), "--db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	sum, err := st.GetRunSummary(context.Background(), "small_transfer")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Calls)
	assert.Equal(t, 1, sum.Writes)
	assert.True(t, sum.Changed)
}
