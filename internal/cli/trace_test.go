package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/banksim/internal/config"
)

// recordScenario runs testScenario into a fresh trace store and returns
// the store path and scenario path.
func recordScenario(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "scenarios/small_transfer.yaml", testScenario)
	dbPath := filepath.Join(dir, "trace.db")

	_, err := executeCommand(t, config.Config{}, "test", filepath.Dir(scenarioPath), "--db", dbPath)
	require.NoError(t, err)
	return dbPath, scenarioPath
}

func TestTraceCommand_NoStore(t *testing.T) {
	out, err := executeCommand(t, config.Config{}, "trace")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no trace store")
}

func TestTraceCommand_ListRuns(t *testing.T) {
	dbPath, _ := recordScenario(t)

	out, err := executeCommand(t, config.Config{TraceDB: dbPath}, "trace")
	require.NoError(t, err)
	assert.Contains(t, out, "small_transfer")
	assert.Contains(t, out, "2 call(s), 1 write(s), 0 error(s), state changed")
}

func TestTraceCommand_EmptyStore(t *testing.T) {
	out, err := executeCommand(t, config.Config{}, "trace", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestTraceCommand_Timeline(t *testing.T) {
	dbPath, _ := recordScenario(t)

	out, err := executeCommand(t, config.Config{}, "trace", "--db", dbPath, "--run", "small_transfer", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Trace for Run: small_transfer (small_transfer)")
	assert.Contains(t, out, "[1] WRITE transfer_funds")
	assert.Contains(t, out, "Args: {amount=79.50, from_account_id=A2, to_account_id=A1}")
	assert.Contains(t, out, "Transferred $79.50 from A2 to A1.")
	assert.Contains(t, out, "[2] READ  get_account_balances")
	assert.Contains(t, out, "Savings Account (A2): $2420.50")
	assert.Contains(t, out, "Writes: 1")
}

func TestTraceCommand_WritesJSON(t *testing.T) {
	dbPath, _ := recordScenario(t)

	out, err := executeCommand(t, config.Config{}, "trace", "--db", dbPath, "--run", "small_transfer", "--writes", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Timeline, 1)
	assert.Equal(t, "transfer_funds", resp.Data.Timeline[0].Tool)
	assert.Equal(t, "WRITE", resp.Data.Timeline[0].Kind)
	assert.Equal(t, 2, resp.Data.Run.Stats.Calls)
	assert.Equal(t, resp.Data.Timeline[0].StateDigest, resp.Data.Run.Stats.FinalDigest)
}

func TestTraceCommand_UnknownRun(t *testing.T) {
	dbPath, _ := recordScenario(t)

	out, err := executeCommand(t, config.Config{}, "trace", "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run not found: nope")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}
