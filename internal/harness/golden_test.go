package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenScenarios(t *testing.T) {
	paths, err := FindScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "golden file name follows scenario name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTraceSnapshot_OmitsEmptyFields(t *testing.T) {
	result := NewResult()
	result.RunID = "run-1"
	result.AddTrace(TraceEvent{Seq: 1, CallID: "abc", Tool: "close_account", Result: "nope", IsError: true, Error: ErrorUnregistered})
	result.AddTrace(TraceEvent{Seq: 2, CallID: "def", Tool: "transfer_funds", Kind: "WRITE", Args: map[string]any{"amount": 5}, Result: "ok", Changed: true})

	snapshot := NewTraceSnapshot("demo", result)
	data, err := snapshot.MarshalCanonical()
	require.NoError(t, err)

	assert.Equal(t,
		`{"pass":true,"run_id":"run-1","scenario_name":"demo","trace":[`+
			`{"call_id":"abc","changed":false,"error":"unregistered","is_error":true,"result":"nope","seq":1,"tool":"close_account"},`+
			`{"args":{"amount":5},"call_id":"def","changed":true,"is_error":false,"kind":"WRITE","result":"ok","seq":2,"tool":"transfer_funds"}]}`,
		string(data))
}
