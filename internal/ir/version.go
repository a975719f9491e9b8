package ir

// Version constants stamped on recorded tool calls.
const (
	// TraceVersion is the trace record schema version.
	TraceVersion = "1"

	// SimulatorVersion is the banksim version.
	SimulatorVersion = "0.1.0"
)
