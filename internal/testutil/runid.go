package testutil

// DefaultRunID is used when a scenario does not pin its own run id.
const DefaultRunID = "test-run-default"

// FixedRunID returns the same run id on every call, so golden traces are
// byte-identical across runs.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed generator. An empty id falls back to
// DefaultRunID.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunID) Generate() string {
	return g.id
}
