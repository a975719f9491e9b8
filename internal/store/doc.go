// Package store provides SQLite-backed storage for banksim tool-call traces.
//
// The store is an append-only log with:
//   - Runs: one row per scenario execution
//   - Calls: every tool call made during a run, with its READ/WRITE
//     classification, result text and the state digest after the call
//
// WRITE rows are the run's state-changing events; READ rows are kept so
// a trace shows everything the agent observed.
//
// # Ordering
//
// All ordering uses the logical seq column, never timestamps:
//
//	ORDER BY seq ASC, id COLLATE BINARY ASC
//
// so identical runs read back identically.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: calls must reference an existing run
//
// Call IDs are content-addressed by ir.CallID.
package store
