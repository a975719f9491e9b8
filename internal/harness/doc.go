// Package harness replays banking scenarios against a fresh container
// and checks the outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: resolve_open_dispute
//	description: "Customer logs in and resolves their dispute"
//	initial_state:
//	  accounts:
//	    A1: { account_type: checking, balance: 120.50 }
//	  transactions:
//	    T1: { amount: -20, status: disputed, disputed: true }
//	  disputes:
//	    D1: { transaction_id: T1 }
//	updates:
//	  - security_context: { logged_in: false }
//	flow:
//	  - invoke: log_in
//	  - invoke: resolve_dispute
//	    args: { dispute_id: D1 }
//	    expect:
//	      equals: "Dispute D1 marked as resolved."
//	assertions:
//	  - type: check
//	    name: assert_dispute_status
//	    args: { dispute_id: D1, expected_status: resolved }
//	  - type: final_state
//	    path: accounts.A1.balance
//	    equals: 120.50
//
// initial_state is loaded fail-soft: an invalid configuration is logged
// and replaced by defaults. updates are strict: the first rejected update
// fails the scenario and the flow does not run.
//
// # Step Expectations
//
//   - equals: the result text matches exactly
//   - contains: the result text contains a substring
//   - error: the call fails with this class (validation,
//     invalid_arguments, unregistered, write_denied, error)
//
// A step without an error expectation must succeed.
//
// # Assertion Types
//
//   - check: evaluates a toolkit assertion predicate (want defaults to true)
//   - trace_contains: a tool was called with matching args
//   - trace_order: tools were first called in the given order
//   - trace_count: a tool was called exactly N times
//   - write_count: exactly N WRITE calls were made
//   - final_state: the value at a dotted path in the final state
//
// # Deterministic Testing
//
// Calls are numbered by a logical clock and identified by
// content-addressed call ids, and the run id defaults to a fixed value,
// so the same scenario always yields the same trace. READ calls are
// checked against the state digest to prove they changed nothing.
package harness
