// Package toolkit exposes the banking operations an agent may call.
//
// Every tool is declared once with its name, description, parameter list
// and READ/WRITE classification, and is bound to exactly one *bankdb.DB
// for its lifetime. READ tools never change state. WRITE tools change it
// only through bankdb.DB.Mutate, so a rejected write leaves the container
// untouched and surfaces a *bankdb.ValidationError to the caller.
//
// Assertions are a separate table of pure predicates used by scenario
// checks. They are never offered to the agent.
//
// Not-found conditions are ordinary results: a tool returns explanatory
// text and an assertion returns false.
package toolkit
