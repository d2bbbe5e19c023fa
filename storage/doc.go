// Package storage provides the namespaced key/value persistence layer shared
// by every browsing context participating in a flow.
//
// # Degradation model
//
// A [Store] is created through [Factory], which probes the durable Redis
// backend with a sentinel write+delete. When the probe fails (or no client is
// configured) the store transparently falls back to an in-memory backend and
// reports the downgrade through [Store.IsDegraded]. Callers never branch on
// backend availability themselves.
//
// # Fault contract
//
// Reads that hit a backend fault or an unparseable payload are normalized to
// absence: [Store.Get] returns false and never an error. Writes and deletes
// are best-effort. Resumable flow state is advisory: a context that cannot
// read it must defer, not crash.
//
// # Architecture boundaries
//
// This package owns serialization and namespacing. It does NOT interpret the
// records it stores — resume-session semantics belong to internal/stores.
//
// # What this package must NOT do
//
//   - Import goRelier or any sibling package (no upward imports).
//   - Surface backend or parse errors to callers.
//   - Write keys outside its namespace prefix.
package storage
