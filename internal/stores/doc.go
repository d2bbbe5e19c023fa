// Package stores provides the persisted resume-session record that lets a
// later browsing context continue or complete a flow started elsewhere.
//
// # Design
//
// One record per logical flow, stored under a single well-known key in the
// shared namespaced store. The record is written by the initiating context,
// read fresh by any context attempting completion, never rewritten, and
// consumed (cleared) by the context whose completion succeeds. Its continued
// presence at decision time is the ownership signal.
//
// # What this package must NOT do
//
//   - Import goRelier or any sibling internal package.
//   - Cache a loaded record between calls.
//   - Decide completion ownership — that belongs to internal/flows.
package stores
