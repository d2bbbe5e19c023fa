// Package internal contains packages that are intentionally private to
// goRelier.
//
// # Sub-packages
//
//   - flows — pure-function flow orchestrators for every Broker operation
//   - stores — the persisted resume-session record
//
// # What this package must NOT do
//
//   - Export types that appear in the public goRelier API.
//   - Be imported by any package outside the goRelier module.
package internal
