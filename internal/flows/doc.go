// Package flows contains pure-function orchestrators for every Broker operation.
//
// Each flow function (RunPrepare, RunDirectCompletion, RunOwnedCompletion,
// RunSecondTabCompletion) accepts a typed dependency struct and returns
// results without side-effects beyond those dependencies. This design enables
// exhaustive unit testing with mock dependencies and keeps the Broker type
// thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the resume store, the authorizer, the
// key capabilities, and the host channel. They do NOT own any of these
// resources — ownership stays with the Broker.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goRelier (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependency interfaces.
package flows
