// Package goRelier provides the flow-completion broker for an accounts
// front-end: per-browsing-context decision logic that determines whether this
// context owns completion of an OAuth-style sign-up, sign-in, or
// password-reset flow, derives relier-scoped keys when requested, and
// notifies the hosting shell exactly once per completing context over a
// fire-and-forget channel.
//
// Each context (tab) runs its own [Broker] built through [Builder.Build].
// Contexts coordinate only through the shared persisted store: the continued
// presence of the resume record, read fresh at decision time, is the
// ownership signal. Broker methods are safe to call from multiple goroutines
// after initialization.
//
// # Architecture boundaries
//
// goRelier is the public surface. It exposes [Broker], [Builder], [Config],
// and value types (CompletionResult, FlowResult, Relier, Account). All
// internal coordination — flow orchestration, resume-record persistence —
// lives under internal/ and is never exported. Rendering, routing, the
// account HTTP client, and the concrete host transport are collaborators
// behind interfaces, never dependencies of this module.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Perform I/O outside of Broker methods (construction via Builder is
//     allocation-only until Build, which runs the storage probe).
//   - Crash a context: storage and parse faults normalize to absence; only
//     collaborator capability failures propagate to the caller.
package goRelier
