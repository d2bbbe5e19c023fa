// Package channel delivers flow-completion notifications to the hosting
// shell over an abstract transport.
//
// # Delivery model
//
// Delivery is fire-and-forget: [WebChannel.Notify] enqueues the message onto
// a buffered channel consumed by a single dispatcher goroutine and returns
// immediately. An absent or unresponsive host is never an error at this
// layer; back-pressure is handled by dropping (counted) or by blocking on the
// caller's context, per configuration. [WebChannel.Close] drains whatever is
// still queued before returning.
//
// # Architecture boundaries
//
// This package owns queuing and dispatch. It does NOT choose event names,
// build payloads, or decide whether a context should notify at all — those
// decisions belong to the broker.
//
// # What this package must NOT do
//
//   - Import goRelier (no upward imports).
//   - Report transport failures back to the caller.
//   - Deliver a message more than once.
package channel
