package goRelier

import (
	"context"
	"encoding/json"

	"github.com/MrEthical07/goRelier/keys"
)

// Account is the read-only slice of account identity the broker needs to
// complete a flow. It is constructed by the account-operations layer; the
// broker only reads it, and annotates the token fields when restoring them
// from a resumed session.
type Account struct {
	UID           string
	Email         string
	KeyFetchToken string
	UnwrapBKey    string
}

// RawKeys is an exported constant or variable used by the flow-completion broker.
type RawKeys = keys.Raw

// RelierKeys is an exported constant or variable used by the flow-completion broker.
type RelierKeys = keys.Relier

// KeyClient is an exported constant or variable used by the flow-completion broker.
type KeyClient = keys.Client

// RelierKeyDeriver is an exported constant or variable used by the flow-completion broker.
type RelierKeyDeriver = keys.Deriver

// Authorization is what the account-operations layer hands back when it
// finishes the OAuth grant for a verified account.
type Authorization struct {
	RedirectTarget string
	Code           string
	State          string
}

// Authorizer is the out-of-scope account-operations collaborator that turns a
// verified account into an OAuth authorization.
type Authorizer interface {
	Authorize(ctx context.Context, acct *Account, relier *Relier) (*Authorization, error)
}

// HostChannel delivers a named event with a structured payload to the hosting
// shell. Delivery is fire-and-forget and always succeeds from the caller's
// point of view.
type HostChannel interface {
	Notify(ctx context.Context, event string, payload any)
}

// EventOAuthComplete is an exported constant or variable used by the flow-completion broker.
const EventOAuthComplete = "oauth_complete"

// Outcome defines a public type used by goRelier APIs.
//
// Outcome instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Outcome uint8

const (
	// OutcomeDeferred is an exported constant or variable used by the flow-completion broker.
	OutcomeDeferred Outcome = iota
	// OutcomeCompleted is an exported constant or variable used by the flow-completion broker.
	OutcomeCompleted
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// FlowResult is returned by every Broker completion operation: whether this
// context completed the flow or deferred to a peer, and the payload it sent.
type FlowResult struct {
	Outcome    Outcome
	Completion *CompletionResult
}

// Completed describes the completed operation and its observable behavior.
//
// Completed may return an error when input validation, dependency calls, or security checks fail.
// Completed does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *FlowResult) Completed() bool {
	return r != nil && r.Outcome == OutcomeCompleted
}

// CompletionResult is the payload delivered to the host on flow completion.
// Keys is tri-state on the wire: omitted when the relier never asked for
// keys, explicit null when keys were requested but could not be derived, and
// an object otherwise.
type CompletionResult struct {
	RedirectTarget string
	Code           string
	State          string
	CloseWindow    bool
	Keys           *RelierKeys
	KeysRequested  bool
}

// MarshalJSON describes the marshaljson operation and its observable behavior.
//
// MarshalJSON may return an error when input validation, dependency calls, or security checks fail.
// MarshalJSON does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *CompletionResult) MarshalJSON() ([]byte, error) {
	type base struct {
		RedirectTarget string `json:"redirect"`
		Code           string `json:"code"`
		State          string `json:"state"`
		CloseWindow    bool   `json:"closeWindow"`
	}
	b := base{
		RedirectTarget: r.RedirectTarget,
		Code:           r.Code,
		State:          r.State,
		CloseWindow:    r.CloseWindow,
	}

	if !r.KeysRequested {
		return json.Marshal(b)
	}

	return json.Marshal(struct {
		base
		Keys *RelierKeys `json:"keys"`
	}{base: b, Keys: r.Keys})
}
