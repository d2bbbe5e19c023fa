package goRelier

import (
	"context"

	"github.com/MrEthical07/goRelier/internal/flows"
)

// BeforeSignUpConfirmationPoll runs in the initiating tab before it starts
// waiting for the out-of-band verification. If the relier wants keys, the
// verification tab will need the token material to finish the flow, so it is
// attached to the persisted resume record.
func (b *Broker) BeforeSignUpConfirmationPoll(ctx context.Context, acct *Account) error {
	if b == nil {
		return ErrBrokerNotReady
	}
	if !b.relier.WantsKeys || acct == nil {
		return nil
	}

	resume, ok := b.loadResume(ctx)
	if !ok {
		// Degraded or cleared storage: fall back to this context's own
		// state so at least a same-browser verification tab can resume.
		var prepared bool
		resume, prepared = b.currentResume()
		if !prepared {
			return ErrFlowNotPrepared
		}
	}

	resume.HasOAuth = true
	resume.KeyFetchToken = acct.KeyFetchToken
	resume.UnwrapBKey = acct.UnwrapBKey
	b.saveResume(ctx, resume)
	b.setCurrentResume(resume)

	return nil
}

// AfterSignUpConfirmationPoll runs when the initiating tab's confirmation
// poll reports the account verified. The original tab can finish the flow if
// it is still open, but not if the verification tab has already finished it:
// the resume record is reloaded fresh from the store and its presence decides.
func (b *Broker) AfterSignUpConfirmationPoll(ctx context.Context, acct *Account) (*FlowResult, error) {
	if b == nil {
		return nil, ErrBrokerNotReady
	}

	completion, completed, err := flows.RunOwnedCompletion(ctx, accountState(acct), b.completionDeps())
	if err != nil {
		return nil, err
	}
	return flowResult(completion, completed), nil
}

// AfterCompleteSignUp runs in the tab that opened the verification link. The
// original tab may be closed, so this tab sends the completion to the host,
// unless the record is gone, meaning a peer context already did (or this is a
// different browser with no resumable state). Key material persisted by
// BeforeSignUpConfirmationPoll is restored onto the account first.
func (b *Broker) AfterCompleteSignUp(ctx context.Context, acct *Account) (*FlowResult, error) {
	if b == nil {
		return nil, ErrBrokerNotReady
	}

	deps := b.completionDeps()
	if acct != nil {
		deps.OnRestoreKeys = func(keyFetchToken, unwrapBKey string) {
			acct.KeyFetchToken = keyFetchToken
			acct.UnwrapBKey = unwrapBKey
		}
	}

	completion, completed, err := flows.RunSecondTabCompletion(ctx, accountState(acct), true, deps)
	if err != nil {
		return nil, err
	}
	return flowResult(completion, completed), nil
}
