package goRelier

import (
	"context"

	"github.com/MrEthical07/goRelier/internal/flows"
)

// AfterResetPasswordConfirmationPoll runs when the initiating tab's poll
// reports the password reset confirmed. As with sign-up, the fresh-read
// presence of the resume record decides whether this tab still owns the
// completion.
func (b *Broker) AfterResetPasswordConfirmationPoll(ctx context.Context, acct *Account) (*FlowResult, error) {
	if b == nil {
		return nil, ErrBrokerNotReady
	}

	completion, completed, err := flows.RunOwnedCompletion(ctx, accountState(acct), b.completionDeps())
	if err != nil {
		return nil, err
	}
	return flowResult(completion, completed), nil
}

// AfterCompleteResetPassword runs in the tab the password was reset in. No
// key restore happens here: this tab had the password typed into it, so the
// account already carries fresh token material when the relier wants keys.
func (b *Broker) AfterCompleteResetPassword(ctx context.Context, acct *Account) (*FlowResult, error) {
	if b == nil {
		return nil, ErrBrokerNotReady
	}

	completion, completed, err := flows.RunSecondTabCompletion(ctx, accountState(acct), false, b.completionDeps())
	if err != nil {
		return nil, err
	}
	return flowResult(completion, completed), nil
}
