package goRelier

import (
	"context"

	"github.com/MrEthical07/goRelier/internal/flows"
)

// AfterSignIn completes the flow directly in the tab the user signed in to.
// The completion payload carries CloseWindow=true: the host may close this
// popup/tab. No resume-record check is made: the deciding state lives in
// this context, and a degraded store must not block a same-tab completion.
func (b *Broker) AfterSignIn(ctx context.Context, acct *Account) (*FlowResult, error) {
	if b == nil {
		return nil, ErrBrokerNotReady
	}
	resume, prepared := b.currentResume()
	if !prepared {
		return nil, ErrFlowNotPrepared
	}

	completion, err := flows.RunDirectCompletion(ctx, accountState(acct), resume, b.completionDeps())
	if err != nil {
		return nil, err
	}
	return flowResult(completion, true), nil
}
