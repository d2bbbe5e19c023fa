package goRelier

import (
	"context"

	"github.com/MrEthical07/goRelier/internal/flows"
	"github.com/google/uuid"
)

// Prepare sets this context up for its role in the flow and must be called
// before any completion operation.
//
// When the relier carries a verification code this load is the out-of-band
// continuation: the broker adopts the channel id from the persisted resume
// record, and carries on without one when the record is absent (the user is
// verifying in a second browser whose host is not listening, and every later
// completion attempt will defer).
//
// Otherwise this load is the flow's initial request: the broker imports the
// relier channel id, mints a flow id, and persists the resume record
// immediately, since this context may close before the flow completes.
func (b *Broker) Prepare(ctx context.Context) error {
	if b == nil {
		return ErrBrokerNotReady
	}

	deps := flows.PrepareDeps{
		ChannelID:        b.relier.ChannelID,
		VerificationFlow: b.relier.IsVerificationFlow(),
		NewFlowID:        uuid.NewString,
		LoadResume:       b.loadResume,
		SaveResume:       b.saveResume,
		MetricInc: func(id int) {
			b.metricInc(MetricID(id))
		},
		Metrics: flows.PrepareMetrics{
			FlowPrepared: int(MetricFlowPrepared),
			ResumeSaved:  int(MetricResumeSaved),
			ResumeAbsent: int(MetricResumeAbsent),
		},
		Errors: flows.PrepareErrors{
			ChannelMissing: ErrRelierChannelMissing,
		},
	}
	if b.flowState != nil {
		deps.SignState = b.flowState.Sign
	}

	resume, err := flows.RunPrepare(ctx, deps)
	if err != nil {
		return err
	}

	b.setCurrentResume(resume)
	return nil
}
