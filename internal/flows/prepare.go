package flows

import (
	"context"
	"time"
)

type PrepareMetrics struct {
	FlowPrepared int
	ResumeSaved  int
	ResumeAbsent int
}

type PrepareErrors struct {
	ChannelMissing error
}

type PrepareDeps struct {
	ChannelID        string
	VerificationFlow bool

	NewFlowID  func() string
	SignState  func(flowID, channelID string) (string, error)
	LoadResume func(context.Context) (ResumeState, bool)
	SaveResume func(context.Context, ResumeState)
	Now        func() time.Time

	MetricInc func(int)

	Metrics PrepareMetrics
	Errors  PrepareErrors
}

func normalizePrepareDeps(deps *PrepareDeps) {
	if deps.NewFlowID == nil {
		deps.NewFlowID = func() string { return "" }
	}
	if deps.LoadResume == nil {
		deps.LoadResume = func(context.Context) (ResumeState, bool) { return ResumeState{}, false }
	}
	if deps.SaveResume == nil {
		deps.SaveResume = func(context.Context, ResumeState) {}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}

// RunPrepare sets a context up for its role in the flow.
//
// A verification load (the out-of-band continuation) adopts the channel id
// from the persisted resume record; when no record exists the user is
// verifying in a second browser whose host is not listening, and the context
// carries on with no channel, and every later completion attempt defers.
//
// A signin/signup load is the flow's initial request: it imports the relier
// channel id, mints a flow id, and persists the initial resume record before
// anything asynchronous can happen, because this context may close before the
// flow completes.
func RunPrepare(ctx context.Context, deps PrepareDeps) (ResumeState, error) {
	normalizePrepareDeps(&deps)

	if deps.VerificationFlow {
		resume, ok := deps.LoadResume(ctx)
		if !ok {
			deps.MetricInc(deps.Metrics.ResumeAbsent)
			return ResumeState{}, nil
		}
		deps.MetricInc(deps.Metrics.FlowPrepared)
		return resume, nil
	}

	if deps.ChannelID == "" {
		return ResumeState{}, deps.Errors.ChannelMissing
	}

	resume := ResumeState{
		FlowID:    deps.NewFlowID(),
		ChannelID: deps.ChannelID,
	}
	if deps.SignState != nil {
		state, err := deps.SignState(resume.FlowID, resume.ChannelID)
		if err != nil {
			return ResumeState{}, err
		}
		resume.State = state
	}

	deps.SaveResume(ctx, resume)
	deps.MetricInc(deps.Metrics.ResumeSaved)
	deps.MetricInc(deps.Metrics.FlowPrepared)

	return resume, nil
}
