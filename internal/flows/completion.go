package flows

import (
	"context"
	"time"
)

// AccountState is the slice of account identity a completion needs: a stable
// user id plus, when keys were requested, the single-use token material.
type AccountState struct {
	UID           string
	KeyFetchToken string
	UnwrapBKey    string
}

// ResumeState mirrors the persisted resume-session record.
type ResumeState struct {
	FlowID        string
	ChannelID     string
	State         string
	KeyFetchToken string
	UnwrapBKey    string
	HasOAuth      bool
}

// Completion is the flow-completion payload handed to the notify dependency.
type Completion struct {
	RedirectTarget string
	Code           string
	State          string
	CloseWindow    bool
	KeysRequested  bool
	KeysDerived    bool
	KAr            string
	KBr            string
}

type CompletionMetrics struct {
	FlowCompleted       int
	FlowDeferred        int
	KeysDerived         int
	KeysMissingMaterial int
	NotifySent          int
}

type CompletionErrors struct {
	BrokerNotReady   error
	FlowStateInvalid error
}

type CompletionDeps struct {
	WantsKeys      bool
	EventName      string
	SecondTabDelay time.Duration

	LoadResume         func(context.Context) (ResumeState, bool)
	ClearResume        func(context.Context)
	Authorize          func(context.Context, AccountState) (redirect, code, state string, err error)
	FetchAndDeriveKeys func(context.Context, AccountState) (kar, kbr string, err error)
	VerifyState        func(state, channelID string) error
	Notify             func(context.Context, string, Completion)
	Sleep              func(context.Context, time.Duration) error
	OnRestoreKeys      func(keyFetchToken, unwrapBKey string)

	MetricInc func(int)

	Metrics CompletionMetrics
	Errors  CompletionErrors
}

func normalizeCompletionDeps(deps *CompletionDeps) {
	if deps.LoadResume == nil {
		deps.LoadResume = func(context.Context) (ResumeState, bool) { return ResumeState{}, false }
	}
	if deps.ClearResume == nil {
		deps.ClearResume = func(context.Context) {}
	}
	if deps.VerifyState == nil {
		deps.VerifyState = func(string, string) error { return nil }
	}
	if deps.Notify == nil {
		deps.Notify = func(context.Context, string, Completion) {}
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepUntil
	}
	if deps.FetchAndDeriveKeys == nil {
		deps.FetchAndDeriveKeys = func(context.Context, AccountState) (string, string, error) {
			return "", "", deps.Errors.BrokerNotReady
		}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}

// RunDirectCompletion finishes a flow in the tab that initiated it, right
// after a successful direct sign-in. The host may close this tab, so the
// payload carries CloseWindow. No resume-record check: the deciding state
// lives in this context, and a degraded store must not block a same-tab
// completion.
func RunDirectCompletion(ctx context.Context, acct AccountState, resume ResumeState, deps CompletionDeps) (Completion, error) {
	normalizeCompletionDeps(&deps)

	if deps.Authorize == nil {
		return Completion{}, deps.Errors.BrokerNotReady
	}

	return finishCompletion(ctx, acct, resume, true, deps)
}

// RunOwnedCompletion finishes a flow from a confirmation poll in the
// originating tab. The resume record is reloaded fresh from the store: if a
// verification tab already finished the flow the record is gone and this
// context defers.
func RunOwnedCompletion(ctx context.Context, acct AccountState, deps CompletionDeps) (Completion, bool, error) {
	normalizeCompletionDeps(&deps)

	if deps.Authorize == nil {
		return Completion{}, false, deps.Errors.BrokerNotReady
	}

	resume, ok := deps.LoadResume(ctx)
	if !ok {
		deps.MetricInc(deps.Metrics.FlowDeferred)
		return Completion{}, false, nil
	}

	completion, err := finishCompletion(ctx, acct, resume, false, deps)
	if err != nil {
		return Completion{}, false, err
	}
	return completion, true, nil
}

// RunSecondTabCompletion finishes a flow from the verification/reset tab.
// The originating tab may still be open and racing for the same completion;
// the short delay gives its event bindings time to attach before this
// context re-reads the store. The delay mitigates a known benign
// double-completion race, it does not close it.
func RunSecondTabCompletion(ctx context.Context, acct AccountState, restoreKeys bool, deps CompletionDeps) (Completion, bool, error) {
	normalizeCompletionDeps(&deps)

	if deps.Authorize == nil {
		return Completion{}, false, deps.Errors.BrokerNotReady
	}

	if err := deps.Sleep(ctx, deps.SecondTabDelay); err != nil {
		return Completion{}, false, err
	}

	resume, ok := deps.LoadResume(ctx)
	if !ok {
		// No resumable state in this browser: a peer context owns the
		// flow, or there is no listening host at all.
		deps.MetricInc(deps.Metrics.FlowDeferred)
		return Completion{}, false, nil
	}

	if restoreKeys && deps.WantsKeys && resume.HasOAuth {
		acct.KeyFetchToken = resume.KeyFetchToken
		acct.UnwrapBKey = resume.UnwrapBKey
		if deps.OnRestoreKeys != nil {
			deps.OnRestoreKeys(resume.KeyFetchToken, resume.UnwrapBKey)
		}
	}

	completion, err := finishCompletion(ctx, acct, resume, false, deps)
	if err != nil {
		return Completion{}, false, err
	}
	return completion, true, nil
}

func finishCompletion(ctx context.Context, acct AccountState, resume ResumeState, closeWindow bool, deps CompletionDeps) (Completion, error) {
	if resume.State != "" {
		if err := deps.VerifyState(resume.State, resume.ChannelID); err != nil {
			return Completion{}, err
		}
	}

	redirect, code, state, err := deps.Authorize(ctx, acct)
	if err != nil {
		return Completion{}, err
	}
	if resume.State != "" {
		state = resume.State
	}

	completion := Completion{
		RedirectTarget: redirect,
		Code:           code,
		State:          state,
		CloseWindow:    closeWindow,
		KeysRequested:  deps.WantsKeys,
	}

	if deps.WantsKeys {
		switch {
		case acct.KeyFetchToken == "" || acct.UnwrapBKey == "":
			// Degraded but non-fatal: the payload says keys were
			// requested and could not be derived.
			deps.MetricInc(deps.Metrics.KeysMissingMaterial)
		default:
			kar, kbr, err := deps.FetchAndDeriveKeys(ctx, acct)
			if err != nil {
				return Completion{}, err
			}
			completion.KeysDerived = true
			completion.KAr = kar
			completion.KBr = kbr
			deps.MetricInc(deps.Metrics.KeysDerived)
		}
	}

	deps.Notify(ctx, deps.EventName, completion)
	deps.MetricInc(deps.Metrics.NotifySent)
	deps.MetricInc(deps.Metrics.FlowCompleted)

	// Consume the record so a racing peer's fresh read finds absence and
	// defers instead of double-completing.
	deps.ClearResume(ctx)

	return completion, nil
}

func sleepUntil(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
