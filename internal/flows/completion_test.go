package flows

import (
	"context"
	"errors"
	"testing"
	"time"
)

type completionHarness struct {
	resume    *ResumeState
	cleared   int
	notified  []Completion
	events    []string
	verified  []string
	slept     []time.Duration
	authErr   error
	fetchErr  error
	verifyErr error
	metrics   map[int]int
}

func newCompletionHarness(resume *ResumeState) *completionHarness {
	return &completionHarness{resume: resume, metrics: map[int]int{}}
}

func (h *completionHarness) deps() CompletionDeps {
	return CompletionDeps{
		EventName:      "oauth_complete",
		SecondTabDelay: 25 * time.Millisecond,
		LoadResume: func(context.Context) (ResumeState, bool) {
			if h.resume == nil {
				return ResumeState{}, false
			}
			return *h.resume, true
		},
		ClearResume: func(context.Context) {
			h.cleared++
			h.resume = nil
		},
		Authorize: func(context.Context, AccountState) (string, string, string, error) {
			if h.authErr != nil {
				return "", "", "", h.authErr
			}
			return "https://relier.example/return", "code-1", "authz-state", nil
		},
		FetchAndDeriveKeys: func(_ context.Context, acct AccountState) (string, string, error) {
			if h.fetchErr != nil {
				return "", "", h.fetchErr
			}
			return "kar-" + acct.UID, "kbr-" + acct.UID, nil
		},
		VerifyState: func(state, _ string) error {
			h.verified = append(h.verified, state)
			return h.verifyErr
		},
		Notify: func(_ context.Context, event string, c Completion) {
			h.events = append(h.events, event)
			h.notified = append(h.notified, c)
		},
		Sleep: func(_ context.Context, d time.Duration) error {
			h.slept = append(h.slept, d)
			return nil
		},
		MetricInc: func(id int) { h.metrics[id]++ },
		Metrics: CompletionMetrics{
			FlowCompleted:       1,
			FlowDeferred:        2,
			KeysDerived:         3,
			KeysMissingMaterial: 4,
			NotifySent:          5,
		},
		Errors: CompletionErrors{
			BrokerNotReady: errors.New("broker not ready"),
		},
	}
}

func TestDirectCompletionClosesWindow(t *testing.T) {
	h := newCompletionHarness(nil)

	completion, err := RunDirectCompletion(context.Background(), AccountState{UID: "u1"}, ResumeState{ChannelID: "c1"}, h.deps())
	if err != nil {
		t.Fatalf("RunDirectCompletion failed: %v", err)
	}
	if !completion.CloseWindow {
		t.Fatal("direct completion must request window close")
	}
	if len(h.notified) != 1 || h.events[0] != "oauth_complete" {
		t.Fatalf("expected one oauth_complete notification, got %v", h.events)
	}
	if completion.State != "authz-state" {
		t.Fatalf("expected authorizer state with no signed state, got %q", completion.State)
	}
}

func TestOwnedCompletionDefersOnAbsentRecord(t *testing.T) {
	h := newCompletionHarness(nil)
	deps := h.deps()

	_, completed, err := RunOwnedCompletion(context.Background(), AccountState{UID: "u1"}, deps)
	if err != nil {
		t.Fatalf("RunOwnedCompletion failed: %v", err)
	}
	if completed {
		t.Fatal("expected deferral with no record")
	}
	if len(h.notified) != 0 {
		t.Fatal("deferral must not notify")
	}
	if h.metrics[deps.Metrics.FlowDeferred] != 1 {
		t.Fatal("expected deferred metric increment")
	}
}

func TestOwnedCompletionConsumesRecord(t *testing.T) {
	h := newCompletionHarness(&ResumeState{FlowID: "f1", ChannelID: "c1"})

	completion, completed, err := RunOwnedCompletion(context.Background(), AccountState{UID: "u1"}, h.deps())
	if err != nil {
		t.Fatalf("RunOwnedCompletion failed: %v", err)
	}
	if !completed {
		t.Fatal("expected completion with the record present")
	}
	if completion.CloseWindow {
		t.Fatal("owned completion must not close the window")
	}
	if h.cleared != 1 {
		t.Fatal("completion must consume the record")
	}

	// The consumed record deflects a second attempt.
	_, completed, err = RunOwnedCompletion(context.Background(), AccountState{UID: "u1"}, h.deps())
	if err != nil || completed {
		t.Fatalf("expected deferral after consumption: completed=%v err=%v", completed, err)
	}
}

func TestSecondTabCompletionSleepsBeforeReload(t *testing.T) {
	h := newCompletionHarness(&ResumeState{FlowID: "f1", ChannelID: "c1"})

	_, completed, err := RunSecondTabCompletion(context.Background(), AccountState{UID: "u1"}, false, h.deps())
	if err != nil {
		t.Fatalf("RunSecondTabCompletion failed: %v", err)
	}
	if !completed {
		t.Fatal("expected completion")
	}
	if len(h.slept) != 1 || h.slept[0] != 25*time.Millisecond {
		t.Fatalf("expected the configured delay before the reload, got %v", h.slept)
	}
}

func TestSecondTabCompletionRestoresKeyMaterial(t *testing.T) {
	h := newCompletionHarness(&ResumeState{
		FlowID:        "f1",
		ChannelID:     "c1",
		HasOAuth:      true,
		KeyFetchToken: "kft",
		UnwrapBKey:    "ubk",
	})
	deps := h.deps()
	deps.WantsKeys = true

	var restoredKft, restoredUbk string
	deps.OnRestoreKeys = func(kft, ubk string) {
		restoredKft, restoredUbk = kft, ubk
	}

	completion, completed, err := RunSecondTabCompletion(context.Background(), AccountState{UID: "u1"}, true, deps)
	if err != nil {
		t.Fatalf("RunSecondTabCompletion failed: %v", err)
	}
	if !completed {
		t.Fatal("expected completion")
	}
	if restoredKft != "kft" || restoredUbk != "ubk" {
		t.Fatal("expected persisted token material restored")
	}
	if !completion.KeysDerived || completion.KAr != "kar-u1" {
		t.Fatalf("expected keys derived from restored material: %+v", completion)
	}
}

func TestSecondTabCompletionSkipsRestoreWhenDisabled(t *testing.T) {
	h := newCompletionHarness(&ResumeState{
		FlowID:        "f1",
		ChannelID:     "c1",
		HasOAuth:      true,
		KeyFetchToken: "stale-kft",
		UnwrapBKey:    "stale-ubk",
	})
	deps := h.deps()
	deps.WantsKeys = true
	restored := false
	deps.OnRestoreKeys = func(string, string) { restored = true }

	acct := AccountState{UID: "u1", KeyFetchToken: "fresh-kft", UnwrapBKey: "fresh-ubk"}
	_, completed, err := RunSecondTabCompletion(context.Background(), acct, false, deps)
	if err != nil || !completed {
		t.Fatalf("expected completion: completed=%v err=%v", completed, err)
	}
	if restored {
		t.Fatal("restore must not run when disabled")
	}
}

func TestCompletionKeysNullWhenMaterialMissing(t *testing.T) {
	h := newCompletionHarness(&ResumeState{FlowID: "f1", ChannelID: "c1"})
	deps := h.deps()
	deps.WantsKeys = true

	completion, completed, err := RunOwnedCompletion(context.Background(), AccountState{UID: "u1"}, deps)
	if err != nil {
		t.Fatalf("RunOwnedCompletion failed: %v", err)
	}
	if !completed {
		t.Fatal("missing material must not block completion")
	}
	if !completion.KeysRequested || completion.KeysDerived {
		t.Fatalf("expected requested-but-underived keys: %+v", completion)
	}
	if h.metrics[deps.Metrics.KeysMissingMaterial] != 1 {
		t.Fatal("expected missing-material metric increment")
	}
	if len(h.notified) != 1 {
		t.Fatal("completion must still notify")
	}
}

func TestCompletionKeyFetchFailureAborts(t *testing.T) {
	h := newCompletionHarness(&ResumeState{FlowID: "f1", ChannelID: "c1"})
	h.fetchErr = errors.New("key backend down")
	deps := h.deps()
	deps.WantsKeys = true

	acct := AccountState{UID: "u1", KeyFetchToken: "kft", UnwrapBKey: "ubk"}
	_, completed, err := RunOwnedCompletion(context.Background(), acct, deps)
	if err == nil || completed {
		t.Fatalf("expected failure: completed=%v err=%v", completed, err)
	}
	if len(h.notified) != 0 {
		t.Fatal("a failed completion must not notify")
	}
	if h.cleared != 0 {
		t.Fatal("a failed completion must not consume the record")
	}
}

func TestCompletionVerifiesSignedState(t *testing.T) {
	h := newCompletionHarness(&ResumeState{FlowID: "f1", ChannelID: "c1", State: "signed"})

	completion, completed, err := RunOwnedCompletion(context.Background(), AccountState{UID: "u1"}, h.deps())
	if err != nil || !completed {
		t.Fatalf("expected completion: completed=%v err=%v", completed, err)
	}
	if len(h.verified) != 1 || h.verified[0] != "signed" {
		t.Fatalf("expected the persisted state verified, got %v", h.verified)
	}
	if completion.State != "signed" {
		t.Fatalf("completion must echo the persisted state, got %q", completion.State)
	}
}

func TestCompletionRejectsInvalidState(t *testing.T) {
	h := newCompletionHarness(&ResumeState{FlowID: "f1", ChannelID: "c1", State: "signed"})
	h.verifyErr = errors.New("token invalid")

	_, completed, err := RunOwnedCompletion(context.Background(), AccountState{UID: "u1"}, h.deps())
	if err == nil || completed {
		t.Fatalf("expected state verification failure: completed=%v err=%v", completed, err)
	}
	if len(h.notified) != 0 {
		t.Fatal("invalid state must not notify")
	}
}

func TestCompletionRequiresAuthorizer(t *testing.T) {
	h := newCompletionHarness(&ResumeState{FlowID: "f1", ChannelID: "c1"})
	deps := h.deps()
	deps.Authorize = nil

	if _, _, err := RunOwnedCompletion(context.Background(), AccountState{}, deps); err == nil {
		t.Fatal("expected error with no authorizer")
	}
}

func TestSleepUntilHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleepUntil(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := sleepUntil(context.Background(), 0); err != nil {
		t.Fatalf("zero delay must return immediately: %v", err)
	}
}
