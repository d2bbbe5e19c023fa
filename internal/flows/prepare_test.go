package flows

import (
	"context"
	"errors"
	"testing"
)

type prepareHarness struct {
	resume  *ResumeState
	saved   []ResumeState
	signErr error
	metrics map[int]int
}

func newPrepareHarness(resume *ResumeState) *prepareHarness {
	return &prepareHarness{resume: resume, metrics: map[int]int{}}
}

func (h *prepareHarness) deps(channelID string, verification bool) PrepareDeps {
	return PrepareDeps{
		ChannelID:        channelID,
		VerificationFlow: verification,
		NewFlowID:        func() string { return "flow-1" },
		SignState: func(flowID, channelID string) (string, error) {
			if h.signErr != nil {
				return "", h.signErr
			}
			return "state:" + flowID + ":" + channelID, nil
		},
		LoadResume: func(context.Context) (ResumeState, bool) {
			if h.resume == nil {
				return ResumeState{}, false
			}
			return *h.resume, true
		},
		SaveResume: func(_ context.Context, resume ResumeState) {
			h.saved = append(h.saved, resume)
		},
		MetricInc: func(id int) { h.metrics[id]++ },
		Metrics: PrepareMetrics{
			FlowPrepared: 1,
			ResumeSaved:  2,
			ResumeAbsent: 3,
		},
		Errors: PrepareErrors{
			ChannelMissing: errors.New("relier channel missing"),
		},
	}
}

func TestPrepareInitialLoadPersistsRecord(t *testing.T) {
	h := newPrepareHarness(nil)

	resume, err := RunPrepare(context.Background(), h.deps("chan-1", false))
	if err != nil {
		t.Fatalf("RunPrepare failed: %v", err)
	}
	if resume.FlowID != "flow-1" || resume.ChannelID != "chan-1" {
		t.Fatalf("unexpected resume state: %+v", resume)
	}
	if resume.State != "state:flow-1:chan-1" {
		t.Fatalf("expected signed state, got %q", resume.State)
	}
	if len(h.saved) != 1 || h.saved[0].FlowID != "flow-1" {
		t.Fatalf("expected record persisted immediately, got %v", h.saved)
	}
}

func TestPrepareInitialLoadRequiresChannel(t *testing.T) {
	h := newPrepareHarness(nil)
	deps := h.deps("", false)

	if _, err := RunPrepare(context.Background(), deps); !errors.Is(err, deps.Errors.ChannelMissing) {
		t.Fatalf("expected the channel-missing error, got %v", err)
	}
	if len(h.saved) != 0 {
		t.Fatal("nothing may be persisted without a channel")
	}
}

func TestPrepareSignFailurePropagates(t *testing.T) {
	h := newPrepareHarness(nil)
	h.signErr = errors.New("signer down")

	if _, err := RunPrepare(context.Background(), h.deps("chan-1", false)); !errors.Is(err, h.signErr) {
		t.Fatalf("expected signer error, got %v", err)
	}
	if len(h.saved) != 0 {
		t.Fatal("a failed signing must not persist a record")
	}
}

func TestPrepareVerificationAdoptsRecord(t *testing.T) {
	h := newPrepareHarness(&ResumeState{FlowID: "flow-0", ChannelID: "chan-0", HasOAuth: true})

	resume, err := RunPrepare(context.Background(), h.deps("", true))
	if err != nil {
		t.Fatalf("RunPrepare failed: %v", err)
	}
	if resume.ChannelID != "chan-0" || !resume.HasOAuth {
		t.Fatalf("expected adopted record, got %+v", resume)
	}
	if len(h.saved) != 0 {
		t.Fatal("a verification load must not rewrite the record")
	}
}

func TestPrepareVerificationWithoutRecord(t *testing.T) {
	h := newPrepareHarness(nil)
	deps := h.deps("", true)

	resume, err := RunPrepare(context.Background(), deps)
	if err != nil {
		t.Fatalf("RunPrepare failed: %v", err)
	}
	if resume.ChannelID != "" {
		t.Fatalf("expected empty state with no record, got %+v", resume)
	}
	if h.metrics[deps.Metrics.ResumeAbsent] != 1 {
		t.Fatal("expected resume-absent metric increment")
	}
}
