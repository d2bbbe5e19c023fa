package goRelier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/goRelier/channel"
	"github.com/MrEthical07/goRelier/flowstate"
	"github.com/MrEthical07/goRelier/internal/flows"
	"github.com/MrEthical07/goRelier/internal/stores"
	"github.com/MrEthical07/goRelier/storage"
)

// Broker defines a public type used by goRelier APIs.
//
// Broker instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Broker struct {
	config     Config
	relier     *Relier
	store      *storage.Store
	resume     *stores.ResumeStore
	injected   HostChannel
	transport  channel.Transport
	authorizer Authorizer
	keyClient  KeyClient
	keyDeriver RelierKeyDeriver
	flowState  *flowstate.Manager
	metrics    *Metrics

	mu       sync.Mutex
	current  flows.ResumeState
	prepared bool
	owned    *channel.WebChannel
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Broker) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	owned := b.owned
	b.owned = nil
	b.mu.Unlock()

	if owned != nil {
		owned.Close()
	}
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Broker) MetricsSnapshot() MetricsSnapshot {
	if b == nil || b.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return b.metrics.Snapshot()
}

// IsStorageDegraded reports whether resume state is held by the non-durable
// fallback backend. Callers use it to warn that flows cannot resume across a
// reload.
func (b *Broker) IsStorageDegraded() bool {
	return b == nil || b.store.IsDegraded()
}

// NotificationsDropped describes the notificationsdropped operation and its observable behavior.
//
// NotificationsDropped may return an error when input validation, dependency calls, or security checks fail.
// NotificationsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Broker) NotificationsDropped() uint64 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	owned := b.owned
	b.mu.Unlock()
	return owned.Dropped()
}

func (b *Broker) metricInc(id MetricID) {
	if b == nil || b.metrics == nil {
		return
	}
	b.metrics.Inc(id)
}

func (b *Broker) currentResume() (flows.ResumeState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.prepared
}

func (b *Broker) setCurrentResume(resume flows.ResumeState) {
	b.mu.Lock()
	b.current = resume
	b.prepared = true
	b.mu.Unlock()
}

// hostChannel returns the injected channel when one was supplied (tests), and
// otherwise lazily builds the web channel with the channel id in effect for
// this flow, which may have been adopted from the resume record.
func (b *Broker) hostChannel() HostChannel {
	if b.injected != nil {
		return b.injected
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.owned != nil {
		return b.owned
	}

	channelID := b.current.ChannelID
	if channelID == "" {
		channelID = b.relier.ChannelID
	}
	if channelID == "" {
		return channel.Noop{}
	}

	b.owned = channel.NewWebChannel(channelID, b.transport, channel.Config{
		BufferSize: b.config.Channel.BufferSize,
		DropIfFull: b.config.Channel.DropIfFull,
	})
	return b.owned
}

func (b *Broker) loadResume(ctx context.Context) (flows.ResumeState, bool) {
	record, ok := b.resume.Load(ctx)
	if !ok {
		return flows.ResumeState{}, false
	}

	resume := flows.ResumeState{
		FlowID:    record.FlowID,
		ChannelID: record.RelierChannelID,
		State:     record.State,
	}
	if record.OAuth != nil {
		resume.HasOAuth = true
		resume.KeyFetchToken = record.OAuth.KeyFetchToken
		resume.UnwrapBKey = record.OAuth.UnwrapBKey
	}
	return resume, true
}

func (b *Broker) saveResume(ctx context.Context, resume flows.ResumeState) {
	record := &stores.Record{
		FlowID:          resume.FlowID,
		RelierChannelID: resume.ChannelID,
		State:           resume.State,
		CreatedAt:       time.Now().Unix(),
	}
	if resume.HasOAuth {
		record.OAuth = &stores.OAuthResume{
			KeyFetchToken:   resume.KeyFetchToken,
			UnwrapBKey:      resume.UnwrapBKey,
			RelierChannelID: resume.ChannelID,
		}
	}
	b.resume.Save(ctx, record)
}

func (b *Broker) verifyFlowState(state, channelID string) error {
	if b.flowState == nil || state == "" {
		return nil
	}

	claims, err := b.flowState.Verify(state)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlowStateInvalid, err)
	}
	if claims.ChannelID != "" && channelID != "" && claims.ChannelID != channelID {
		return fmt.Errorf("%w: channel id mismatch", ErrFlowStateInvalid)
	}
	return nil
}

func (b *Broker) authorize(ctx context.Context, acct flows.AccountState) (string, string, string, error) {
	auth, err := b.authorizer.Authorize(ctx, &Account{
		UID:           acct.UID,
		KeyFetchToken: acct.KeyFetchToken,
		UnwrapBKey:    acct.UnwrapBKey,
	}, b.relier)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}
	if auth == nil {
		return "", "", "", ErrAuthorizationFailed
	}
	return auth.RedirectTarget, auth.Code, auth.State, nil
}

func (b *Broker) fetchAndDeriveKeys(ctx context.Context, acct flows.AccountState) (string, string, error) {
	if b.keyClient == nil || b.keyDeriver == nil {
		return "", "", ErrKeyCapabilityMissing
	}

	raw, err := b.keyClient.AccountKeys(ctx, acct.KeyFetchToken, acct.UnwrapBKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}
	derived, err := b.keyDeriver.DeriveRelierKeys(ctx, raw, acct.UID)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	return derived.KAr, derived.KBr, nil
}

func (b *Broker) notifyHost(ctx context.Context, event string, completion flows.Completion) {
	b.hostChannel().Notify(ctx, event, completionResult(completion))
}

func (b *Broker) completionDeps() flows.CompletionDeps {
	return flows.CompletionDeps{
		WantsKeys:          b.relier.WantsKeys,
		EventName:          b.config.Completion.EventName,
		SecondTabDelay:     b.config.Completion.SecondTabDelay,
		LoadResume:         b.loadResume,
		ClearResume:        b.resume.Clear,
		Authorize:          b.authorize,
		FetchAndDeriveKeys: b.fetchAndDeriveKeys,
		VerifyState:        b.verifyFlowState,
		Notify:             b.notifyHost,
		MetricInc: func(id int) {
			b.metricInc(MetricID(id))
		},
		Metrics: flows.CompletionMetrics{
			FlowCompleted:       int(MetricFlowCompleted),
			FlowDeferred:        int(MetricFlowDeferred),
			KeysDerived:         int(MetricKeysDerived),
			KeysMissingMaterial: int(MetricKeysMissingMaterial),
			NotifySent:          int(MetricNotifySent),
		},
		Errors: flows.CompletionErrors{
			BrokerNotReady:   ErrBrokerNotReady,
			FlowStateInvalid: ErrFlowStateInvalid,
		},
	}
}

func accountState(acct *Account) flows.AccountState {
	if acct == nil {
		return flows.AccountState{}
	}
	return flows.AccountState{
		UID:           acct.UID,
		KeyFetchToken: acct.KeyFetchToken,
		UnwrapBKey:    acct.UnwrapBKey,
	}
}

func completionResult(completion flows.Completion) *CompletionResult {
	result := &CompletionResult{
		RedirectTarget: completion.RedirectTarget,
		Code:           completion.Code,
		State:          completion.State,
		CloseWindow:    completion.CloseWindow,
		KeysRequested:  completion.KeysRequested,
	}
	if completion.KeysDerived {
		result.Keys = &RelierKeys{KAr: completion.KAr, KBr: completion.KBr}
	}
	return result
}

func flowResult(completion flows.Completion, completed bool) *FlowResult {
	if !completed {
		return &FlowResult{Outcome: OutcomeDeferred}
	}
	return &FlowResult{
		Outcome:    OutcomeCompleted,
		Completion: completionResult(completion),
	}
}
