package stores

import (
	"context"

	"github.com/MrEthical07/goRelier/storage"
)

const resumeKey = "oauth"

// OAuthResume carries the key-derivation material a verification tab needs
// to finish a flow the originating tab started. Present iff the relier
// requested encryption keys before the out-of-band step.
type OAuthResume struct {
	KeyFetchToken   string `json:"keyFetchToken,omitempty"`
	UnwrapBKey      string `json:"unwrapBKey,omitempty"`
	RelierChannelID string `json:"webChannelId,omitempty"`
}

// Record is the persisted resume session for one logical flow. Exactly one
// record exists per store namespace at a time; a new flow overwrites it.
type Record struct {
	FlowID          string       `json:"flowId"`
	RelierChannelID string       `json:"webChannelId"`
	State           string       `json:"state,omitempty"`
	CreatedAt       int64        `json:"createdAt"`
	OAuth           *OAuthResume `json:"oauth,omitempty"`
}

// ResumeStore persists and reloads the resume session. Load always reads the
// backing store, never an in-memory copy: another context may have written
// newer state since this context last looked.
type ResumeStore struct {
	store *storage.Store
}

// NewResumeStore describes the newresumestore operation and its observable behavior.
//
// NewResumeStore may return an error when input validation, dependency calls, or security checks fail.
// NewResumeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewResumeStore(store *storage.Store) *ResumeStore {
	return &ResumeStore{store: store}
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *ResumeStore) Save(ctx context.Context, record *Record) {
	if s == nil || record == nil {
		return
	}
	s.store.Set(ctx, resumeKey, record)
}

// Load reloads the resume session fresh from the store. A missing, malformed,
// or unroutable (empty channel id) record reads as absent.
func (s *ResumeStore) Load(ctx context.Context) (*Record, bool) {
	if s == nil {
		return nil, false
	}

	var record Record
	if !s.store.Get(ctx, resumeKey, &record) {
		return nil, false
	}
	if record.RelierChannelID == "" {
		return nil, false
	}
	return &record, true
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *ResumeStore) Clear(ctx context.Context) {
	if s == nil {
		return
	}
	s.store.Remove(ctx, resumeKey)
}
