package goRelier

import (
	"encoding/json"
	"testing"
)

func TestCompletionResultKeysOmittedWhenNotRequested(t *testing.T) {
	raw, err := json.Marshal(&CompletionResult{Code: "c1"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := wire["keys"]; ok {
		t.Fatal("keys must be omitted when not requested")
	}
	if _, ok := wire["closeWindow"]; !ok {
		t.Fatal("closeWindow must always be present")
	}
}

func TestCompletionResultKeysExplicitNull(t *testing.T) {
	raw, err := json.Marshal(&CompletionResult{KeysRequested: true})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	keysField, ok := wire["keys"]
	if !ok {
		t.Fatal("keys must be present when requested")
	}
	if string(keysField) != "null" {
		t.Fatalf("expected explicit null, got %s", keysField)
	}
}

func TestCompletionResultKeysObject(t *testing.T) {
	raw, err := json.Marshal(&CompletionResult{
		KeysRequested: true,
		Keys:          &RelierKeys{KAr: "a", KBr: "b"},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var wire struct {
		Keys *struct {
			KAr string `json:"kAr"`
			KBr string `json:"kBr"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if wire.Keys == nil || wire.Keys.KAr != "a" || wire.Keys.KBr != "b" {
		t.Fatalf("unexpected keys object: %+v", wire.Keys)
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeDeferred.String() != "deferred" || OutcomeCompleted.String() != "completed" {
		t.Fatal("unexpected outcome strings")
	}
	if Outcome(99).String() != "unknown" {
		t.Fatal("unexpected fallback string")
	}
	var r *FlowResult
	if r.Completed() {
		t.Fatal("nil result must not report completed")
	}
}
