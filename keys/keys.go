package keys

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const derivedKeySize = 32

// ErrRawKeysMissing is an exported constant or variable used by the key layer.
var ErrRawKeysMissing = errors.New("raw key material missing")

// Raw is the account key material returned by the key-fetch capability.
type Raw struct {
	KA []byte
	KB []byte
}

// Relier is the relier-scoped key pair attached to a completion payload.
type Relier struct {
	KAr string `json:"kAr"`
	KBr string `json:"kBr"`
}

// Client fetches raw account key material with a single-use key-fetch token.
// Implementations are asynchronous, fallible network collaborators.
type Client interface {
	AccountKeys(ctx context.Context, keyFetchToken, unwrapBKey string) (*Raw, error)
}

// Deriver derives relier-scoped keys from raw account key material.
type Deriver interface {
	DeriveRelierKeys(ctx context.Context, raw *Raw, uid string) (*Relier, error)
}

// HKDF defines a public type used by goRelier APIs.
//
// HKDF instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HKDF struct {
	Salt []byte
}

// DeriveRelierKeys describes the deriverelierkeys operation and its observable behavior.
//
// DeriveRelierKeys may return an error when input validation, dependency calls, or security checks fail.
// DeriveRelierKeys does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d HKDF) DeriveRelierKeys(_ context.Context, raw *Raw, uid string) (*Relier, error) {
	if raw == nil || len(raw.KA) == 0 || len(raw.KB) == 0 {
		return nil, ErrRawKeysMissing
	}
	if uid == "" {
		return nil, errors.New("uid required")
	}

	kar, err := hkdfSHA256(raw.KA, d.Salt, []byte("gorelier/kAr/"+uid))
	if err != nil {
		return nil, fmt.Errorf("derive kAr: %w", err)
	}
	kbr, err := hkdfSHA256(raw.KB, d.Salt, []byte("gorelier/kBr/"+uid))
	if err != nil {
		return nil, fmt.Errorf("derive kBr: %w", err)
	}

	return &Relier{
		KAr: hex.EncodeToString(kar),
		KBr: hex.EncodeToString(kbr),
	}, nil
}

func hkdfSHA256(ikm, salt, info []byte) ([]byte, error) {
	out := make([]byte, derivedKeySize)
	r := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// StaticClient serves fixed key material; it stands in for the network
// key-fetch capability in tests and examples.
type StaticClient struct {
	Keys Raw
	Err  error
}

// AccountKeys describes the accountkeys operation and its observable behavior.
//
// AccountKeys may return an error when input validation, dependency calls, or security checks fail.
// AccountKeys does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *StaticClient) AccountKeys(_ context.Context, keyFetchToken, unwrapBKey string) (*Raw, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if keyFetchToken == "" || unwrapBKey == "" {
		return nil, ErrRawKeysMissing
	}
	return &Raw{KA: append([]byte(nil), c.Keys.KA...), KB: append([]byte(nil), c.Keys.KB...)}, nil
}
