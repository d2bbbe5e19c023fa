package goRelier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/goRelier/keys"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

type mockAuthorizer struct {
	auth  *Authorization
	err   error
	calls int
}

func (a *mockAuthorizer) Authorize(_ context.Context, _ *Account, _ *Relier) (*Authorization, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	if a.auth != nil {
		return a.auth, nil
	}
	return &Authorization{
		RedirectTarget: "https://relier.example/return",
		Code:           "authz-code",
		State:          "relier-state",
	}, nil
}

type notification struct {
	event   string
	payload any
}

// recordingChannel is a synchronous HostChannel capturing every notification.
type recordingChannel struct {
	mu            sync.Mutex
	notifications []notification
}

func (c *recordingChannel) Notify(_ context.Context, event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, notification{event: event, payload: payload})
}

func (c *recordingChannel) sent() []notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notification(nil), c.notifications...)
}

func (c *recordingChannel) only(t *testing.T) notification {
	t.Helper()
	sent := c.sent()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(sent))
	}
	return sent[0]
}

func testKeyClient() *keys.StaticClient {
	return &keys.StaticClient{
		Keys: keys.Raw{
			KA: []byte("ka-material-0123456789abcdef0123"),
			KB: []byte("kb-material-0123456789abcdef0123"),
		},
	}
}

var errKeyBackend = errors.New("key backend down")

type brokerOption func(*Builder)

func withKeyClientErr(err error) brokerOption {
	return func(b *Builder) {
		b.WithKeyClient(&keys.StaticClient{Err: err})
	}
}

func newTestBroker(t *testing.T, rdb *redis.Client, relier *Relier, ch HostChannel, opts ...brokerOption) *Broker {
	t.Helper()

	builder := New().
		WithRedis(rdb).
		WithRelier(relier).
		WithChannel(ch).
		WithAuthorizer(&mockAuthorizer{})
	if relier.WantsKeys {
		builder.WithKeyClient(testKeyClient())
	}
	for _, opt := range opts {
		opt(builder)
	}

	broker, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(broker.Close)
	return broker
}

func preparedBroker(t *testing.T, rdb *redis.Client, relier *Relier, ch HostChannel, opts ...brokerOption) *Broker {
	t.Helper()

	broker := newTestBroker(t, rdb, relier, ch, opts...)
	if err := broker.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	return broker
}

func completionPayload(t *testing.T, n notification) *CompletionResult {
	t.Helper()

	result, ok := n.payload.(*CompletionResult)
	if !ok {
		t.Fatalf("unexpected payload type %T", n.payload)
	}
	return result
}
