package channel

import (
	"context"
	"sync"
	"sync/atomic"
)

// Message defines a public type used by goRelier APIs.
//
// Message instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Message struct {
	ChannelID string `json:"webChannelId"`
	Event     string `json:"event"`
	Payload   any    `json:"data,omitempty"`
}

// Transport is the concrete bus to the hosting shell (a browser message bus,
// a test recorder). Deliver is invoked from the dispatcher goroutine only.
type Transport interface {
	Deliver(ctx context.Context, msg Message)
}

// NoopTransport is an exported constant or variable used by the host channel layer.
type NoopTransport struct{}

// Deliver describes the deliver operation and its observable behavior.
//
// Deliver may return an error when input validation, dependency calls, or security checks fail.
// Deliver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopTransport) Deliver(context.Context, Message) {}

// Config defines a public type used by goRelier APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BufferSize int
	DropIfFull bool
}

// WebChannel defines a public type used by goRelier APIs.
//
// WebChannel instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type WebChannel struct {
	cfg       Config
	channelID string
	transport Transport
	ch        chan Message
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewWebChannel describes the newwebchannel operation and its observable behavior.
//
// NewWebChannel may return an error when input validation, dependency calls, or security checks fail.
// NewWebChannel does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewWebChannel(channelID string, transport Transport, cfg Config) *WebChannel {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if transport == nil {
		transport = NoopTransport{}
	}

	c := &WebChannel{
		cfg:       cfg,
		channelID: channelID,
		transport: transport,
		ch:        make(chan Message, cfg.BufferSize),
		done:      make(chan struct{}),
	}

	c.wg.Add(1)
	go c.run()

	return c
}

func (c *WebChannel) run() {
	defer c.wg.Done()

	for {
		select {
		case msg := <-c.ch:
			c.transport.Deliver(context.Background(), msg)
		case <-c.done:
			for {
				select {
				case msg := <-c.ch:
					c.transport.Deliver(context.Background(), msg)
				default:
					return
				}
			}
		}
	}
}

// Notify enqueues a named event for the host. It always succeeds from the
// caller's point of view: absence of a listening host is not reportable here.
func (c *WebChannel) Notify(ctx context.Context, event string, payload any) {
	if c == nil || c.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	msg := Message{
		ChannelID: c.channelID,
		Event:     event,
		Payload:   payload,
	}

	if c.cfg.DropIfFull {
		select {
		case c.ch <- msg:
		case <-c.done:
		default:
			c.dropped.Add(1)
		}
		return
	}

	select {
	case c.ch <- msg:
	case <-ctx.Done():
	case <-c.done:
	}
}

// ChannelID describes the channelid operation and its observable behavior.
//
// ChannelID may return an error when input validation, dependency calls, or security checks fail.
// ChannelID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *WebChannel) ChannelID() string {
	if c == nil {
		return ""
	}
	return c.channelID
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *WebChannel) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		c.wg.Wait()
	})
}

// Dropped describes the dropped operation and its observable behavior.
//
// Dropped may return an error when input validation, dependency calls, or security checks fail.
// Dropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *WebChannel) Dropped() uint64 {
	if c == nil {
		return 0
	}
	return c.dropped.Load()
}

// Noop is the channel used by contexts with no listening host: every
// notification is accepted and discarded.
type Noop struct{}

// Notify describes the notify operation and its observable behavior.
//
// Notify may return an error when input validation, dependency calls, or security checks fail.
// Notify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (Noop) Notify(context.Context, string, any) {}
