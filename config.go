package goRelier

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goRelier APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Storage    StorageConfig
	Channel    ChannelConfig
	Completion CompletionConfig
	FlowState  FlowStateConfig
	Metrics    MetricsConfig
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig defines a public type used by goRelier APIs.
//
// StorageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StorageConfig struct {
	Namespace    string
	ProbeTimeout time.Duration
}

/*
====================================
CHANNEL CONFIG
====================================
*/

// ChannelConfig defines a public type used by goRelier APIs.
//
// ChannelConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChannelConfig struct {
	BufferSize int
	DropIfFull bool
}

/*
====================================
COMPLETION CONFIG
====================================
*/

// CompletionConfig defines a public type used by goRelier APIs.
//
// CompletionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CompletionConfig struct {
	EventName string

	// SecondTabDelay is the pause a verification/reset tab takes before
	// re-reading the resume record and completing. It gives the
	// originating tab's bindings time to attach when both contexts race
	// for the same completion. A mitigation, not a guarantee.
	SecondTabDelay time.Duration
}

/*
====================================
FLOW STATE CONFIG
====================================
*/

// FlowStateConfig defines a public type used by goRelier APIs.
//
// FlowStateConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowStateConfig struct {
	Enabled bool
	Secret  []byte
	TTL     time.Duration
	Issuer  string
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goRelier APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Namespace:    "__gorelier",
			ProbeTimeout: 2 * time.Second,
		},
		Channel: ChannelConfig{
			BufferSize: 16,
			DropIfFull: true,
		},
		Completion: CompletionConfig{
			EventName:      EventOAuthComplete,
			SecondTabDelay: 100 * time.Millisecond,
		},
		FlowState: FlowStateConfig{
			Enabled: false,
			TTL:     time.Hour,
			Issuer:  "gorelier",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.FlowState.Secret = append([]byte(nil), cfg.FlowState.Secret...)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Namespace) == "" {
		return errors.New("storage namespace required")
	}
	if c.Storage.ProbeTimeout < 0 {
		return errors.New("storage probe timeout must not be negative")
	}
	if c.Channel.BufferSize < 0 {
		return errors.New("channel buffer size must not be negative")
	}
	if strings.TrimSpace(c.Completion.EventName) == "" {
		return errors.New("completion event name required")
	}
	if c.Completion.SecondTabDelay < 0 || c.Completion.SecondTabDelay > 10*time.Second {
		return errors.New("second tab delay out of range")
	}
	if c.FlowState.Enabled && len(c.FlowState.Secret) == 0 {
		return errors.New("flow state requires a secret")
	}
	return nil
}
