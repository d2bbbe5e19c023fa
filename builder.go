package goRelier

import (
	"context"
	"errors"

	"github.com/MrEthical07/goRelier/channel"
	"github.com/MrEthical07/goRelier/flowstate"
	"github.com/MrEthical07/goRelier/internal/stores"
	"github.com/MrEthical07/goRelier/keys"
	"github.com/MrEthical07/goRelier/storage"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goRelier APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	backend    storage.Backend
	relier     *Relier
	channel    HostChannel
	transport  channel.Transport
	authorizer Authorizer
	keyClient  KeyClient
	keyDeriver RelierKeyDeriver

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStorageBackend overrides backend selection entirely; the probe is
// skipped and the store is not considered degraded.
func (b *Builder) WithStorageBackend(backend storage.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRelier describes the withrelier operation and its observable behavior.
//
// WithRelier may return an error when input validation, dependency calls, or security checks fail.
// WithRelier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRelier(relier *Relier) *Builder {
	b.relier = relier
	return b
}

// WithChannel injects a complete host channel. Intended for tests; production
// builds supply a transport and let the broker construct the web channel.
func (b *Builder) WithChannel(ch HostChannel) *Builder {
	b.channel = ch
	return b
}

// WithTransport describes the withtransport operation and its observable behavior.
//
// WithTransport may return an error when input validation, dependency calls, or security checks fail.
// WithTransport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTransport(transport channel.Transport) *Builder {
	b.transport = transport
	return b
}

// WithAuthorizer describes the withauthorizer operation and its observable behavior.
//
// WithAuthorizer may return an error when input validation, dependency calls, or security checks fail.
// WithAuthorizer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuthorizer(authorizer Authorizer) *Builder {
	b.authorizer = authorizer
	return b
}

// WithKeyClient describes the withkeyclient operation and its observable behavior.
//
// WithKeyClient may return an error when input validation, dependency calls, or security checks fail.
// WithKeyClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithKeyClient(client KeyClient) *Builder {
	b.keyClient = client
	return b
}

// WithKeyDeriver describes the withkeyderiver operation and its observable behavior.
//
// WithKeyDeriver may return an error when input validation, dependency calls, or security checks fail.
// WithKeyDeriver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithKeyDeriver(deriver RelierKeyDeriver) *Builder {
	b.keyDeriver = deriver
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Broker, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.relier == nil {
		return nil, errors.New("relier required")
	}
	if b.authorizer == nil {
		return nil, errors.New("authorizer required")
	}
	if b.relier.WantsKeys && b.keyClient == nil {
		return nil, errors.New("relier wants keys but no key client is configured")
	}

	keyDeriver := b.keyDeriver
	if keyDeriver == nil {
		keyDeriver = keys.HKDF{}
	}

	// -------- STORAGE --------
	var store *storage.Store
	if b.backend != nil {
		store = storage.New(b.backend, cfg.Storage.Namespace)
	} else {
		store = storage.Factory(context.Background(), b.redis, cfg.Storage.Namespace, cfg.Storage.ProbeTimeout)
	}

	// -------- FLOW STATE --------
	var stateManager *flowstate.Manager
	if cfg.FlowState.Enabled {
		var err error
		stateManager, err = flowstate.NewManager(flowstate.Config{
			Secret: cfg.FlowState.Secret,
			TTL:    cfg.FlowState.TTL,
			Issuer: cfg.FlowState.Issuer,
		})
		if err != nil {
			return nil, err
		}
	}

	broker := &Broker{
		config:     cfg,
		relier:     b.relier,
		store:      store,
		resume:     stores.NewResumeStore(store),
		injected:   b.channel,
		transport:  b.transport,
		authorizer: b.authorizer,
		keyClient:  b.keyClient,
		keyDeriver: keyDeriver,
		flowState:  stateManager,
		metrics:    NewMetrics(cfg.Metrics),
	}

	return broker, nil
}
