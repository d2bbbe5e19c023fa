package goRelier

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	StorageNamespace    string        `env:"GORELIER_STORAGE_NAMESPACE" envDefault:"__gorelier"`
	StorageProbeTimeout time.Duration `env:"GORELIER_STORAGE_PROBE_TIMEOUT" envDefault:"2s"`
	ChannelBufferSize   int           `env:"GORELIER_CHANNEL_BUFFER_SIZE" envDefault:"16"`
	ChannelDropIfFull   bool          `env:"GORELIER_CHANNEL_DROP_IF_FULL" envDefault:"true"`
	CompletionEvent     string        `env:"GORELIER_COMPLETION_EVENT" envDefault:"oauth_complete"`
	SecondTabDelay      time.Duration `env:"GORELIER_SECOND_TAB_DELAY" envDefault:"100ms"`
	FlowStateSecret     string        `env:"GORELIER_FLOW_STATE_SECRET"`
	FlowStateTTL        time.Duration `env:"GORELIER_FLOW_STATE_TTL" envDefault:"1h"`
	FlowStateIssuer     string        `env:"GORELIER_FLOW_STATE_ISSUER" envDefault:"gorelier"`
	MetricsEnabled      bool          `env:"GORELIER_METRICS_ENABLED" envDefault:"true"`
}

// ConfigFromEnv loads broker configuration from environment variables,
// starting from the same defaults as a zero-value [Builder]. Flow-state
// signing turns on iff a secret is configured.
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse broker config: %w", err)
	}

	cfg := defaultConfig()
	cfg.Storage.Namespace = ec.StorageNamespace
	cfg.Storage.ProbeTimeout = ec.StorageProbeTimeout
	cfg.Channel.BufferSize = ec.ChannelBufferSize
	cfg.Channel.DropIfFull = ec.ChannelDropIfFull
	cfg.Completion.EventName = ec.CompletionEvent
	cfg.Completion.SecondTabDelay = ec.SecondTabDelay
	cfg.FlowState.TTL = ec.FlowStateTTL
	cfg.FlowState.Issuer = ec.FlowStateIssuer
	if ec.FlowStateSecret != "" {
		cfg.FlowState.Enabled = true
		cfg.FlowState.Secret = []byte(ec.FlowStateSecret)
	}
	cfg.Metrics.Enabled = ec.MetricsEnabled

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
