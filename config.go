package baileys

import (
	"errors"
	"strings"
	"time"
)

// Config defines the externally supplied configuration of the client.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Cache      CacheConfig
	Pairing    PairingConfig
	AutoReply  AutoReplyConfig
	Supervisor SupervisorConfig
	Retry      RetryConfig
	Transcript TranscriptConfig
	Metrics    MetricsConfig
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig is the network endpoint and reconnect policy of the
// key-value cache. It maps onto kvcache.Config when the demo wiring builds
// the cache client.
type CacheConfig struct {
	Addr           string
	Username       string
	Password       string
	DB             int
	MaxRetries     int
	ConnectTimeout time.Duration
}

/*
====================================
PAIRING CONFIG
====================================
*/

// PairingConfig controls pairing-code issuance for an unregistered device.
type PairingConfig struct {
	Enabled     bool
	PhoneNumber string
	CodeTTL     time.Duration
	KeyPrefix   string
}

/*
====================================
AUTO-REPLY CONFIG
====================================
*/

// AutoReplyConfig controls the optional canned reply to inbound messages.
// The delays space out the fixed presence choreography (read, subscribe,
// composing, paused, send) that emulates human typing latency; the steps
// are always sequential and never reordered.
type AutoReplyConfig struct {
	Enabled        bool
	Text           string
	ComposingDelay time.Duration
	PausedDelay    time.Duration
}

/*
====================================
SUPERVISOR CONFIG
====================================
*/

// SupervisorConfig bounds the restart loop. MaxRestarts of zero means
// unbounded; the restart count is always logged either way.
type SupervisorConfig struct {
	MaxRestarts  int
	RestartDelay time.Duration
}

/*
====================================
RETRY COUNTER CONFIG
====================================
*/

// RetryConfig bounds the in-process message retry-counter cache.
type RetryConfig struct {
	MaxEntries int
	MaxAge     time.Duration
}

/*
====================================
TRANSCRIPT CONFIG
====================================
*/

// TranscriptConfig controls the buffered transcript dispatcher.
type TranscriptConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration the demo ships with: pairing and
// auto-reply off, transcript and metrics on, unbounded restarts.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Addr:           "127.0.0.1:6379",
			MaxRetries:     10,
			ConnectTimeout: 5 * time.Second,
		},
		Pairing: PairingConfig{
			CodeTTL:   300 * time.Second,
			KeyPrefix: "pairing",
		},
		AutoReply: AutoReplyConfig{
			Text:           "Hello there! This is an automated reply.",
			ComposingDelay: 500 * time.Millisecond,
			PausedDelay:    2000 * time.Millisecond,
		},
		Supervisor: SupervisorConfig{
			RestartDelay: time.Second,
		},
		Retry: RetryConfig{
			MaxEntries: 512,
			MaxAge:     time.Hour,
		},
		Transcript: TranscriptConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate checks the configuration for internally inconsistent values.
func (c Config) Validate() error {
	if c.Cache.MaxRetries < 0 {
		return errors.New("cache MaxRetries must not be negative")
	}
	if c.Cache.ConnectTimeout < 0 {
		return errors.New("cache ConnectTimeout must not be negative")
	}

	if c.Pairing.Enabled {
		if strings.TrimSpace(c.Pairing.PhoneNumber) == "" {
			return errors.New("pairing requires a phone number")
		}
		if c.Pairing.CodeTTL <= 0 {
			return errors.New("pairing CodeTTL must be positive")
		}
		if strings.TrimSpace(c.Pairing.KeyPrefix) == "" {
			return errors.New("pairing KeyPrefix must not be empty")
		}
	}

	if c.AutoReply.Enabled && strings.TrimSpace(c.AutoReply.Text) == "" {
		return errors.New("auto-reply requires a reply text")
	}
	if c.AutoReply.ComposingDelay < 0 || c.AutoReply.PausedDelay < 0 {
		return errors.New("auto-reply delays must not be negative")
	}

	if c.Supervisor.MaxRestarts < 0 {
		return errors.New("supervisor MaxRestarts must not be negative")
	}
	if c.Supervisor.RestartDelay < 0 {
		return errors.New("supervisor RestartDelay must not be negative")
	}

	if c.Retry.MaxEntries < 0 {
		return errors.New("retry MaxEntries must not be negative")
	}
	if c.Retry.MaxAge < 0 {
		return errors.New("retry MaxAge must not be negative")
	}

	if c.Transcript.Enabled && c.Transcript.BufferSize < 0 {
		return errors.New("transcript BufferSize must not be negative")
	}

	return nil
}
