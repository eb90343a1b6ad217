package baileys

import (
	"errors"

	"github.com/LeonWang2006/Baileys/kvcache"
	"github.com/rs/zerolog"
)

// Builder assembles a [Client] from its collaborators.
//
// Builder instances are intended to be configured during initialization and
// then consumed by a single Build call.
type Builder struct {
	config Config
	log    zerolog.Logger
	hasLog bool

	cache     *kvcache.Client
	credStore CredentialStore
	factory   SocketFactory
	sink      TranscriptSink

	built bool
}

// New creates a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the structured logger used by the client. Without it the
// client logs nowhere.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	b.hasLog = true
	return b
}

// WithCache sets the key-value cache client used for pairing codes. The
// cache outlives session restarts; the client never connects or closes it.
func (b *Builder) WithCache(cache *kvcache.Client) *Builder {
	b.cache = cache
	return b
}

// WithCredentialStore sets the persisted credential collaborator.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.credStore = store
	return b
}

// WithSocketFactory sets the factory that builds one Socket per connection
// attempt.
func (b *Builder) WithSocketFactory(factory SocketFactory) *Builder {
	b.factory = factory
	return b
}

// WithTranscriptSink sets the sink receiving relayed protocol events.
func (b *Builder) WithTranscriptSink(sink TranscriptSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Client. A Builder can be
// used at most once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.credStore == nil {
		return nil, errors.New("credential store required")
	}
	if b.factory == nil {
		return nil, errors.New("socket factory required")
	}
	if cfg.Pairing.Enabled && b.cache == nil {
		return nil, errors.New("pairing requires a cache client")
	}

	log := b.log
	if !b.hasLog {
		log = zerolog.Nop()
	}

	c := &Client{
		config:    cfg,
		log:       log.With().Str("component", "client").Logger(),
		cache:     b.cache,
		credStore: b.credStore,
		factory:   b.factory,
		retries:   newRetryCache(cfg.Retry),
		metrics:   NewMetrics(cfg.Metrics),
	}
	c.transcript = newTranscriptDispatcher(cfg.Transcript, b.sink)

	b.built = true

	return c, nil
}
