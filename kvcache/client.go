package kvcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	// ErrNotConnected is returned by every store operation attempted while
	// the client is not in the Connected state.
	ErrNotConnected = errors.New("kvcache: not connected")

	// ErrConnectionFailed wraps the underlying cause when the connection
	// could not be established or was lost after the retry budget ran out.
	ErrConnectionFailed = errors.New("kvcache: connection failed")

	// Nil is the absent-key sentinel, mirroring redis.Nil so callers never
	// have to import go-redis to test for a missing key.
	Nil = errors.New("kvcache: key does not exist")
)

// State is the lifecycle state of the client's logical connection.
type State int32

const (
	// StateDisconnected means Connect has not completed or Disconnect ran.
	StateDisconnected State = iota
	// StateConnecting means a Connect call is performing the handshake.
	StateConnecting
	// StateConnected means the client is ready for store operations.
	StateConnected
	// StateFailed means the retry budget was exhausted. Failed is sticky:
	// it never heals on its own, only a fresh Connect leaves it.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	retryBackoffFloor = 50 * time.Millisecond
	retryBackoffCap   = 500 * time.Millisecond

	defaultMaxRetries     = 10
	defaultConnectTimeout = 5 * time.Second
)

// Config holds the network endpoint and reconnect policy of the client.
// The zero value is completed with defaults by New.
type Config struct {
	Addr     string
	Username string
	Password string
	DB       int

	// MaxRetries bounds per-command reconnect attempts. Backoff between
	// attempts is exponential with jitter rather than linear, clamped
	// between 50ms and 500ms.
	MaxRetries int

	// ConnectTimeout bounds the dial phase of each connection attempt.
	ConnectTimeout time.Duration
}

// Client manages one logical connection to the remote key-value store and
// exposes typed operations that fail predictably while disconnected.
// All methods are safe for concurrent use.
type Client struct {
	cfg   Config
	log   zerolog.Logger
	state atomic.Int32

	mu  sync.Mutex
	rdb *redis.Client
}

// New creates an unconnected Client. Callers must Connect before issuing
// store operations.
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}

	return &Client{
		cfg: cfg,
		log: log.With().Str("component", "kvcache").Logger(),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Ready reports whether Connect completed successfully and no fatal error
// has been observed since.
func (c *Client) Ready() bool {
	return c.State() == StateConnected
}

// Connect establishes the underlying socket and performs the protocol
// handshake. It does not retry beyond the configured per-command budget;
// on failure the client transitions to Failed and the cause is wrapped in
// [ErrConnectionFailed]. Connecting an already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == StateConnected {
		return nil
	}
	c.state.Store(int32(StateConnecting))

	if c.rdb != nil {
		_ = c.rdb.Close()
		c.rdb = nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            c.cfg.Addr,
		Username:        c.cfg.Username,
		Password:        c.cfg.Password,
		DB:              c.cfg.DB,
		MaxRetries:      c.cfg.MaxRetries,
		MinRetryBackoff: retryBackoffFloor,
		MaxRetryBackoff: retryBackoffCap,
		DialTimeout:     c.cfg.ConnectTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		c.state.Store(int32(StateFailed))
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	c.rdb = rdb
	c.state.Store(int32(StateConnected))
	c.log.Debug().Str("addr", c.cfg.Addr).Int("db", c.cfg.DB).Msg("cache connected")
	return nil
}

// Disconnect gracefully closes the connection. It is idempotent: calling it
// while not connected is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb == nil {
		c.state.Store(int32(StateDisconnected))
		return nil
	}

	err := c.rdb.Close()
	c.rdb = nil
	c.state.Store(int32(StateDisconnected))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return nil
}

func (c *Client) client() (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb == nil || c.State() != StateConnected {
		return nil, ErrNotConnected
	}
	return c.rdb, nil
}

// fail marks the connection Failed and wraps the cause. Context
// cancellations and server reply errors pass through without a state
// change: in both cases the connection itself is fine.
func (c *Client) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		c.log.Warn().Err(err).Str("op", op).Msg("cache command rejected")
		return fmt.Errorf("kvcache: %s: %v", op, err)
	}

	c.state.Store(int32(StateFailed))
	c.log.Error().Err(err).Str("op", op).Msg("cache command failed, retry budget exhausted")
	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}

// Set encodes value through the codec and stores it under key. A positive
// ttl attaches an expiry; zero or negative stores without one.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	rdb, err := c.client()
	if err != nil {
		return err
	}

	encoded, err := Encode(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}

	if err := rdb.Set(ctx, key, encoded, ttl).Err(); err != nil {
		return c.fail("set", err)
	}
	return nil
}

// Get returns the decoded value stored under key, or [Nil] when the key
// does not exist.
func (c *Client) Get(ctx context.Context, key string) (any, error) {
	rdb, err := c.client()
	if err != nil {
		return nil, err
	}

	s, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, Nil
		}
		return nil, c.fail("get", err)
	}

	return Decode(s), nil
}

// Delete removes the given keys and returns the count actually removed,
// zero when none existed.
func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	rdb, err := c.client()
	if err != nil {
		return 0, err
	}

	removed, err := rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, c.fail("delete", err)
	}
	return removed, nil
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	rdb, err := c.client()
	if err != nil {
		return false, err
	}

	n, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, c.fail("exists", err)
	}
	return n > 0, nil
}

// TTL returns the remaining lifetime of key. Keys without an expiry report
// a negative duration; a missing key reports [Nil].
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	rdb, err := c.client()
	if err != nil {
		return 0, err
	}

	d, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, c.fail("ttl", err)
	}
	// go-redis passes the protocol sentinels through unscaled: -2ns for a
	// missing key, -1ns for a key without expiry.
	if d == time.Duration(-2) {
		return 0, Nil
	}
	return d, nil
}

// Expire attaches an expiry to an existing key and reports whether the key
// was present.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	rdb, err := c.client()
	if err != nil {
		return false, err
	}

	ok, err := rdb.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, c.fail("expire", err)
	}
	return ok, nil
}

// MSet stores every entry of values in one round trip, each encoded through
// the codec. Entries are stored without expiry.
func (c *Client) MSet(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	rdb, err := c.client()
	if err != nil {
		return err
	}

	pairs := make([]any, 0, len(values)*2)
	for k, v := range values {
		encoded, err := Encode(v)
		if err != nil {
			return err
		}
		pairs = append(pairs, k, encoded)
	}

	if err := rdb.MSet(ctx, pairs...).Err(); err != nil {
		return c.fail("mset", err)
	}
	return nil
}

// MGet returns the decoded values for keys, position-aligned with the
// input. Missing keys yield a nil entry at their position.
func (c *Client) MGet(ctx context.Context, keys ...string) ([]any, error) {
	if len(keys) == 0 {
		return []any{}, nil
	}

	rdb, err := c.client()
	if err != nil {
		return nil, err
	}

	raw, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, c.fail("mget", err)
	}

	values := make([]any, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			values[i] = nil
			continue
		}
		values[i] = Decode(s)
	}
	return values, nil
}

// FlushDB removes every key in the selected logical database. Destructive;
// intended for tests and resets only.
func (c *Client) FlushDB(ctx context.Context) error {
	rdb, err := c.client()
	if err != nil {
		return err
	}

	c.log.Warn().Int("db", c.cfg.DB).Msg("flushing cache database")
	if err := rdb.FlushDB(ctx).Err(); err != nil {
		return c.fail("flushdb", err)
	}
	return nil
}

// FlushAll removes every key in every logical database. Destructive;
// intended for tests and resets only.
func (c *Client) FlushAll(ctx context.Context) error {
	rdb, err := c.client()
	if err != nil {
		return err
	}

	c.log.Warn().Msg("flushing all cache databases")
	if err := rdb.FlushAll(ctx).Err(); err != nil {
		return c.fail("flushall", err)
	}
	return nil
}

// Ping returns a point-in-time availability check and its latency.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	rdb, err := c.client()
	if err != nil {
		return 0, err
	}

	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return time.Since(start), c.fail("ping", err)
	}
	return time.Since(start), nil
}
