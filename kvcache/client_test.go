package kvcache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}

	c := New(Config{Addr: mr.Addr(), MaxRetries: 1}, zerolog.Nop())
	if err := c.Connect(context.Background()); err != nil {
		mr.Close()
		t.Fatalf("connect: %v", err)
	}

	return c, mr, func() {
		_ = c.Disconnect()
		mr.Close()
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	if err := c.Set(ctx, "greeting", "hello", 0); err != nil {
		t.Fatalf("set string: %v", err)
	}
	got, err := c.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("get string: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected hello, got %#v", got)
	}

	structured := map[string]any{"phone": "555", "attempts": float64(3)}
	if err := c.Set(ctx, "record", structured, 0); err != nil {
		t.Fatalf("set structured: %v", err)
	}
	got, err = c.Get(ctx, "record")
	if err != nil {
		t.Fatalf("get structured: %v", err)
	}
	if !reflect.DeepEqual(got, structured) {
		t.Fatalf("expected %#v, got %#v", structured, got)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, Nil) {
		t.Fatalf("expected Nil sentinel, got %v", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	if err := c.Set(ctx, "pairing:555", "ABCD-1234", 300*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	d, err := c.TTL(ctx, "pairing:555")
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if d <= 0 || d > 300*time.Second {
		t.Fatalf("expected 0 < ttl <= 300s, got %v", d)
	}
}

func TestTTLMissingAndNoExpiry(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	if _, err := c.TTL(ctx, "absent"); !errors.Is(err, Nil) {
		t.Fatalf("expected Nil for missing key, got %v", err)
	}

	if err := c.Set(ctx, "forever", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	d, err := c.TTL(ctx, "forever")
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if d >= 0 {
		t.Fatalf("expected negative duration for no expiry, got %v", d)
	}
}

func TestServerRejectionDoesNotPoisonConnection(t *testing.T) {
	c, mr, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	// A key of the wrong type makes the server reject the command while
	// the connection stays healthy.
	if _, err := mr.Lpush("queue", "job"); err != nil {
		t.Fatalf("lpush: %v", err)
	}

	_, err := c.Get(ctx, "queue")
	if err == nil {
		t.Fatal("expected error for wrong-type key")
	}
	if errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("server rejection surfaced as connection failure: %v", err)
	}
	if !c.Ready() {
		t.Fatalf("expected client still connected, state %v", c.State())
	}

	// Follow-up commands keep working.
	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set after rejection: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get after rejection: %v %v", got, err)
	}
}

func TestDeleteCountsOnlyExisting(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	removed, err := c.Delete(ctx, "k1", "k2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	exists, err := c.Exists(ctx, "k1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected k1 gone after delete")
	}
}

func TestExpireExistingKey(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	ok, err := c.Expire(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if !ok {
		t.Fatal("expected expire to succeed on existing key")
	}

	ok, err = c.Expire(ctx, "missing", time.Minute)
	if err != nil {
		t.Fatalf("expire missing: %v", err)
	}
	if ok {
		t.Fatal("expected expire to report false for missing key")
	}
}

func TestMSetMGetPreservesOrder(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	err := c.MSet(ctx, map[string]any{
		"a": "one",
		"b": map[string]any{"n": float64(2)},
	})
	if err != nil {
		t.Fatalf("mset: %v", err)
	}

	values, err := c.MGet(ctx, "b", "missing", "a")
	if err != nil {
		t.Fatalf("mget: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if !reflect.DeepEqual(values[0], map[string]any{"n": float64(2)}) {
		t.Fatalf("position 0 mismatch: %#v", values[0])
	}
	if values[1] != nil {
		t.Fatalf("expected nil at missing position, got %#v", values[1])
	}
	if values[2] != "one" {
		t.Fatalf("position 2 mismatch: %#v", values[2])
	}
}

func TestOperationsBeforeConnect(t *testing.T) {
	c := New(Config{Addr: "127.0.0.1:0"}, zerolog.Nop())

	if _, err := c.Get(context.Background(), "x"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := c.Set(context.Background(), "x", "v", 0); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnectFailureIsWrapped(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	c := New(Config{Addr: addr, MaxRetries: 1, ConnectTimeout: time.Second}, zerolog.Nop())
	err = c.Connect(context.Background())
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
	if c.State() != StateFailed {
		t.Fatalf("expected failed state, got %v", c.State())
	}
}

func TestFailedStateIsSticky(t *testing.T) {
	c, mr, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	mr.Close()

	// First call burns the retry budget and surfaces the transport failure.
	_, err := c.Get(ctx, "x")
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
	if c.State() != StateFailed {
		t.Fatalf("expected failed state, got %v", c.State())
	}

	// Failed does not auto-heal: further calls fail fast.
	_, err = c.Get(ctx, "x")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestFreshConnectLeavesFailed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()

	c := New(Config{Addr: "127.0.0.1:1", MaxRetries: 1, ConnectTimeout: 250 * time.Millisecond}, zerolog.Nop())
	if err := c.Connect(context.Background()); !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}

	c.cfg.Addr = mr.Addr()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if !c.Ready() {
		t.Fatal("expected client ready after fresh connect")
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()

	if err := c.Disconnect(); err != nil {
		t.Fatalf("first disconnect: %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %v", c.State())
	}
}

func TestFlushDB(t *testing.T) {
	c, _, done := newTestClient(t)
	defer done()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.FlushDB(ctx); err != nil {
		t.Fatalf("flushdb: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, Nil) {
		t.Fatalf("expected key gone, got %v", err)
	}
}
