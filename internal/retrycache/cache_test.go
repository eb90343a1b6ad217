package retrycache

import (
	"fmt"
	"testing"
	"time"
)

func TestIncrementIsMonotonic(t *testing.T) {
	c := New(Config{})

	if got := c.Get("m1"); got != 0 {
		t.Fatalf("expected 0 before any failure, got %d", got)
	}

	for want := uint32(1); want <= 5; want++ {
		if got := c.Increment("m1"); got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}
	if got := c.Get("m1"); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	c := New(Config{MaxEntries: 3})

	c.Increment("a")
	time.Sleep(time.Millisecond)
	c.Increment("b")
	time.Sleep(time.Millisecond)
	c.Increment("c")
	time.Sleep(time.Millisecond)
	c.Increment("d")

	if c.Len() > 3 {
		t.Fatalf("expected at most 3 entries, got %d", c.Len())
	}
	if got := c.Get("a"); got != 0 {
		t.Fatalf("expected oldest entry evicted, got count %d", got)
	}
	if got := c.Get("d"); got != 1 {
		t.Fatalf("expected newest entry kept, got count %d", got)
	}
}

func TestMaxAgeExpiry(t *testing.T) {
	c := New(Config{MaxAge: 10 * time.Millisecond})

	c.Increment("old")
	time.Sleep(25 * time.Millisecond)

	if got := c.Get("old"); got != 0 {
		t.Fatalf("expected aged-out entry to read 0, got %d", got)
	}

	// The next insert sweeps the aged entry out of the map entirely.
	c.Increment("fresh")
	if c.Len() != 1 {
		t.Fatalf("expected only the fresh entry, got %d", c.Len())
	}
}

func TestConcurrentIncrements(t *testing.T) {
	c := New(Config{MaxEntries: 64})
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Increment(fmt.Sprintf("m%d", n%4))
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	var total uint32
	for i := 0; i < 4; i++ {
		total += c.Get(fmt.Sprintf("m%d", i))
	}
	if total != 800 {
		t.Fatalf("expected 800 total increments, got %d", total)
	}
}
