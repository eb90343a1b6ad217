package baileys

import (
	"context"
	"sync"
	"testing"
)

// collectingSink records entries for inspection; it can be made slow to
// force backpressure.
type collectingSink struct {
	mu      sync.Mutex
	entries []TranscriptEntry
	block   chan struct{}
}

func (s *collectingSink) Emit(_ context.Context, entry TranscriptEntry) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *collectingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestTranscriptDispatcherDeliversAndDrains(t *testing.T) {
	sink := &collectingSink{}
	d := newTranscriptDispatcher(TranscriptConfig{Enabled: true, BufferSize: 8}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), TranscriptEntry{Kind: "messages.upsert"})
	}
	d.Close()

	if got := sink.count(); got != 5 {
		t.Fatalf("sink received %d entries, want 5", got)
	}
	if got := d.Dropped(); got != 0 {
		t.Fatalf("Dropped = %d, want 0", got)
	}
}

func TestTranscriptDispatcherDropsWhenFull(t *testing.T) {
	sink := &collectingSink{block: make(chan struct{})}
	d := newTranscriptDispatcher(TranscriptConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// The worker blocks on the first delivered entry; fill the buffer and
	// then overflow it.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), TranscriptEntry{Kind: "presence.update"})
	}

	if got := d.Dropped(); got == 0 {
		t.Fatal("Dropped = 0, want at least one dropped entry")
	}

	close(sink.block)
	d.Close()
}

func TestTranscriptDispatcherDisabledIsNil(t *testing.T) {
	d := newTranscriptDispatcher(TranscriptConfig{Enabled: false}, &collectingSink{})
	if d != nil {
		t.Fatal("disabled dispatcher should be nil")
	}

	// All methods must be safe on the nil dispatcher.
	d.Emit(context.Background(), TranscriptEntry{})
	d.Close()
	if got := d.Dropped(); got != 0 {
		t.Fatalf("Dropped on nil = %d, want 0", got)
	}
}

func TestTranscriptDispatcherEmitAfterClose(t *testing.T) {
	sink := &collectingSink{}
	d := newTranscriptDispatcher(TranscriptConfig{Enabled: true, BufferSize: 4}, sink)

	d.Close()
	d.Emit(context.Background(), TranscriptEntry{Kind: "call"})
	d.Close() // idempotent

	if got := sink.count(); got != 0 {
		t.Fatalf("sink received %d entries after close, want 0", got)
	}
}
