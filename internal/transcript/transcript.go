package transcript

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Entry is the canonical record of one observed protocol event, used by the
// internal dispatcher and re-exported at the root package.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      string            `json:"kind"`
	ChatJID   string            `json:"chat_jid,omitempty"`
	MessageID string            `json:"message_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives relayed transcript entries.
type Sink interface {
	Emit(ctx context.Context, entry Entry)
}

// NoOpSink drops transcript entries.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Entry) {}

// ChannelSink writes transcript entries into a buffered channel.
type ChannelSink struct {
	entries chan Entry
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		entries: make(chan Entry, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, entry Entry) {
	select {
	case s.entries <- entry:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Entries() <-chan Entry {
	return s.entries
}

// JSONWriterSink writes one JSON object per line. This is the sink the demo
// binary points at stdout to relay protocol events to the console.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, entry Entry) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
