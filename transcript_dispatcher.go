package baileys

import (
	"context"
	"sync"
	"sync/atomic"
)

type transcriptDispatcher struct {
	cfg       TranscriptConfig
	sink      TranscriptSink
	ch        chan TranscriptEntry
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newTranscriptDispatcher(cfg TranscriptConfig, sink TranscriptSink) *transcriptDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &transcriptDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan TranscriptEntry, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *transcriptDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case entry := <-d.ch:
			d.sink.Emit(context.Background(), entry)
		case <-d.done:
			for {
				select {
				case entry := <-d.ch:
					d.sink.Emit(context.Background(), entry)
				default:
					return
				}
			}
		}
	}
}

// Emit forwards one transcript entry to the sink. With DropIfFull the entry
// is counted as dropped instead of blocking the event loop.
func (d *transcriptDispatcher) Emit(ctx context.Context, entry TranscriptEntry) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- entry:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- entry:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close drains buffered entries into the sink and stops the dispatcher.
func (d *transcriptDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the number of entries discarded under backpressure.
func (d *transcriptDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
