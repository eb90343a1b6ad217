package baileys

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/LeonWang2006/Baileys/internal/retrycache"
	"github.com/LeonWang2006/Baileys/kvcache"
	"github.com/rs/zerolog"
)

// LifecycleState describes where the supervisor loop currently is.
type LifecycleState uint8

const (
	// StateStarting means a connection attempt is being assembled.
	StateStarting LifecycleState = iota
	// StateOpen means a session is established and events are flowing.
	StateOpen
	// StateRestarting means the previous attempt ended recoverably and a
	// new one is about to start.
	StateRestarting
	// StateClosing means the supervisor is shutting down.
	StateClosing
	// StateTerminated means the supervisor ended for good.
	StateTerminated
)

func (s LifecycleState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateOpen:
		return "open"
	case StateRestarting:
		return "restarting"
	case StateClosing:
		return "closing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Client supervises one messaging session: it builds a socket per
// connection attempt, dispatches the socket's event stream, restarts on
// recoverable disconnects and terminates on logged-out.
//
// Build a Client through [Builder]; the zero value is not usable.
type Client struct {
	config    Config
	log       zerolog.Logger
	cache     *kvcache.Client
	credStore CredentialStore
	factory   SocketFactory

	retries    *retrycache.Cache
	transcript *transcriptDispatcher
	metrics    *Metrics

	running  atomic.Bool
	state    atomic.Int32
	restarts atomic.Uint64

	// creds mirrors the last loaded or persisted credentials. Only the
	// supervisor goroutine touches it.
	creds *Credentials
}

// outcome is the result of one session attempt.
type outcome uint8

const (
	outcomeRestart outcome = iota
	outcomeTerminated
	outcomeCanceled
)

// Run drives the session supervisor until the session terminates or ctx is
// canceled. A recoverable disconnect starts a fresh attempt after
// RestartDelay; a logged-out close returns [ErrLoggedOut]. Run returns
// [ErrAlreadyRunning] when a supervisor loop is already active on this
// client.
func (c *Client) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)
	defer c.setState(StateTerminated)

	for {
		c.setState(StateStarting)

		out, err := c.runOnce(ctx)
		if err != nil {
			return err
		}

		switch out {
		case outcomeTerminated:
			c.metrics.Inc(MetricLoggedOut)
			c.log.Warn().Msg("session logged out, not restarting")
			return ErrLoggedOut

		case outcomeCanceled:
			c.setState(StateClosing)
			return ctx.Err()

		case outcomeRestart:
			n := c.restarts.Add(1)
			c.metrics.Inc(MetricSessionRestarts)

			limit := c.config.Supervisor.MaxRestarts
			if limit > 0 && n > uint64(limit) {
				c.log.Error().Uint64("restarts", n).Msg("restart limit exceeded")
				return ErrRestartLimit
			}

			c.setState(StateRestarting)
			c.log.Info().Uint64("restart", n).Msg("restarting session")

			if err := c.wait(ctx, c.config.Supervisor.RestartDelay); err != nil {
				c.setState(StateClosing)
				return err
			}
		}
	}
}

// runOnce performs a single session attempt: load credentials, build a
// socket, drain its event stream until it ends or ctx is canceled.
func (c *Client) runOnce(ctx context.Context) (outcome, error) {
	creds, err := c.credStore.Load()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	c.creds = creds

	sock, err := c.factory(creds, c.retryCounter())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSocketUnavailable, err)
	}
	defer sock.Close()

	events := sock.Events()

	for {
		select {
		case <-ctx.Done():
			return outcomeCanceled, nil

		case ev, ok := <-events:
			if !ok {
				// Stream ended without a close event; treat it like a
				// recoverable disconnect.
				c.log.Warn().Msg("event stream ended without close")
				return outcomeRestart, nil
			}

			switch c.dispatch(ctx, sock, ev) {
			case verdictTerminate:
				return outcomeTerminated, nil
			case verdictRestart:
				return outcomeRestart, nil
			}
		}
	}
}

// Close flushes and stops the transcript dispatcher. It does not interrupt
// a running supervisor loop; cancel Run's context for that.
func (c *Client) Close() {
	c.transcript.Close()
}

// State returns the current lifecycle state.
func (c *Client) State() LifecycleState {
	return LifecycleState(c.state.Load())
}

// Restarts returns how many times the session has been restarted.
func (c *Client) Restarts() uint64 {
	return c.restarts.Load()
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// TranscriptDropped returns how many transcript entries were discarded
// under backpressure.
func (c *Client) TranscriptDropped() uint64 {
	return c.transcript.Dropped()
}

func (c *Client) setState(s LifecycleState) {
	c.state.Store(int32(s))
}

// wait sleeps for d unless ctx is canceled first.
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryCounter wraps the retry cache so increments are also counted in the
// metrics.
func (c *Client) retryCounter() RetryCounter {
	return &clientRetryCounter{cache: c.retries, metrics: c.metrics}
}

type clientRetryCounter struct {
	cache   *retrycache.Cache
	metrics *Metrics
}

func (r *clientRetryCounter) Get(messageID string) uint32 {
	return r.cache.Get(messageID)
}

func (r *clientRetryCounter) Increment(messageID string) uint32 {
	r.metrics.Inc(MetricRetryIncrements)
	return r.cache.Increment(messageID)
}
