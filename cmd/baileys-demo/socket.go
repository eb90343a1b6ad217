package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	baileys "github.com/LeonWang2006/Baileys"
)

// demoFactory builds scripted in-process sockets. The first attempt ends
// with a restart-required close so the supervisor's restart path is visible
// in the demo output; later attempts stay open until interrupted.
type demoFactory struct {
	log zerolog.Logger

	mu       sync.Mutex
	attempts int
}

func newDemoFactory(log zerolog.Logger) *demoFactory {
	return &demoFactory{log: log.With().Str("component", "demo-socket").Logger()}
}

func (f *demoFactory) build(creds *baileys.Credentials, retries baileys.RetryCounter) (baileys.Socket, error) {
	f.mu.Lock()
	f.attempts++
	attempt := f.attempts
	f.mu.Unlock()

	s := &demoSocket{
		log:     f.log,
		events:  make(chan baileys.Event, 16),
		done:    make(chan struct{}),
		retries: retries,
	}
	go s.script(creds, attempt)
	return s, nil
}

// demoSocket feeds a fixed sequence of protocol events into its stream.
type demoSocket struct {
	log     zerolog.Logger
	events  chan baileys.Event
	retries baileys.RetryCounter

	mu   sync.Mutex
	done chan struct{}
}

func (s *demoSocket) emit(ev baileys.Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *demoSocket) pause(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-s.done:
		return false
	}
}

func (s *demoSocket) script(creds *baileys.Credentials, attempt int) {
	defer close(s.events)

	if !s.emit(baileys.ConnectionUpdate{State: baileys.ConnectionConnecting}) {
		return
	}

	if creds == nil || !creds.Registered {
		// Unregistered device: surface a pairing opportunity, then pretend
		// the user completed it.
		if !s.emit(baileys.ConnectionUpdate{
			State:  baileys.ConnectionConnecting,
			QRCode: uuid.NewString(),
		}) {
			return
		}
		if !s.pause(time.Second) {
			return
		}
		if !s.emit(baileys.CredsUpdate{Creds: &baileys.Credentials{
			Registered: true,
			Platform:   "demo",
			Me:         &baileys.Contact{JID: "demo@s.whatsapp.net", Name: "Demo"},
		}}) {
			return
		}
	}

	if !s.emit(baileys.ConnectionUpdate{State: baileys.ConnectionOpen, IsNewLogin: attempt == 1}) {
		return
	}

	senders := []string{"alice@s.whatsapp.net", "bob@s.whatsapp.net"}

	if !s.emit(baileys.ContactsUpdate{Contacts: []baileys.Contact{
		{JID: senders[0], Name: "Alice"},
		{JID: senders[1], Name: "Bob"},
	}}) {
		return
	}

	texts := []string{"hey, are you around?", "ping", "requestPlaceholder", "onDemandHistSync"}

	for i := 0; ; i++ {
		if !s.pause(3 * time.Second) {
			return
		}

		msg := baileys.Message{
			Key: baileys.MessageKey{
				RemoteJID: senders[rand.Intn(len(senders))],
				ID:        uuid.NewString(),
			},
			PushName:  "Demo Sender",
			Text:      texts[rand.Intn(len(texts))],
			Timestamp: time.Now(),
		}
		if !s.emit(baileys.MessagesUpsert{Type: "notify", Messages: []baileys.Message{msg}}) {
			return
		}

		// First attempt drops after a few messages so the supervisor
		// restart is visible.
		if attempt == 1 && i == 2 {
			s.emit(baileys.ConnectionUpdate{
				State:      baileys.ConnectionClose,
				StatusCode: baileys.ReasonRestartRequired,
				Err:        fmt.Errorf("stream errored out"),
			})
			return
		}
	}
}

func (s *demoSocket) Events() <-chan baileys.Event { return s.events }

func (s *demoSocket) SendMessage(_ context.Context, toJID, text string) (baileys.MessageKey, error) {
	s.log.Info().Str("to", toJID).Str("text", text).Msg("message sent")
	return baileys.MessageKey{RemoteJID: toJID, FromMe: true, ID: uuid.NewString()}, nil
}

func (s *demoSocket) SendPresenceUpdate(_ context.Context, presence baileys.Presence, toJID string) error {
	s.log.Info().Str("presence", string(presence)).Str("to", toJID).Msg("presence sent")
	return nil
}

func (s *demoSocket) PresenceSubscribe(_ context.Context, toJID string) error {
	s.log.Debug().Str("jid", toJID).Msg("presence subscribed")
	return nil
}

func (s *demoSocket) ReadMessages(_ context.Context, keys []baileys.MessageKey) error {
	s.log.Debug().Int("count", len(keys)).Msg("messages marked read")
	return nil
}

func (s *demoSocket) RequestPairingCode(_ context.Context, phoneNumber string) (string, error) {
	code := fmt.Sprintf("%08d", rand.Intn(100000000))
	s.log.Info().Str("phone", phoneNumber).Msg("pairing code requested")
	return code[:4] + "-" + code[4:], nil
}

func (s *demoSocket) RequestPlaceholderResend(_ context.Context, key baileys.MessageKey) (string, error) {
	s.retries.Increment(key.ID)
	return uuid.NewString(), nil
}

func (s *demoSocket) FetchMessageHistory(_ context.Context, count int, _ baileys.MessageKey, _ time.Time) (string, error) {
	s.log.Debug().Int("count", count).Msg("history fetch requested")
	return uuid.NewString(), nil
}

func (s *demoSocket) ProfilePictureURL(_ context.Context, jid string) (string, error) {
	return "https://example.invalid/avatar/" + jid, nil
}

func (s *demoSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
