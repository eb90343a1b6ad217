package baileys

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/LeonWang2006/Baileys/internal/retrycache"
	"github.com/LeonWang2006/Baileys/internal/transcript"
)

// Presence is a presence announcement kind.
type Presence string

const (
	// PresenceAvailable marks the client online.
	PresenceAvailable Presence = "available"
	// PresenceUnavailable marks the client offline.
	PresenceUnavailable Presence = "unavailable"
	// PresenceComposing announces active typing.
	PresenceComposing Presence = "composing"
	// PresencePaused announces that typing stopped.
	PresencePaused Presence = "paused"
)

// MessageKey uniquely identifies a message within the protocol.
type MessageKey struct {
	RemoteJID string
	FromMe    bool
	ID        string
}

// Message is the minimal message representation this client inspects.
type Message struct {
	Key       MessageKey
	PushName  string
	Text      string
	Timestamp time.Time
}

// MessageUpdate is a status change for a known message.
type MessageUpdate struct {
	Key    MessageKey
	Status string
}

// Receipt is a delivery or read receipt.
type Receipt struct {
	Key       MessageKey
	UserJID   string
	Type      string
	Timestamp time.Time
}

// Reaction is an emoji reaction to a known message.
type Reaction struct {
	Key       MessageKey
	SenderJID string
	Text      string
}

// Chat is the minimal chat metadata the client relays.
type Chat struct {
	JID         string
	Name        string
	UnreadCount int
}

// Contact is the minimal contact metadata the client relays.
type Contact struct {
	JID  string
	Name string
}

// Credentials is the persisted authentication state of one linked device.
// The cryptographic material is owned by the protocol engine and carried as
// an opaque blob; the client round-trips it through the credential store
// untouched.
type Credentials struct {
	Registered bool            `json:"registered"`
	Platform   string          `json:"platform,omitempty"`
	Me         *Contact        `json:"me,omitempty"`
	Engine     json.RawMessage `json:"engine,omitempty"`
}

// CredentialStore is the external collaborator that persists credentials.
// Save must complete (or retry per that collaborator's own contract) before
// further credential-dependent operations are assumed safe; the client
// calls it synchronously relative to the creds.update event.
type CredentialStore interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
}

// RetryCounter is the view of the retry-counter cache handed to every
// socket. The protocol engine reads it to decide when to stop retrying an
// undecryptable message; counters only increase.
type RetryCounter interface {
	Get(messageID string) uint32
	Increment(messageID string) uint32
}

// Socket is the external protocol engine collaborator: one live connection
// attempt, exposing an ordered event stream and request methods. The client
// never owns its internals; a fresh Socket is created for every attempt and
// abandoned on restart.
type Socket interface {
	// Events returns the ordered event stream for this attempt. The
	// channel is closed when the socket will deliver nothing further.
	Events() <-chan Event

	SendMessage(ctx context.Context, toJID, text string) (MessageKey, error)
	SendPresenceUpdate(ctx context.Context, presence Presence, toJID string) error
	PresenceSubscribe(ctx context.Context, toJID string) error
	ReadMessages(ctx context.Context, keys []MessageKey) error
	RequestPairingCode(ctx context.Context, phoneNumber string) (string, error)
	RequestPlaceholderResend(ctx context.Context, key MessageKey) (string, error)
	FetchMessageHistory(ctx context.Context, count int, oldest MessageKey, oldestTimestamp time.Time) (string, error)
	ProfilePictureURL(ctx context.Context, jid string) (string, error)

	// Close releases the attempt. Pending requests against the socket are
	// implicitly abandoned.
	Close() error
}

// SocketFactory builds a fresh Socket for one connection attempt. The retry
// counter is shared across attempts so a restart never resets counts.
type SocketFactory func(creds *Credentials, retries RetryCounter) (Socket, error)

// TranscriptEntry is one relayed protocol event record.
type TranscriptEntry = transcript.Entry

// TranscriptSink receives relayed protocol events from the client.
type TranscriptSink = transcript.Sink

// NoOpSink is a TranscriptSink that silently discards entries.
type NoOpSink = transcript.NoOpSink

// ChannelSink is a buffered channel-based TranscriptSink.
type ChannelSink = transcript.ChannelSink

// JSONWriterSink is a TranscriptSink writing one JSON line per entry.
type JSONWriterSink = transcript.JSONWriterSink

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return transcript.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a JSONWriterSink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return transcript.NewJSONWriterSink(w)
}

// newRetryCache builds the process-local retry cache from config bounds.
func newRetryCache(cfg RetryConfig) *retrycache.Cache {
	return retrycache.New(retrycache.Config{
		MaxEntries: cfg.MaxEntries,
		MaxAge:     cfg.MaxAge,
	})
}
