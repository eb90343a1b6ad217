package baileys

import "time"

// ConnectionState is the state carried by a [ConnectionUpdate] event.
type ConnectionState uint8

const (
	// ConnectionConnecting means the socket is negotiating a session.
	ConnectionConnecting ConnectionState = iota
	// ConnectionOpen means the session is established.
	ConnectionOpen
	// ConnectionClose means the session ended; StatusCode tells why.
	ConnectionClose
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionConnecting:
		return "connecting"
	case ConnectionOpen:
		return "open"
	case ConnectionClose:
		return "close"
	default:
		return "unknown"
	}
}

// DisconnectReason is the protocol status code attached to a close event.
type DisconnectReason int

const (
	// ReasonLoggedOut means the device was unlinked; the session must not
	// be restarted without the user re-authenticating.
	ReasonLoggedOut DisconnectReason = 401
	// ReasonConnectionLost means the transport dropped mid-session.
	ReasonConnectionLost DisconnectReason = 408
	// ReasonMultideviceMismatch means the account's device list changed.
	ReasonMultideviceMismatch DisconnectReason = 411
	// ReasonConnectionClosed means the server ended the connection.
	ReasonConnectionClosed DisconnectReason = 428
	// ReasonConnectionReplaced means another client took over the session.
	ReasonConnectionReplaced DisconnectReason = 440
	// ReasonBadSession means the session state was rejected by the server.
	ReasonBadSession DisconnectReason = 500
	// ReasonRestartRequired means the server asked for a clean reconnect.
	ReasonRestartRequired DisconnectReason = 515
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonLoggedOut:
		return "logged out"
	case ReasonConnectionLost:
		return "connection lost"
	case ReasonMultideviceMismatch:
		return "multidevice mismatch"
	case ReasonConnectionClosed:
		return "connection closed"
	case ReasonConnectionReplaced:
		return "connection replaced"
	case ReasonBadSession:
		return "bad session"
	case ReasonRestartRequired:
		return "restart required"
	default:
		return "unknown"
	}
}

// Event is the tagged-variant model for everything the socket's event
// stream can deliver. Each kind is a distinct struct; the dispatcher
// handles the full set in one exhaustive switch, so a batch containing any
// mix of kinds is processed one event at a time in delivery order.
type Event interface {
	// EventKind returns the protocol-level event name.
	EventKind() string
}

// ConnectionUpdate reports a change of the socket's connection state.
// QRCode is non-empty whenever a pairing opportunity exists (the device is
// not yet registered and the server is awaiting QR or pairing-code entry).
type ConnectionUpdate struct {
	State      ConnectionState
	StatusCode DisconnectReason
	Err        error
	QRCode     string
	IsNewLogin bool
}

func (ConnectionUpdate) EventKind() string { return "connection.update" }

// CredsUpdate carries refreshed credentials that must be persisted before
// further credential-dependent operations are assumed safe.
type CredsUpdate struct {
	Creds *Credentials
}

func (CredsUpdate) EventKind() string { return "creds.update" }

// MessagesUpsert delivers newly received or appended messages. Type is
// "notify" for live messages and "append" for offline/history fill-ins;
// only notify batches drive triggers and auto-replies.
type MessagesUpsert struct {
	Type      string
	Messages  []Message
	RequestID string
}

func (MessagesUpsert) EventKind() string { return "messages.upsert" }

// MessagesUpdate delivers status changes for known messages.
type MessagesUpdate struct {
	Updates []MessageUpdate
}

func (MessagesUpdate) EventKind() string { return "messages.update" }

// MessageReceiptUpdate delivers delivery/read receipts.
type MessageReceiptUpdate struct {
	Receipts []Receipt
}

func (MessageReceiptUpdate) EventKind() string { return "message-receipt.update" }

// MessagesReaction delivers emoji reactions to known messages.
type MessagesReaction struct {
	Reactions []Reaction
}

func (MessagesReaction) EventKind() string { return "messages.reaction" }

// PresenceUpdate delivers presence changes for the participants of a chat.
type PresenceUpdate struct {
	ChatJID   string
	Presences map[string]Presence
}

func (PresenceUpdate) EventKind() string { return "presence.update" }

// ChatsUpdate delivers chat metadata changes.
type ChatsUpdate struct {
	Chats []Chat
}

func (ChatsUpdate) EventKind() string { return "chats.update" }

// ChatsDelete reports chats removed on another device.
type ChatsDelete struct {
	JIDs []string
}

func (ChatsDelete) EventKind() string { return "chats.delete" }

// ContactsUpdate delivers contact metadata changes.
type ContactsUpdate struct {
	Contacts []Contact
}

func (ContactsUpdate) EventKind() string { return "contacts.update" }

// LabelsAssociation reports a label being attached to or removed from a
// chat or message.
type LabelsAssociation struct {
	LabelID   string
	ChatJID   string
	MessageID string
	Added     bool
}

func (LabelsAssociation) EventKind() string { return "labels.association" }

// LabelsEdit reports a label definition change.
type LabelsEdit struct {
	LabelID string
	Name    string
	Color   int
	Deleted bool
}

func (LabelsEdit) EventKind() string { return "labels.edit" }

// Call reports an incoming or updated call.
type Call struct {
	CallID    string
	FromJID   string
	Status    string
	Timestamp time.Time
}

func (Call) EventKind() string { return "call" }

// HistorySet delivers a chunk of synchronized history.
type HistorySet struct {
	Chats    []Chat
	Contacts []Contact
	Messages []Message
	SyncType string
	Progress int
	IsLatest bool
}

func (HistorySet) EventKind() string { return "messaging-history.set" }
