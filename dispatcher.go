package baileys

import (
	"context"
	"time"
)

// verdict is the dispatcher's instruction back to the supervisor loop.
type verdict uint8

const (
	verdictContinue verdict = iota
	verdictRestart
	verdictTerminate
)

// dispatch routes one event to its handler. Handler failures are contained:
// they are logged and counted but never end the session; only connection
// close events can do that.
func (c *Client) dispatch(ctx context.Context, sock Socket, ev Event) verdict {
	start := time.Now()
	defer func() {
		c.metrics.Observe(MetricDispatchLatency, time.Since(start))
	}()

	switch e := ev.(type) {
	case ConnectionUpdate:
		return c.handleConnectionUpdate(ctx, sock, e)

	case CredsUpdate:
		c.handleCredsUpdate(e)

	case MessagesUpsert:
		c.handleMessagesUpsert(ctx, sock, e)

	case MessagesUpdate:
		for _, u := range e.Updates {
			c.log.Info().
				Str("message_id", u.Key.ID).
				Str("chat", u.Key.RemoteJID).
				Str("status", u.Status).
				Msg("message updated")
		}
		c.relay(ctx, e.EventKind(), "", "", nil)

	case MessageReceiptUpdate:
		for _, r := range e.Receipts {
			c.log.Debug().
				Str("message_id", r.Key.ID).
				Str("user", r.UserJID).
				Str("type", r.Type).
				Msg("receipt")
		}
		c.relay(ctx, e.EventKind(), "", "", nil)

	case MessagesReaction:
		for _, r := range e.Reactions {
			c.log.Info().
				Str("message_id", r.Key.ID).
				Str("sender", r.SenderJID).
				Str("reaction", r.Text).
				Msg("reaction")
		}
		c.relay(ctx, e.EventKind(), "", "", nil)

	case PresenceUpdate:
		c.log.Debug().
			Str("chat", e.ChatJID).
			Int("participants", len(e.Presences)).
			Msg("presence update")
		c.relay(ctx, e.EventKind(), e.ChatJID, "", nil)

	case ChatsUpdate:
		c.log.Debug().Int("chats", len(e.Chats)).Msg("chats updated")
		c.relay(ctx, e.EventKind(), "", "", nil)

	case ChatsDelete:
		c.log.Info().Strs("chats", e.JIDs).Msg("chats deleted")
		c.relay(ctx, e.EventKind(), "", "", nil)

	case ContactsUpdate:
		c.handleContactsUpdate(ctx, sock, e)

	case LabelsAssociation:
		c.log.Info().
			Str("label", e.LabelID).
			Str("chat", e.ChatJID).
			Bool("added", e.Added).
			Msg("label association")
		c.relay(ctx, e.EventKind(), e.ChatJID, e.MessageID, nil)

	case LabelsEdit:
		c.log.Info().
			Str("label", e.LabelID).
			Str("name", e.Name).
			Bool("deleted", e.Deleted).
			Msg("label edited")
		c.relay(ctx, e.EventKind(), "", "", nil)

	case Call:
		c.log.Info().
			Str("call_id", e.CallID).
			Str("from", e.FromJID).
			Str("status", e.Status).
			Msg("call")
		c.relay(ctx, e.EventKind(), e.FromJID, "", nil)

	case HistorySet:
		c.log.Info().
			Str("sync_type", e.SyncType).
			Int("chats", len(e.Chats)).
			Int("contacts", len(e.Contacts)).
			Int("messages", len(e.Messages)).
			Int("progress", e.Progress).
			Bool("latest", e.IsLatest).
			Msg("history chunk")
		c.relay(ctx, e.EventKind(), "", "", nil)

	default:
		c.log.Debug().Str("kind", ev.EventKind()).Msg("unhandled event kind")
	}

	return verdictContinue
}

// handleConnectionUpdate tracks the session state and decides between
// restart and termination on close. A close with the logged-out status code
// is terminal; every other close is recoverable.
func (c *Client) handleConnectionUpdate(ctx context.Context, sock Socket, e ConnectionUpdate) verdict {
	if e.QRCode != "" && c.pairingWanted() {
		c.issuePairingCode(ctx, sock)
	}

	switch e.State {
	case ConnectionConnecting:
		c.log.Info().Msg("connecting")

	case ConnectionOpen:
		c.setState(StateOpen)
		c.metrics.Inc(MetricConnectionOpened)
		c.log.Info().Bool("new_login", e.IsNewLogin).Msg("connection open")
		if err := sock.SendPresenceUpdate(ctx, PresenceAvailable, ""); err != nil {
			c.metrics.Inc(MetricHandlerFailures)
			c.log.Warn().Err(err).Msg("failed to announce presence")
		}
		c.relay(ctx, "connection.update", "", "", nil)

	case ConnectionClose:
		c.metrics.Inc(MetricConnectionClosed)

		logEv := c.log.Warn().
			Int("status_code", int(e.StatusCode)).
			Str("reason", e.StatusCode.String())
		if e.Err != nil {
			logEv = logEv.Err(e.Err)
		}
		logEv.Msg("connection closed")

		if e.StatusCode == ReasonLoggedOut {
			return verdictTerminate
		}
		return verdictRestart
	}

	return verdictContinue
}

// handleCredsUpdate persists refreshed credentials synchronously so the
// next attempt loads current state. A store failure is contained; the
// session keeps running with the in-memory credentials.
func (c *Client) handleCredsUpdate(e CredsUpdate) {
	if e.Creds == nil {
		return
	}

	if err := c.credStore.Save(e.Creds); err != nil {
		c.metrics.Inc(MetricHandlerFailures)
		c.log.Error().Err(err).Msg("failed to persist credentials")
		return
	}

	c.creds = e.Creds
	c.metrics.Inc(MetricCredsSaved)
	c.log.Debug().Msg("credentials persisted")
}

// handleContactsUpdate logs contact changes and resolves each contact's
// current profile picture. A failed lookup is expected for contacts with no
// picture or restrictive privacy settings and is logged at debug only.
func (c *Client) handleContactsUpdate(ctx context.Context, sock Socket, e ContactsUpdate) {
	for _, contact := range e.Contacts {
		url, err := sock.ProfilePictureURL(ctx, contact.JID)
		if err != nil {
			c.log.Debug().Err(err).Str("jid", contact.JID).Msg("no profile picture")
			continue
		}
		c.log.Info().
			Str("jid", contact.JID).
			Str("name", contact.Name).
			Str("picture", url).
			Msg("contact updated")
	}
	c.relay(ctx, e.EventKind(), "", "", nil)
}

// relay forwards an event record to the transcript dispatcher.
func (c *Client) relay(ctx context.Context, kind, chatJID, messageID string, err error) {
	if c.transcript == nil {
		return
	}

	entry := TranscriptEntry{
		Timestamp: time.Now(),
		Kind:      kind,
		ChatJID:   chatJID,
		MessageID: messageID,
		Success:   err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	c.transcript.Emit(ctx, entry)
}

func (c *Client) pairingWanted() bool {
	if !c.config.Pairing.Enabled {
		return false
	}
	return c.creds == nil || !c.creds.Registered
}
