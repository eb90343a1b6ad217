package baileys

import (
	"context"
	"strings"
)

// Trigger phrases recognized in inbound message text. An exact match (after
// trimming whitespace) invokes the corresponding socket request instead of
// the auto-reply.
const (
	triggerPlaceholderResend = "requestPlaceholder"
	triggerOnDemandHistory   = "onDemandHistSync"
)

// historyFetchCount is how many messages an on-demand history request asks
// for, anchored at the triggering message.
const historyFetchCount = 50

// handleMessagesUpsert inspects each delivered message. Only "notify"
// batches (live messages) drive triggers and auto-replies; "append" batches
// are relayed and logged only.
func (c *Client) handleMessagesUpsert(ctx context.Context, sock Socket, e MessagesUpsert) {
	for _, m := range e.Messages {
		c.metrics.Inc(MetricMessagesReceived)

		c.log.Info().
			Str("type", e.Type).
			Str("chat", m.Key.RemoteJID).
			Str("message_id", m.Key.ID).
			Str("push_name", m.PushName).
			Bool("from_me", m.Key.FromMe).
			Msg("message received")
		c.relay(ctx, e.EventKind(), m.Key.RemoteJID, m.Key.ID, nil)

		if e.Type != "notify" {
			continue
		}

		switch strings.TrimSpace(m.Text) {
		case triggerPlaceholderResend:
			c.requestPlaceholderResend(ctx, sock, m)

		case triggerOnDemandHistory:
			c.requestHistory(ctx, sock, m)

		default:
			if c.config.AutoReply.Enabled && !m.Key.FromMe {
				c.autoReply(ctx, sock, m)
			}
		}
	}
}

func (c *Client) requestPlaceholderResend(ctx context.Context, sock Socket, m Message) {
	id, err := sock.RequestPlaceholderResend(ctx, m.Key)
	if err != nil {
		c.metrics.Inc(MetricHandlerFailures)
		c.log.Error().Err(err).Str("message_id", m.Key.ID).Msg("placeholder resend failed")
		c.relay(ctx, "placeholder.resend", m.Key.RemoteJID, m.Key.ID, err)
		return
	}

	c.log.Info().Str("request_id", id).Msg("placeholder resend requested")
	c.relay(ctx, "placeholder.resend", m.Key.RemoteJID, m.Key.ID, nil)
}

func (c *Client) requestHistory(ctx context.Context, sock Socket, m Message) {
	id, err := sock.FetchMessageHistory(ctx, historyFetchCount, m.Key, m.Timestamp)
	if err != nil {
		c.metrics.Inc(MetricHandlerFailures)
		c.log.Error().Err(err).Str("message_id", m.Key.ID).Msg("history request failed")
		c.relay(ctx, "history.request", m.Key.RemoteJID, m.Key.ID, err)
		return
	}

	c.log.Info().Str("request_id", id).Msg("on-demand history requested")
	c.relay(ctx, "history.request", m.Key.RemoteJID, m.Key.ID, nil)
}

// autoReply performs the fixed reply choreography: mark the message read,
// subscribe to the sender's presence, announce composing, announce paused,
// then send the canned reply. The steps run strictly in this order; any
// failure aborts the remainder of the choreography for this message without
// affecting the session.
func (c *Client) autoReply(ctx context.Context, sock Socket, m Message) {
	chat := m.Key.RemoteJID
	fail := func(step string, err error) {
		c.metrics.Inc(MetricHandlerFailures)
		c.log.Error().Err(err).Str("chat", chat).Str("step", step).Msg("auto-reply aborted")
		c.relay(ctx, "auto.reply", chat, m.Key.ID, err)
	}

	if err := sock.ReadMessages(ctx, []MessageKey{m.Key}); err != nil {
		fail("read", err)
		return
	}
	if err := sock.PresenceSubscribe(ctx, chat); err != nil {
		fail("subscribe", err)
		return
	}

	if err := c.wait(ctx, c.config.AutoReply.ComposingDelay); err != nil {
		return
	}
	if err := sock.SendPresenceUpdate(ctx, PresenceComposing, chat); err != nil {
		fail("composing", err)
		return
	}

	if err := c.wait(ctx, c.config.AutoReply.PausedDelay); err != nil {
		return
	}
	if err := sock.SendPresenceUpdate(ctx, PresencePaused, chat); err != nil {
		fail("paused", err)
		return
	}

	key, err := sock.SendMessage(ctx, chat, c.config.AutoReply.Text)
	if err != nil {
		fail("send", err)
		return
	}

	c.metrics.Inc(MetricAutoReplies)
	c.log.Info().Str("chat", chat).Str("message_id", key.ID).Msg("auto-reply sent")
	c.relay(ctx, "auto.reply", chat, key.ID, nil)
}
