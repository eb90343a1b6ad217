package baileys

import "context"

// issuePairingCode requests a pairing code for the configured phone number
// and caches it under "<prefix>:<phone>" with the configured TTL. A fresh
// code always overwrites a previously cached one; only the newest code is
// valid for entry on the phone.
func (c *Client) issuePairingCode(ctx context.Context, sock Socket) {
	phone := c.config.Pairing.PhoneNumber

	code, err := sock.RequestPairingCode(ctx, phone)
	if err != nil {
		c.metrics.Inc(MetricHandlerFailures)
		c.log.Error().Err(err).Str("phone", phone).Msg("pairing code request failed")
		return
	}

	key := c.config.Pairing.KeyPrefix + ":" + phone
	if err := c.cache.Set(ctx, key, code, c.config.Pairing.CodeTTL); err != nil {
		c.metrics.Inc(MetricHandlerFailures)
		c.log.Error().Err(err).Str("key", key).Msg("failed to cache pairing code")
		// The code is still usable; fall through to announce it.
	}

	c.metrics.Inc(MetricPairingCodesIssued)
	c.log.Info().Str("phone", phone).Str("code", code).Msg("pairing code issued")
	c.relay(ctx, "pairing.code", "", "", nil)
}
