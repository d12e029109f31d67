// Package webhook posts signed JSON payloads to HTTP endpoints.
//
// Signed deliveries carry X-Webhook-Timestamp and X-Webhook-Signature, the
// hex HMAC-SHA256 of "timestamp.body". Receivers check them with Verify.
//
//	sender := webhook.NewSender(webhook.WithSecret(secret), webhook.WithMaxRetries(2))
//	if err := sender.Send(ctx, "https://hooks.example.com/apim", event); err != nil {
//	    return err
//	}
package webhook
