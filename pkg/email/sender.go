package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is an outbound email.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks the recipient address and the required fields.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient %q is not a valid address", ErrInvalidMessage, m.To)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.HTMLBody) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// NewSender picks the Postmark sender when credentials are configured and
// the disk based DevSender otherwise.
func NewSender(cfg Config) (Sender, error) {
	if cfg.Enabled() {
		return NewPostmarkSender(cfg)
	}
	return NewDevSender(cfg.DevOutputDir), nil
}
