package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DevSender writes each message to dir as an HTML body plus a JSON
// envelope.
type DevSender struct {
	dir string
}

func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

type envelope struct {
	SentAt  time.Time `json:"sent_at"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Tag     string    `json:"tag,omitempty"`
}

func (d *DevSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir: %w", ErrFailedToSendEmail, err)
	}

	now := time.Now()
	name := msg.Tag
	if name == "" {
		name = msg.Subject
	}
	base := fmt.Sprintf("%s_%s_%s", now.Format("20060102_150405"), safeName(name), uuid.NewString()[:8])

	if err := os.WriteFile(filepath.Join(d.dir, base+".html"), []byte(msg.HTMLBody), 0o644); err != nil {
		return fmt.Errorf("%w: write body: %w", ErrFailedToSendEmail, err)
	}
	data, err := json.MarshalIndent(envelope{SentAt: now, To: msg.To, Subject: msg.Subject, Tag: msg.Tag}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode envelope: %w", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("%w: write envelope: %w", ErrFailedToSendEmail, err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9\-_.]`)

func safeName(s string) string {
	s = unsafeChars.ReplaceAllString(strings.ReplaceAll(strings.ToLower(s), " ", "_"), "")
	if len(s) > 64 {
		s = s[:64]
	}
	if s == "" {
		s = "email"
	}
	return s
}
