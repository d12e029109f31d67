package apikey

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
)

// ServiceOption configures the key manager.
type ServiceOption func(*service)

func WithAuditLogger(l audit.Logger) ServiceOption {
	return func(s *service) { s.audit = l }
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *service) { s.notifier = n }
}

// WithPublisher publishes every key change for gateway cache refresh.
func WithPublisher(p keysync.Publisher) ServiceOption {
	return func(s *service) { s.publisher = p }
}

// WithGenerator overrides the key value generator.
func WithGenerator(g Generator) ServiceOption {
	return func(s *service) {
		if g != nil {
			s.generate = g
		}
	}
}

// WithGracePeriod sets how long superseded keys stay valid after a renewal.
// Non-positive values are ignored.
func WithGracePeriod(d time.Duration) ServiceOption {
	return func(s *service) {
		if d > 0 {
			s.grace = d
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}
