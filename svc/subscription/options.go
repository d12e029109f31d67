package subscription

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
)

// ServiceOption configures the subscription manager.
type ServiceOption func(*service)

func WithAuditLogger(l audit.Logger) ServiceOption {
	return func(s *service) { s.audit = l }
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *service) { s.notifier = n }
}

// WithIndexer keeps a full text index of subscriptions up to date and
// enables FullTextSearch.
func WithIndexer(i Indexer) ServiceOption {
	return func(s *service) { s.index = i }
}

// WithAuthorizer replaces the default role set used to recognise
// environment admins.
func WithAuthorizer(a Authorizer) ServiceOption {
	return func(s *service) { s.authz = a }
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
