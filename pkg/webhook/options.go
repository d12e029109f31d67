package webhook

import (
	"net/http"
	"time"
)

// Option configures a Sender.
type Option func(*Sender)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithSecret signs every payload with secret. See Sign.
func WithSecret(secret string) Option {
	return func(s *Sender) {
		s.secret = secret
	}
}

// WithMaxRetries sets how many times a temporary failure is retried.
func WithMaxRetries(n int) Option {
	return func(s *Sender) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithBackoff sets the delay before each retry.
func WithBackoff(b Backoff) Option {
	return func(s *Sender) {
		s.backoff = b
	}
}

// WithTimeout bounds a single delivery attempt.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHeader adds a static request header.
func WithHeader(key, value string) Option {
	return func(s *Sender) {
		s.headers.Set(key, value)
	}
}
