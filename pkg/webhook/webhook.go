package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userAgent = "apimgmt-webhook/1.0"

// Sender posts JSON payloads to webhook endpoints with retries.
// It is safe for concurrent use.
type Sender struct {
	client     *http.Client
	secret     string
	maxRetries int
	backoff    Backoff
	timeout    time.Duration
	headers    http.Header
	now        func() time.Time
}

func NewSender(opts ...Option) *Sender {
	s := &Sender{
		client:     &http.Client{},
		maxRetries: 3,
		backoff:    DefaultBackoff(),
		timeout:    10 * time.Second,
		headers:    make(http.Header),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send marshals data and posts it to endpoint. Network errors, 5xx and the
// 408, 425 and 429 statuses are retried; other non 2xx responses fail at once
// with ErrPermanentFailure.
func (s *Sender) Send(ctx context.Context, endpoint string, data any) error {
	if err := validateURL(endpoint); err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	id := uuid.NewString()
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff.Next(attempt)):
			}
		}

		status, err := s.attempt(ctx, endpoint, id, payload)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if permanent(status) {
			return fmt.Errorf("%w: %v", ErrPermanentFailure, err)
		}
		lastErr = err
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrDeliveryFailed, s.maxRetries+1, lastErr)
}

func (s *Sender) attempt(ctx context.Context, endpoint, id string, payload []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	for k, v := range s.headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(HeaderID, id)
	if s.secret != "" {
		ts := s.now().Unix()
		req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
		req.Header.Set(HeaderSignature, Sign(s.secret, ts, payload))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	msg := strings.TrimSpace(strings.ReplaceAll(string(body), "\n", " "))
	return resp.StatusCode, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, msg)
}

func permanent(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}

func validateURL(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}
