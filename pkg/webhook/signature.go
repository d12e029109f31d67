package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Signature headers set on signed deliveries.
const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
	HeaderID        = "X-Webhook-ID"
)

// Sign returns the hex HMAC-SHA256 of "timestamp.payload".
func Sign(secret string, timestamp int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", timestamp)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks the signature headers of a received delivery. A zero maxAge
// disables the timestamp window.
func Verify(secret string, payload []byte, header http.Header, maxAge time.Duration, now time.Time) error {
	sig := header.Get(HeaderSignature)
	ts, err := strconv.ParseInt(header.Get(HeaderTimestamp), 10, 64)
	if sig == "" || err != nil {
		return ErrMissingSignature
	}
	if maxAge > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > maxAge || age < -time.Minute {
			return fmt.Errorf("%w: age %s", ErrSignatureExpired, age)
		}
	}
	if !hmac.Equal([]byte(Sign(secret, ts, payload)), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}
