package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

func TestSubscriptionFilter(t *testing.T) {
	t.Parallel()

	t.Run("empty query has no where clause", func(t *testing.T) {
		t.Parallel()

		f := subscriptionFilter(domain.SubscriptionQuery{})
		assert.Empty(t, f.where())
		assert.Empty(t, f.args)
	})

	t.Run("conditions are numbered in order", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		f := subscriptionFilter(domain.SubscriptionQuery{
			APIs:        []string{"api-1"},
			Statuses:    []domain.SubscriptionStatus{domain.SubscriptionAccepted, domain.SubscriptionPaused},
			CreatedFrom: &from,
		})

		assert.Equal(t, " WHERE api = ANY($1) AND status = ANY($2) AND created_at >= $3", f.where())
		assert.Equal(t, []any{[]string{"api-1"}, []string{"ACCEPTED", "PAUSED"}, from}, f.args)
	})

	t.Run("ending bounds", func(t *testing.T) {
		t.Parallel()

		after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		before := after.Add(24 * time.Hour)
		f := subscriptionFilter(domain.SubscriptionQuery{EndingAtAfter: &after, EndingAtBefore: &before})

		assert.Equal(t, " WHERE ending_at >= $1 AND ending_at <= $2", f.where())
		assert.Len(t, f.args, 2)
	})
}

func TestKeyFilter(t *testing.T) {
	t.Parallel()

	t.Run("revoked keys excluded by default", func(t *testing.T) {
		t.Parallel()

		f := keyFilter(domain.APIKeyQuery{})
		assert.Equal(t, " WHERE revoked = FALSE", f.where())
		assert.Empty(t, f.args)
	})

	t.Run("subscriptions overlap", func(t *testing.T) {
		t.Parallel()

		f := keyFilter(domain.APIKeyQuery{
			IncludeRevoked: true,
			EnvironmentID:  "DEFAULT",
			Subscriptions:  []string{"sub-1", "sub-2"},
		})
		assert.Equal(t, " WHERE environment_id = $1 AND subscriptions && $2", f.where())
		assert.Equal(t, []any{"DEFAULT", []string{"sub-1", "sub-2"}}, f.args)
	})

	t.Run("placeholders follow the revoked condition", func(t *testing.T) {
		t.Parallel()

		to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		f := keyFilter(domain.APIKeyQuery{To: &to})
		assert.Equal(t, " WHERE revoked = FALSE AND updated_at <= $1", f.where())
	})
}

func TestPrefixed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "k.id, k.key, k.application", prefixed("k.", "id, key,\n\tapplication"))
}
