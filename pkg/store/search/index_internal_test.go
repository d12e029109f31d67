package search

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

func TestDocumentOf(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := documentOf(domain.Subscription{
		ID:          "sub-1",
		API:         "api-1",
		Plan:        "plan-1",
		Application: "app-1",
		Status:      domain.SubscriptionPending,
		Request:     "please",
		Metadata:    map[string]string{"team": "billing"},
		CreatedAt:   created,
	})

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "sub-1",
		"api": "api-1",
		"plan": "plan-1",
		"application": "app-1",
		"status": "PENDING",
		"request": "please",
		"metadata": {"team": "billing"},
		"created_at": "2026-03-01T12:00:00Z"
	}`, string(raw))
}

func TestQueryOf(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(queryOf("billing"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"query":"billing"`)
	assert.Contains(t, string(raw), `"_source":false`)
}

func TestHitIDs(t *testing.T) {
	t.Parallel()

	t.Run("ids in hit order", func(t *testing.T) {
		t.Parallel()

		ids, err := hitIDs(strings.NewReader(`{"hits":{"total":{"value":2},"hits":[{"_id":"sub-2"},{"_id":"sub-1"}]}}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"sub-2", "sub-1"}, ids)
	})

	t.Run("no hits", func(t *testing.T) {
		t.Parallel()

		ids, err := hitIDs(strings.NewReader(`{"hits":{"hits":[]}}`))
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		_, err := hitIDs(strings.NewReader(`{`))
		require.Error(t, err)
	})
}

func TestNewPanicsWithoutClient(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New(nil, "subscriptions") })
}
