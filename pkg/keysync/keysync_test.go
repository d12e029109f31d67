package keysync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	key := domain.APIKey{ID: "k1", Key: "hello", Application: "app", Subscriptions: []string{"s1"}, Paused: true}

	event := keysync.NewEvent(keysync.KeyUpdated, key, at)
	assert.Equal(t, keysync.KeyUpdated, event.Type)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", event.Hash)
	assert.Equal(t, []string{"s1"}, event.Subscriptions)
	assert.True(t, event.Paused)
	assert.Equal(t, at, event.At)

	key.Subscriptions[0] = "changed"
	assert.Equal(t, "s1", event.Subscriptions[0])
}

func TestMemoryBus(t *testing.T) {
	t.Parallel()

	bus := keysync.NewMemoryBus()
	var received []keysync.Event
	bus.Subscribe(func(_ context.Context, e keysync.Event) {
		received = append(received, e)
	})

	require.NoError(t, bus.Publish(context.Background(), keysync.Event{Type: keysync.KeyCreated, KeyID: "k1"}))
	require.NoError(t, bus.Publish(context.Background(), keysync.Event{Type: keysync.KeyRevoked, KeyID: "k1"}))

	require.Len(t, received, 2)
	assert.Equal(t, keysync.KeyRevoked, received[1].Type)
	assert.Len(t, bus.Events(), 2)
}
