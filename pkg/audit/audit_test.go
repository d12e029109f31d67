package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Store(ctx context.Context, event audit.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockStorage) Query(ctx context.Context, c audit.Criteria) ([]audit.Event, error) {
	args := m.Called(ctx, c)
	events, _ := args.Get(0).([]audit.Event)
	return events, args.Error(1)
}

type userKey struct{}

func TestLogger_Log(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("stores event with options", func(t *testing.T) {
		t.Parallel()
		storage := audit.NewMemoryStorage()
		trail := audit.NewLogger(storage, audit.WithClock(func() time.Time { return now }))

		err := trail.Log(context.Background(), audit.SubscriptionCreated,
			audit.WithReference(audit.ReferenceAPI, "api-1"),
			audit.WithUser("user-1"),
			audit.WithEnvironment("DEFAULT"),
			audit.WithProperty(audit.PropertyPlan, "plan-1"),
			audit.WithProperty(audit.PropertyAPIKey, ""),
			audit.WithChange(nil, map[string]string{"id": "sub-1"}),
		)
		require.NoError(t, err)

		events := storage.Events()
		require.Len(t, events, 1)
		e := events[0]
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, audit.SubscriptionCreated, e.Action)
		assert.Equal(t, audit.ReferenceAPI, e.ReferenceType)
		assert.Equal(t, "api-1", e.ReferenceID)
		assert.Equal(t, "user-1", e.UserID)
		assert.Equal(t, "DEFAULT", e.EnvironmentID)
		assert.Equal(t, map[audit.Property]string{audit.PropertyPlan: "plan-1"}, e.Properties)
		assert.Nil(t, e.Before)
		assert.NotNil(t, e.After)
		assert.Equal(t, now, e.CreatedAt)
	})

	t.Run("user from context", func(t *testing.T) {
		t.Parallel()
		storage := audit.NewMemoryStorage()
		trail := audit.NewLogger(storage, audit.WithUserIDExtractor(func(ctx context.Context) (string, bool) {
			id, ok := ctx.Value(userKey{}).(string)
			return id, ok
		}))

		ctx := context.WithValue(context.Background(), userKey{}, "ctx-user")
		require.NoError(t, trail.Log(ctx, audit.APIKeyRevoked, audit.WithReference(audit.ReferenceApplication, "app-1")))
		assert.Equal(t, "ctx-user", storage.Events()[0].UserID)
	})

	t.Run("reference is required", func(t *testing.T) {
		t.Parallel()
		trail := audit.NewLogger(audit.NewMemoryStorage())
		err := trail.Log(context.Background(), audit.APIKeyCreated)
		assert.ErrorIs(t, err, audit.ErrEventValidation)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		t.Parallel()
		storage := &mockStorage{}
		storage.On("Store", mock.Anything, mock.Anything).Return(errors.New("down"))

		trail := audit.NewLogger(storage)
		err := trail.Log(context.Background(), audit.APIKeyCreated, audit.WithReference(audit.ReferenceApplication, "app-1"))
		assert.ErrorIs(t, err, audit.ErrStorageFailed)
		storage.AssertExpectations(t)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { audit.NewLogger(nil) })
	})
}

func TestMemoryStorage_Query(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	storage := audit.NewMemoryStorage()
	ctx := context.Background()
	for i, a := range []audit.Action{audit.SubscriptionCreated, audit.SubscriptionPaused, audit.SubscriptionResumed} {
		require.NoError(t, storage.Store(ctx, audit.Event{
			ID:            string(a),
			Action:        a,
			ReferenceType: audit.ReferenceAPI,
			ReferenceID:   "api-1",
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, storage.Store(ctx, audit.Event{
		ID:            "other",
		Action:        audit.APIKeyCreated,
		ReferenceType: audit.ReferenceApplication,
		ReferenceID:   "app-1",
		CreatedAt:     base,
	}))

	reader := audit.NewReader(storage)

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()
		events, err := reader.Find(ctx, audit.Criteria{ReferenceType: audit.ReferenceAPI})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, audit.SubscriptionResumed, events[0].Action)
	})

	t.Run("action and time filters", func(t *testing.T) {
		t.Parallel()
		events, err := reader.Find(ctx, audit.Criteria{
			Actions: []audit.Action{audit.SubscriptionCreated, audit.SubscriptionPaused},
			From:    base.Add(30 * time.Minute),
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.SubscriptionPaused, events[0].Action)
	})

	t.Run("paging", func(t *testing.T) {
		t.Parallel()
		events, err := reader.Find(ctx, audit.Criteria{ReferenceID: "api-1", Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.SubscriptionPaused, events[0].Action)

		events, err = reader.Find(ctx, audit.Criteria{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
