package notifications_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/email"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
)

type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) Deliver(ctx context.Context, n notifications.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockWebhookSender struct {
	mock.Mock
}

func (m *mockWebhookSender) Send(ctx context.Context, endpoint string, data any) error {
	return m.Called(ctx, endpoint, data).Error(0)
}

type failingStorage struct{}

func (failingStorage) Create(context.Context, notifications.Notification) error {
	return errors.New("disk full")
}

func (failingStorage) List(context.Context, notifications.Scope, string, notifications.ListOptions) ([]notifications.Notification, error) {
	return nil, nil
}

func accepted(appID string) notifications.Notification {
	return notifications.Notification{
		Hook:        notifications.HookSubscriptionAccepted,
		Scope:       notifications.ScopeApplication,
		ReferenceID: appID,
		Recipient:   "owner@example.com",
		Data:        map[string]string{notifications.DataPlan: "Gold", notifications.DataApplication: "Shop"},
	}
}

func TestManager_Notify(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("stores then delivers", func(t *testing.T) {
		t.Parallel()
		storage := notifications.NewMemoryStorage()
		deliverer := &mockDeliverer{}
		deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(n notifications.Notification) bool {
			return n.ID != "" && n.CreatedAt.Equal(now)
		})).Return(nil).Once()

		m := notifications.NewManager(storage, deliverer, notifications.WithClock(func() time.Time { return now }))
		require.NoError(t, m.Notify(context.Background(), accepted("app-1")))

		list, err := m.List(context.Background(), notifications.ScopeApplication, "app-1", notifications.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, notifications.HookSubscriptionAccepted, list[0].Hook)
		deliverer.AssertExpectations(t)
	})

	t.Run("delivery failure is not returned", func(t *testing.T) {
		t.Parallel()
		deliverer := &mockDeliverer{}
		deliverer.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		m := notifications.NewManager(notifications.NewMemoryStorage(), deliverer, notifications.WithLogger(logger.Discard()))
		assert.NoError(t, m.Notify(context.Background(), accepted("app-1")))
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		t.Parallel()
		deliverer := &mockDeliverer{}
		m := notifications.NewManager(failingStorage{}, deliverer)
		assert.Error(t, m.Notify(context.Background(), accepted("app-1")))
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})
}

func TestMemoryStorage_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := notifications.NewMemoryStorage()
	for i, hook := range []notifications.Hook{notifications.HookSubscriptionNew, notifications.HookSubscriptionPaused, notifications.HookAPIKeyRevoked} {
		require.NoError(t, storage.Create(ctx, notifications.Notification{
			ID:          string(rune('a' + i)),
			Hook:        hook,
			Scope:       notifications.ScopeAPI,
			ReferenceID: "api-1",
		}))
	}
	assert.ErrorIs(t, storage.Create(ctx, notifications.Notification{ID: "x"}), notifications.ErrInvalidNotification)

	all, err := storage.List(ctx, notifications.ScopeAPI, "api-1", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, notifications.HookAPIKeyRevoked, all[0].Hook)

	filtered, err := storage.List(ctx, notifications.ScopeAPI, "api-1", notifications.ListOptions{Hooks: []notifications.Hook{notifications.HookSubscriptionNew}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	paged, err := storage.List(ctx, notifications.ScopeAPI, "api-1", notifications.ListOptions{Offset: 2, Limit: 5})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, notifications.HookSubscriptionNew, paged[0].Hook)

	none, err := storage.List(ctx, notifications.ScopeApplication, "api-1", notifications.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEmailDeliverer(t *testing.T) {
	t.Parallel()

	t.Run("renders and sends", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}
		sender.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
			return msg.To == "owner@example.com" &&
				msg.Subject == "Subscription accepted" &&
				msg.Tag == "subscription-accepted" &&
				strings.Contains(msg.HTMLBody, "Gold")
		})).Return(nil).Once()

		d := notifications.NewEmailDeliverer(sender)
		require.NoError(t, d.Deliver(context.Background(), accepted("app-1")))
		sender.AssertExpectations(t)
	})

	t.Run("skips without recipient", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}
		n := accepted("app-1")
		n.Recipient = ""

		require.NoError(t, notifications.NewEmailDeliverer(sender).Deliver(context.Background(), n))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("send error propagates", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}
		sender.On("Send", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail)
		err := notifications.NewEmailDeliverer(sender).Deliver(context.Background(), accepted("app-1"))
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}

func TestWebhookDeliverer(t *testing.T) {
	t.Parallel()

	t.Run("posts to every endpoint", func(t *testing.T) {
		t.Parallel()
		sender := &mockWebhookSender{}
		isEvent := mock.MatchedBy(func(e notifications.WebhookEvent) bool {
			return e.Hook == notifications.HookSubscriptionAccepted &&
				e.Title == "Subscription accepted" &&
				strings.Contains(e.Message, "Gold")
		})
		sender.On("Send", mock.Anything, "https://a.example.com", isEvent).Return(nil).Once()
		sender.On("Send", mock.Anything, "https://b.example.com", isEvent).Return(nil).Once()

		d := notifications.NewWebhookDeliverer(sender, "https://a.example.com", "https://b.example.com")
		require.NoError(t, d.Deliver(context.Background(), accepted("app-1")))
		sender.AssertExpectations(t)
	})

	t.Run("joins failures", func(t *testing.T) {
		t.Parallel()
		sender := &mockWebhookSender{}
		sender.On("Send", mock.Anything, "https://a.example.com", mock.Anything).Return(errors.New("timeout")).Once()
		sender.On("Send", mock.Anything, "https://b.example.com", mock.Anything).Return(nil).Once()

		d := notifications.NewWebhookDeliverer(sender, "https://a.example.com", "https://b.example.com")
		err := d.Deliver(context.Background(), accepted("app-1"))
		assert.ErrorContains(t, err, "https://a.example.com")
		sender.AssertExpectations(t)
	})

	t.Run("requires sender", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { notifications.NewWebhookDeliverer(nil) })
	})
}

func TestMultiDeliverer(t *testing.T) {
	t.Parallel()

	failing := &mockDeliverer{}
	failing.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("boom"))
	ok := &mockDeliverer{}
	ok.On("Deliver", mock.Anything, mock.Anything).Return(nil).Once()

	multi := notifications.NewMultiDeliverer(logger.Discard(), failing, ok)
	assert.NoError(t, multi.Deliver(context.Background(), accepted("app-1")))
	ok.AssertExpectations(t)
}

func TestHook_Title(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "API key revoked", notifications.HookAPIKeyRevoked.Title())
	assert.Equal(t, "Custom", notifications.Hook("CUSTOM").Title())
	assert.Equal(t, "Plan Deprecated", notifications.Hook("PLAN_DEPRECATED").Title())
}
