package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

func TestAPIKey(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	t.Run("expiry", func(t *testing.T) {
		t.Parallel()
		assert.False(t, domain.APIKey{}.IsExpired(now))
		assert.True(t, domain.APIKey{ExpireAt: &past}.IsExpired(now))
		assert.False(t, domain.APIKey{ExpireAt: &future}.IsExpired(now))
	})

	t.Run("active", func(t *testing.T) {
		t.Parallel()
		assert.True(t, domain.APIKey{}.IsActive(now))
		assert.False(t, domain.APIKey{Revoked: true}.IsActive(now))
		assert.False(t, domain.APIKey{ExpireAt: &past}.IsActive(now))
	})

	t.Run("hash is md5 hex", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", domain.APIKey{Key: "hello"}.Hash())
	})

	t.Run("add subscription once", func(t *testing.T) {
		t.Parallel()
		key := domain.APIKey{Subscriptions: []string{"s1"}}
		assert.False(t, key.AddSubscription("s1"))
		assert.True(t, key.AddSubscription("s2"))
		assert.Equal(t, []string{"s1", "s2"}, key.Subscriptions)
	})
}

func TestAPIKeyQuery_Matches(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expire := now.Add(time.Hour)
	key := domain.APIKey{Subscriptions: []string{"s1"}, EnvironmentID: "DEFAULT", UpdatedAt: now, ExpireAt: &expire}

	assert.True(t, domain.APIKeyQuery{}.Matches(key))
	assert.False(t, domain.APIKeyQuery{}.Matches(domain.APIKey{Revoked: true}))
	assert.True(t, domain.APIKeyQuery{IncludeRevoked: true}.Matches(domain.APIKey{Revoked: true}))
	assert.True(t, domain.APIKeyQuery{Subscriptions: []string{"s0", "s1"}}.Matches(key))
	assert.False(t, domain.APIKeyQuery{Subscriptions: []string{"s2"}}.Matches(key))
	assert.False(t, domain.APIKeyQuery{EnvironmentID: "OTHER"}.Matches(key))

	later := now.Add(time.Minute)
	assert.False(t, domain.APIKeyQuery{From: &later}.Matches(key))
	assert.True(t, domain.APIKeyQuery{ExpireAfter: &now}.Matches(key))
	assert.False(t, domain.APIKeyQuery{ExpireBefore: &now}.Matches(key))
	assert.False(t, domain.APIKeyQuery{ExpireAfter: &now}.Matches(domain.APIKey{}))
}

func TestSubscriptionStatus_IsLive(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.SubscriptionPending.IsLive())
	assert.True(t, domain.SubscriptionAccepted.IsLive())
	assert.True(t, domain.SubscriptionPaused.IsLive())
	assert.False(t, domain.SubscriptionRejected.IsLive())
	assert.False(t, domain.SubscriptionClosed.IsLive())
}

func TestSubscriptionQuery_Matches(t *testing.T) {
	t.Parallel()

	sub := domain.Subscription{API: "api", Application: "app", Plan: "plan", Status: domain.SubscriptionAccepted}

	assert.True(t, domain.SubscriptionQuery{}.Matches(sub))
	assert.True(t, domain.SubscriptionQuery{APIs: []string{"api"}, Statuses: []domain.SubscriptionStatus{domain.SubscriptionAccepted}}.Matches(sub))
	assert.False(t, domain.SubscriptionQuery{Applications: []string{"other"}}.Matches(sub))
	assert.False(t, domain.SubscriptionQuery{Plans: []string{"other"}}.Matches(sub))

	at := time.Now()
	assert.False(t, domain.SubscriptionQuery{EndingAtAfter: &at}.Matches(sub))
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	all := []int{1, 2, 3, 4, 5}

	page := domain.NewPage(all, domain.Pageable{Page: 2, Size: 2})
	assert.Equal(t, []int{3, 4}, page.Content)
	assert.Equal(t, 2, page.PageNumber)
	assert.Equal(t, 2, page.PageElements)
	assert.Equal(t, int64(5), page.TotalElements)

	page = domain.NewPage(all, domain.Pageable{Page: 9, Size: 2})
	assert.Empty(t, page.Content)

	page = domain.NewPage(all, domain.Pageable{})
	assert.Len(t, page.Content, 5)
}

func TestTechnical(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")

	err := domain.Technical("find subscription", cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTechnicalManagement)
	assert.ErrorIs(t, err, cause)

	var techErr *domain.TechnicalError
	require.ErrorAs(t, err, &techErr)
	assert.Equal(t, "find subscription", techErr.Op)

	typed := fmt.Errorf("lookup: %w", domain.ErrPlanNotFound)
	assert.Same(t, typed, domain.Technical("find plan", typed))
	assert.NoError(t, domain.Technical("noop", nil))

	assert.ErrorIs(t, domain.Technicalf("plan %s has no key security", "p1"), domain.ErrTechnicalManagement)
	assert.True(t, domain.IsDomainError(domain.ErrAPIKeyAlreadyExpired))
	assert.False(t, domain.IsDomainError(cause))
}

func TestActorContext(t *testing.T) {
	t.Parallel()

	_, ok := domain.ActorUserID(context.Background())
	assert.False(t, ok)

	ctx := domain.WithActor(context.Background(), domain.Actor{UserID: "u1", Role: "ADMIN"})
	a, ok := domain.ActorFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "ADMIN", a.Role)

	id, ok := domain.ActorUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
