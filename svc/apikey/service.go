package apikey

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
)

// DefaultGracePeriod is how long a renewed key keeps working.
const DefaultGracePeriod = 2 * time.Hour

// Service manages API keys.
type Service interface {
	Generate(ctx context.Context, app domain.Application, sub domain.Subscription, customKey string) (domain.APIKey, error)
	Renew(ctx context.Context, sub domain.Subscription, customKey string) (domain.APIKey, error)
	RenewForApplication(ctx context.Context, app domain.Application) (domain.APIKey, error)
	Revoke(ctx context.Context, key domain.APIKey, notify bool) (domain.APIKey, error)
	RevokeByID(ctx context.Context, id string, notify bool) (domain.APIKey, error)
	Reactivate(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	Update(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	Touch(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	DeleteBySubscription(ctx context.Context, subscriptionID string) error
	CanCreate(ctx context.Context, key, apiID, applicationID string) (bool, error)

	FindByID(ctx context.Context, id string) (domain.APIKey, error)
	FindByKey(ctx context.Context, key string) ([]domain.APIKey, error)
	FindByKeyAndAPI(ctx context.Context, key, apiID string) (domain.APIKey, error)
	FindBySubscription(ctx context.Context, subscriptionID string) ([]domain.APIKey, error)
	FindByApplication(ctx context.Context, applicationID string) ([]domain.APIKey, error)
	Search(ctx context.Context, q domain.APIKeyQuery) ([]domain.APIKey, error)
}

// Store persists keys. Lookups by id return domain.ErrNotFound when the
// key does not exist.
type Store interface {
	FindByID(ctx context.Context, id string) (domain.APIKey, error)
	FindByKey(ctx context.Context, key string) ([]domain.APIKey, error)
	FindByKeyAndAPI(ctx context.Context, key, apiID string) (domain.APIKey, error)
	FindBySubscription(ctx context.Context, subscriptionID string) ([]domain.APIKey, error)
	FindByApplication(ctx context.Context, applicationID string) ([]domain.APIKey, error)
	FindByCriteria(ctx context.Context, q domain.APIKeyQuery) ([]domain.APIKey, error)
	Create(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	Update(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionFinder reads subscriptions.
type SubscriptionFinder interface {
	FindByID(ctx context.Context, id string) (domain.Subscription, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Subscription, error)
}

// PlanFinder reads plans.
type PlanFinder interface {
	FindByID(ctx context.Context, id string) (domain.Plan, error)
}

// ApplicationFinder reads applications.
type ApplicationFinder interface {
	FindByID(ctx context.Context, id string) (domain.Application, error)
}

// Notifier receives lifecycle notifications.
type Notifier interface {
	Notify(ctx context.Context, n notifications.Notification) error
}

// Generator produces new key values.
type Generator func() string

type service struct {
	keys          Store
	subscriptions SubscriptionFinder
	plans         PlanFinder
	applications  ApplicationFinder

	audit     audit.Logger
	notifier  Notifier
	publisher keysync.Publisher

	generate Generator
	grace    time.Duration
	now      func() time.Time
	logger   *slog.Logger
	locks    *keyedMutex
}

// NewService creates the key manager. Audit, notifier and publisher are
// optional and configured through options.
func NewService(keys Store, subscriptions SubscriptionFinder, plans PlanFinder, applications ApplicationFinder, opts ...ServiceOption) Service {
	if keys == nil {
		panic("apikey: Store is required")
	}
	if subscriptions == nil {
		panic("apikey: SubscriptionFinder is required")
	}
	if plans == nil {
		panic("apikey: PlanFinder is required")
	}
	if applications == nil {
		panic("apikey: ApplicationFinder is required")
	}

	s := &service{
		keys:          keys,
		subscriptions: subscriptions,
		plans:         plans,
		applications:  applications,
		generate:      uuid.NewString,
		grace:         DefaultGracePeriod,
		now:           time.Now,
		logger:        slog.Default(),
		locks:         newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
