package subscription

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
	"github.com/dmitrymomot/apimgmt/pkg/rbac"
)

// ClosedReason is the rejection reason given to pending subscriptions that
// are closed.
const ClosedReason = "Subscription has been closed."

// Service manages subscriptions. Every mutating operation is performed on
// behalf of an explicit actor.
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req NewSubscription) (domain.Subscription, error)
	Process(ctx context.Context, actor domain.Actor, req ProcessRequest) (domain.Subscription, error)
	Update(ctx context.Context, actor domain.Actor, req UpdateRequest) (domain.Subscription, error)
	Close(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error)
	Pause(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error)
	Resume(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error)
	Restore(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error)
	Transfer(ctx context.Context, actor domain.Actor, id, planID string) (domain.Subscription, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error

	FindByID(ctx context.Context, id string) (domain.Subscription, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Subscription, error)
	FindByApplicationAndPlan(ctx context.Context, applicationID, planID string) ([]domain.Subscription, error)
	FindByAPI(ctx context.Context, apiID string) ([]domain.Subscription, error)
	FindByPlan(ctx context.Context, planID string) ([]domain.Subscription, error)
	Search(ctx context.Context, q domain.SubscriptionQuery, p domain.Pageable, opts SearchOptions) (domain.Page[domain.Subscription], error)
	FullTextSearch(ctx context.Context, text string, size int) ([]domain.Subscription, error)
	ExportCSV(ctx context.Context, w io.Writer, subs []domain.Subscription) error
}

// NewSubscription is a subscription request.
type NewSubscription struct {
	Plan        string            `json:"plan"`
	Application string            `json:"application"`
	Request     string            `json:"request,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	// APIKeyMode is the key mode requested for an application that has not
	// settled one yet.
	APIKeyMode domain.APIKeyMode `json:"api_key_mode,omitempty"`
	// CustomKey is used as key value when an AUTO plan accepts the
	// subscription right away.
	CustomKey string `json:"custom_key,omitempty"`

	GeneralConditionsAccepted        *bool `json:"general_conditions_accepted,omitempty"`
	GeneralConditionsContentRevision *int  `json:"general_conditions_content_revision,omitempty"`
}

// ProcessRequest accepts or rejects a pending subscription.
type ProcessRequest struct {
	ID         string     `json:"-"`
	Accepted   bool       `json:"accepted"`
	Reason     string     `json:"reason,omitempty"`
	StartingAt *time.Time `json:"starting_at,omitempty"`
	EndingAt   *time.Time `json:"ending_at,omitempty"`
	CustomKey  string     `json:"custom_key,omitempty"`
}

// UpdateRequest changes the validity window and metadata of a subscription.
// Nil fields are left unchanged.
type UpdateRequest struct {
	ID         string            `json:"-"`
	StartingAt *time.Time        `json:"starting_at,omitempty"`
	EndingAt   *time.Time        `json:"ending_at,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SearchOptions enriches search results.
type SearchOptions struct {
	// Keys fills the active keys of every subscription.
	Keys bool
	// Security fills the security type of every subscription plan.
	Security bool
}

// Store persists subscriptions. Lookups by id return domain.ErrNotFound
// when the subscription does not exist.
type Store interface {
	FindByID(ctx context.Context, id string) (domain.Subscription, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Subscription, error)
	Search(ctx context.Context, q domain.SubscriptionQuery, p domain.Pageable) (domain.Page[domain.Subscription], error)
	Create(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	Update(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	Delete(ctx context.Context, id string) error
}

// PlanFinder reads plans.
type PlanFinder interface {
	FindByID(ctx context.Context, id string) (domain.Plan, error)
}

// ApplicationStore reads applications and settles their key mode.
type ApplicationStore interface {
	FindByID(ctx context.Context, id string) (domain.Application, error)
	UpdateAPIKeyMode(ctx context.Context, id string, mode domain.APIKeyMode) error
}

// ContentPageFinder reads general conditions pages.
type ContentPageFinder interface {
	FindByID(ctx context.Context, id string) (domain.ContentPage, error)
}

// KeyManager owns the keys of API key subscriptions.
type KeyManager interface {
	Generate(ctx context.Context, app domain.Application, sub domain.Subscription, customKey string) (domain.APIKey, error)
	Revoke(ctx context.Context, key domain.APIKey, notify bool) (domain.APIKey, error)
	Update(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	Touch(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	FindByKey(ctx context.Context, key string) ([]domain.APIKey, error)
	Search(ctx context.Context, q domain.APIKeyQuery) ([]domain.APIKey, error)
	DeleteBySubscription(ctx context.Context, subscriptionID string) error
}

// Notifier receives lifecycle notifications.
type Notifier interface {
	Notify(ctx context.Context, n notifications.Notification) error
}

// Indexer maintains the full text index of subscriptions.
type Indexer interface {
	Index(ctx context.Context, sub domain.Subscription) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, text string, size int) ([]string, error)
}

// Authorizer resolves role permissions.
type Authorizer interface {
	Has(role, permission string) bool
}

type service struct {
	subs  Store
	plans PlanFinder
	apps  ApplicationStore
	pages ContentPageFinder
	keys  KeyManager

	audit    audit.Logger
	notifier Notifier
	index    Indexer
	authz    Authorizer

	now    func() time.Time
	logger *slog.Logger
}

// NewService creates the subscription manager.
func NewService(subs Store, plans PlanFinder, apps ApplicationStore, pages ContentPageFinder, keys KeyManager, opts ...ServiceOption) Service {
	if subs == nil {
		panic("subscription: Store is required")
	}
	if plans == nil {
		panic("subscription: PlanFinder is required")
	}
	if apps == nil {
		panic("subscription: ApplicationStore is required")
	}
	if pages == nil {
		panic("subscription: ContentPageFinder is required")
	}
	if keys == nil {
		panic("subscription: KeyManager is required")
	}

	s := &service{
		subs:   subs,
		plans:  plans,
		apps:   apps,
		pages:  pages,
		keys:   keys,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authz == nil {
		s.authz = defaultAuthorizer()
	}
	return s
}

func defaultAuthorizer() Authorizer {
	a, err := rbac.NewAuthorizer(rbac.DefaultRoles())
	if err != nil {
		panic("subscription: invalid default roles: " + err.Error())
	}
	return a
}

// isEnvironmentAdmin reports whether actor administers its environment.
func (s *service) isEnvironmentAdmin(actor domain.Actor) bool {
	return actor.Role != "" && s.authz.Has(actor.Role, rbac.PermissionEnvironmentAdmin)
}
