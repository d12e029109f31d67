package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
	"github.com/dmitrymomot/apimgmt/pkg/store/memory"
	"github.com/dmitrymomot/apimgmt/svc/apikey"
	"github.com/dmitrymomot/apimgmt/svc/subscription"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	user  = domain.Actor{UserID: "user-1", EnvironmentID: "DEFAULT", Role: "USER"}
	admin = domain.Actor{UserID: "admin-1", EnvironmentID: "DEFAULT", Role: "ADMIN"}
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n notifications.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Log(ctx context.Context, action audit.Action, _ ...audit.EventOption) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Index(ctx context.Context, sub domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockIndexer) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockIndexer) Search(ctx context.Context, text string, size int) ([]string, error) {
	args := m.Called(ctx, text, size)
	return args.Get(0).([]string), args.Error(1)
}

type mockKeyManager struct {
	mock.Mock
}

func (m *mockKeyManager) Generate(ctx context.Context, app domain.Application, sub domain.Subscription, customKey string) (domain.APIKey, error) {
	args := m.Called(ctx, app, sub, customKey)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeyManager) Revoke(ctx context.Context, key domain.APIKey, notify bool) (domain.APIKey, error) {
	args := m.Called(ctx, key, notify)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeyManager) Update(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeyManager) Touch(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeyManager) FindByKey(ctx context.Context, key string) ([]domain.APIKey, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *mockKeyManager) Search(ctx context.Context, q domain.APIKeyQuery) ([]domain.APIKey, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *mockKeyManager) DeleteBySubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func seed(db *memory.DB) {
	for _, p := range []domain.Plan{
		{ID: "auto-key", API: "api-1", Name: "Auto", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationAuto},
		{ID: "manual-key", API: "api-1", Name: "Manual", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationManual},
		{ID: "manual-key-b", API: "api-1", Name: "Manual B", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationManual},
		{ID: "auto-key-2", API: "api-2", Name: "Auto 2", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationAuto},
		{ID: "oauth", API: "api-1", Name: "OAuth", Status: domain.PlanPublished, Security: domain.SecurityOAuth2, Validation: domain.ValidationAuto},
		{ID: "jwt", API: "api-1", Name: "JWT", Status: domain.PlanPublished, Security: domain.SecurityJWT, Validation: domain.ValidationAuto},
		{ID: "keyless", API: "api-1", Status: domain.PlanPublished, Security: domain.SecurityKeyLess},
		{ID: "staging", API: "api-1", Status: domain.PlanStaging, Security: domain.SecurityAPIKey},
		{ID: "closed", API: "api-1", Status: domain.PlanClosed, Security: domain.SecurityAPIKey},
		{ID: "deprecated", API: "api-1", Status: domain.PlanDeprecated, Security: domain.SecurityAPIKey},
		{ID: "gc", API: "api-2", Name: "GC", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationManual, GeneralConditions: "page-1"},
		{ID: "restricted", API: "api-3", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationManual, ExcludedGroups: []string{"partners"}},
	} {
		db.PutPlan(p)
	}
	owner := domain.Owner{ID: "owner", Email: "owner@example.com", DisplayName: "Owner"}
	for _, a := range []domain.Application{
		{ID: "app", Name: "App", Status: domain.ApplicationActive, Type: domain.ApplicationSimple, ClientID: "client", APIKeyMode: domain.APIKeyModeExclusive, PrimaryOwner: owner},
		{ID: "shared", Name: "Shared", Status: domain.ApplicationActive, Type: domain.ApplicationSimple, APIKeyMode: domain.APIKeyModeShared, PrimaryOwner: owner},
		{ID: "fresh", Name: "Fresh", Status: domain.ApplicationActive, Type: domain.ApplicationWeb, APIKeyMode: domain.APIKeyModeUnspecified, PrimaryOwner: owner},
		{ID: "archived", Name: "Archived", Status: domain.ApplicationArchived, PrimaryOwner: owner},
		{ID: "other", Name: "Other", Status: domain.ApplicationActive, APIKeyMode: domain.APIKeyModeExclusive},
	} {
		db.PutApplication(a)
	}
	db.PutContentPage(domain.ContentPage{ID: "page-1", Name: "Terms", Revision: 2})
}

type fixture struct {
	db     *memory.DB
	keys   apikey.Service
	audits *audit.MemoryStorage
	svc    subscription.Service
}

// newFixture wires the manager to in-memory repositories and a real key
// manager.
func newFixture(t *testing.T, opts ...subscription.ServiceOption) *fixture {
	t.Helper()
	db := memory.New()
	seed(db)

	clock := func() time.Time { return now }
	f := &fixture{db: db, audits: audit.NewMemoryStorage()}
	auditLogger := audit.NewLogger(f.audits, audit.WithClock(clock), audit.WithUserIDExtractor(domain.ActorUserID))
	f.keys = apikey.NewService(db.APIKeys(), db.Subscriptions(), db.Plans(), db.Applications(),
		apikey.WithAuditLogger(auditLogger),
		apikey.WithClock(clock),
		apikey.WithLogger(logger.Discard()),
	)
	base := []subscription.ServiceOption{
		subscription.WithAuditLogger(auditLogger),
		subscription.WithClock(clock),
		subscription.WithLogger(logger.Discard()),
	}
	f.svc = subscription.NewService(db.Subscriptions(), db.Plans(), db.Applications(), db.ContentPages(), f.keys, append(base, opts...)...)
	return f
}

// newMockedFixture wires the manager to in-memory repositories and a
// mocked key manager.
func newMockedFixture(t *testing.T, keys *mockKeyManager) (*memory.DB, subscription.Service) {
	t.Helper()
	db := memory.New()
	seed(db)
	svc := subscription.NewService(db.Subscriptions(), db.Plans(), db.Applications(), db.ContentPages(), keys,
		subscription.WithClock(func() time.Time { return now }),
		subscription.WithLogger(logger.Discard()),
	)
	return db, svc
}

func (f *fixture) put(t *testing.T, sub domain.Subscription) domain.Subscription {
	t.Helper()
	return put(t, f.db, sub)
}

func put(t *testing.T, db *memory.DB, sub domain.Subscription) domain.Subscription {
	t.Helper()
	plan, err := db.Plans().FindByID(context.Background(), sub.Plan)
	require.NoError(t, err)
	sub.API = plan.API
	created, err := db.Subscriptions().Create(context.Background(), sub)
	require.NoError(t, err)
	return created
}

func (f *fixture) keysOf(t *testing.T, subscriptionID string) []domain.APIKey {
	t.Helper()
	keys, err := f.db.APIKeys().FindBySubscription(context.Background(), subscriptionID)
	require.NoError(t, err)
	return keys
}

func (f *fixture) actions() []audit.Action {
	var out []audit.Action
	for _, e := range f.audits.Events() {
		out = append(out, e.Action)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
