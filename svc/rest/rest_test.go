package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/httpserver"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/store/memory"
	"github.com/dmitrymomot/apimgmt/svc/apikey"
	"github.com/dmitrymomot/apimgmt/svc/rest"
	"github.com/dmitrymomot/apimgmt/svc/subscription"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type api struct {
	t   *testing.T
	srv *httptest.Server
	db  *memory.DB
}

func newAPI(t *testing.T, opts ...rest.Option) *api {
	t.Helper()

	db := memory.New()
	db.PutPlan(domain.Plan{ID: "manual", API: "api-1", Name: "Manual", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationManual})
	db.PutPlan(domain.Plan{ID: "auto", API: "api-2", Name: "Auto", Status: domain.PlanPublished, Security: domain.SecurityAPIKey, Validation: domain.ValidationAuto})
	db.PutPlan(domain.Plan{ID: "closed", API: "api-1", Status: domain.PlanClosed, Security: domain.SecurityAPIKey})
	db.PutApplication(domain.Application{
		ID:           "app",
		Name:         "App",
		Status:       domain.ApplicationActive,
		Type:         domain.ApplicationSimple,
		APIKeyMode:   domain.APIKeyModeExclusive,
		PrimaryOwner: domain.Owner{ID: "owner", Email: "owner@example.com"},
	})

	clock := func() time.Time { return now }
	keys := apikey.NewService(db.APIKeys(), db.Subscriptions(), db.Plans(), db.Applications(),
		apikey.WithClock(clock),
		apikey.WithLogger(logger.Discard()),
	)
	subs := subscription.NewService(db.Subscriptions(), db.Plans(), db.Applications(), db.ContentPages(), keys,
		subscription.WithClock(clock),
		subscription.WithLogger(logger.Discard()),
	)

	opts = append([]rest.Option{rest.WithLogger(logger.Discard())}, opts...)
	srv := httptest.NewServer(rest.NewRouter(subs, keys, db.Applications(), opts...))
	t.Cleanup(srv.Close)
	return &api{t: t, srv: srv, db: db}
}

func (a *api) do(method, path, body string) *http.Response {
	a.t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, r)
	require.NoError(a.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(rest.HeaderUserID, "user-1")
	req.Header.Set(rest.HeaderEnvironmentID, "DEFAULT")
	req.Header.Set(rest.HeaderRole, "user")

	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestSubscriptionLifecycle(t *testing.T) {
	t.Parallel()
	a := newAPI(t)

	resp := a.do(http.MethodPost, "/subscriptions", `{"plan":"manual","application":"app","request":"please"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Subscription](t, resp)
	assert.Equal(t, domain.SubscriptionPending, created.Status)
	assert.Equal(t, "user-1", created.SubscribedBy)

	resp = a.do(http.MethodPost, "/subscriptions/"+created.ID+"/_process", `{"accepted":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.SubscriptionAccepted, decode[domain.Subscription](t, resp).Status)

	resp = a.do(http.MethodGet, "/subscriptions/"+created.ID+"/keys", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	keys := decode[[]domain.APIKey](t, resp)
	require.Len(t, keys, 1)

	resp = a.do(http.MethodDelete, "/keys/"+keys[0].ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[domain.APIKey](t, resp).Revoked)

	resp = a.do(http.MethodPost, "/keys/"+keys[0].ID+"/_reactivate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[domain.APIKey](t, resp).Revoked)

	resp = a.do(http.MethodPost, "/subscriptions/"+created.ID+"/_pause", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.SubscriptionPaused, decode[domain.Subscription](t, resp).Status)

	resp = a.do(http.MethodPost, "/subscriptions/"+created.ID+"/_resume", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(http.MethodPost, "/subscriptions/"+created.ID+"/_close", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.SubscriptionClosed, decode[domain.Subscription](t, resp).Status)

	resp = a.do(http.MethodPost, "/subscriptions/"+created.ID+"/_restore", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.SubscriptionPending, decode[domain.Subscription](t, resp).Status)

	resp = a.do(http.MethodDelete, "/subscriptions/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(http.MethodGet, "/subscriptions/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "subscriptionNotFound", decode[errorBody](t, resp).Error)
}

func TestCreateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
		key    string
	}{
		{name: "malformed body", body: `{"plan":`, status: http.StatusBadRequest, key: "invalidJson"},
		{name: "unknown field", body: `{"plan":"manual","application":"app","color":"red"}`, status: http.StatusBadRequest, key: "invalidJson"},
		{name: "unknown plan", body: `{"plan":"nope","application":"app"}`, status: http.StatusNotFound, key: "planNotFound"},
		{name: "closed plan", body: `{"plan":"closed","application":"app"}`, status: http.StatusBadRequest, key: "planAlreadyClosed"},
		{name: "unknown application", body: `{"plan":"manual","application":"nope"}`, status: http.StatusNotFound, key: "applicationNotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newAPI(t)

			resp := a.do(http.MethodPost, "/subscriptions", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.key, decode[errorBody](t, resp).Error)
		})
	}

	t.Run("already subscribed", func(t *testing.T) {
		t.Parallel()
		a := newAPI(t)

		resp := a.do(http.MethodPost, "/subscriptions", `{"plan":"manual","application":"app"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = a.do(http.MethodPost, "/subscriptions", `{"plan":"manual","application":"app"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "planAlreadySubscribed", decode[errorBody](t, resp).Error)
	})
}

func TestSearch(t *testing.T) {
	t.Parallel()
	a := newAPI(t)

	resp := a.do(http.MethodPost, "/subscriptions", `{"plan":"auto","application":"app"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, domain.SubscriptionAccepted, decode[domain.Subscription](t, resp).Status)
	resp = a.do(http.MethodPost, "/subscriptions", `{"plan":"manual","application":"app"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("filters and enrichment", func(t *testing.T) {
		resp := a.do(http.MethodGet, "/subscriptions?status=ACCEPTED&keys=true&security=true", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		page := decode[domain.Page[domain.Subscription]](t, resp)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "auto", page.Content[0].Plan)
		assert.Equal(t, domain.SecurityAPIKey, page.Content[0].Security)
		assert.Len(t, page.Content[0].Keys, 1)
	})

	t.Run("paging", func(t *testing.T) {
		resp := a.do(http.MethodGet, "/subscriptions?page=2&size=1", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		page := decode[domain.Page[domain.Subscription]](t, resp)
		assert.Equal(t, int64(2), page.TotalElements)
		assert.Equal(t, 2, page.PageNumber)
		assert.Len(t, page.Content, 1)
	})

	t.Run("invalid query", func(t *testing.T) {
		resp := a.do(http.MethodGet, "/subscriptions?page=first", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalidQuery", decode[errorBody](t, resp).Error)
	})

	t.Run("csv export", func(t *testing.T) {
		resp := a.do(http.MethodGet, "/subscriptions/export?plan=manual", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Plan;Application;Creation date;Process date;Start date;End date;Status", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "Manual;App;"))
	})

	t.Run("full text search needs q", func(t *testing.T) {
		resp := a.do(http.MethodGet, "/subscriptions/_search", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("full text search without index", func(t *testing.T) {
		resp := a.do(http.MethodGet, "/subscriptions/_search?q=app", "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decode[errorBody](t, resp)
		assert.Equal(t, "technicalManagement", body.Error)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Message)
	})
}

func TestKeys(t *testing.T) {
	t.Parallel()
	a := newAPI(t)

	resp := a.do(http.MethodPost, "/subscriptions", `{"plan":"auto","application":"app"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sub := decode[domain.Subscription](t, resp)

	t.Run("renew subscription key", func(t *testing.T) {
		resp := a.do(http.MethodPost, "/subscriptions/"+sub.ID+"/keys/_renew", `{"custom_key":"my-custom-key-1"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "my-custom-key-1", decode[domain.APIKey](t, resp).Key)
	})

	t.Run("shared renew requires shared mode", func(t *testing.T) {
		resp := a.do(http.MethodPost, "/applications/app/keys/_renew", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown application", func(t *testing.T) {
		resp := a.do(http.MethodPost, "/applications/nope/keys/_renew", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "applicationNotFound", decode[errorBody](t, resp).Error)
	})

	t.Run("unknown key", func(t *testing.T) {
		resp := a.do(http.MethodGet, "/keys/nope", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "apiKeyNotFound", decode[errorBody](t, resp).Error)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	t.Parallel()
	a := newAPI(t, rest.WithReadiness(httpserver.Check{
		Name:  "store",
		Probe: func(context.Context) error { return errors.New("down") },
	}))

	resp := a.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = a.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = a.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "apimgmt_http_requests_total")
}
