package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/apimgmt/pkg/clientip"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/httpserver"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/metrics"
	"github.com/dmitrymomot/apimgmt/pkg/requestid"
	"github.com/dmitrymomot/apimgmt/svc/apikey"
	"github.com/dmitrymomot/apimgmt/svc/subscription"
)

// ApplicationFinder reads the application of a shared key renewal.
type ApplicationFinder interface {
	FindByID(ctx context.Context, id string) (domain.Application, error)
}

// Option configures the router.
type Option func(*handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithReadiness adds checks to /readyz.
func WithReadiness(checks ...httpserver.Check) Option {
	return func(h *handler) { h.checks = append(h.checks, checks...) }
}

// WithTrustedIPHeaders names the proxy headers the client address is read from.
func WithTrustedIPHeaders(headers ...string) Option {
	return func(h *handler) { h.ipHeaders = headers }
}

type handler struct {
	subs      subscription.Service
	keys      apikey.Service
	apps      ApplicationFinder
	log       *slog.Logger
	checks    []httpserver.Check
	ipHeaders []string
}

// NewRouter returns the HTTP API of the managers.
func NewRouter(subs subscription.Service, keys apikey.Service, apps ApplicationFinder, opts ...Option) http.Handler {
	if subs == nil {
		panic("rest: subscription.Service is required")
	}
	if keys == nil {
		panic("rest: apikey.Service is required")
	}
	if apps == nil {
		panic("rest: ApplicationFinder is required")
	}

	h := &handler{subs: subs, keys: keys, apps: apps, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware(h.ipHeaders...), middleware.Recoverer, h.instrument)

	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(h.log, h.checks...))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(withActor)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", h.createSubscription)
			r.Get("/", h.searchSubscriptions)
			r.Get("/export", h.exportSubscriptions)
			r.Get("/_search", h.fullTextSearch)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getSubscription)
				r.Put("/", h.updateSubscription)
				r.Delete("/", h.deleteSubscription)
				r.Post("/_process", h.processSubscription)
				r.Post("/_close", h.transition(h.subs.Close))
				r.Post("/_pause", h.transition(h.subs.Pause))
				r.Post("/_resume", h.transition(h.subs.Resume))
				r.Post("/_restore", h.transition(h.subs.Restore))
				r.Post("/_transfer", h.transferSubscription)
				r.Get("/keys", h.subscriptionKeys)
				r.Post("/keys/_renew", h.renewSubscriptionKey)
			})
		})

		r.Post("/applications/{id}/keys/_renew", h.renewApplicationKey)

		r.Route("/keys/{id}", func(r chi.Router) {
			r.Get("/", h.getKey)
			r.Delete("/", h.revokeKey)
			r.Post("/_reactivate", h.reactivateKey)
		})
	})

	return r
}

// instrument counts requests by route pattern and logs them at debug level.
func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		h.log.LogAttrs(r.Context(), slog.LevelDebug, "http request",
			logger.Component("rest"),
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
		)
	})
}
