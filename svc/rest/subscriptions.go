package rest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/apimgmt/pkg/binder"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/svc/subscription"
)

type searchParams struct {
	APIs         []string                    `query:"api"`
	Applications []string                    `query:"application"`
	Plans        []string                    `query:"plan"`
	Statuses     []domain.SubscriptionStatus `query:"status"`
	APIKey       string                      `query:"api_key"`
	Page         int                         `query:"page"`
	Size         int                         `query:"size"`
	Keys         bool                        `query:"keys"`
	Security     bool                        `query:"security"`
}

func (p searchParams) query() domain.SubscriptionQuery {
	return domain.SubscriptionQuery{
		APIs:         p.APIs,
		Applications: p.Applications,
		Plans:        p.Plans,
		Statuses:     p.Statuses,
		APIKey:       p.APIKey,
	}
}

type transferBody struct {
	Plan string `json:"plan"`
}

type renewBody struct {
	CustomKey string `json:"custom_key,omitempty"`
}

func (h *handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscription.NewSubscription
	if err := binder.JSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	sub, err := h.subs.Create(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *handler) searchSubscriptions(w http.ResponseWriter, r *http.Request) {
	p := searchParams{Page: 1, Size: 10}
	if err := binder.Query(r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.subs.Search(r.Context(), p.query(), domain.Pageable{Page: p.Page, Size: p.Size},
		subscription.SearchOptions{Keys: p.Keys, Security: p.Security})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// exportSubscriptions answers every subscription of the search as CSV.
func (h *handler) exportSubscriptions(w http.ResponseWriter, r *http.Request) {
	var p searchParams
	if err := binder.Query(r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.subs.Search(r.Context(), p.query(), domain.Pageable{}, subscription.SearchOptions{})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.subs.ExportCSV(r.Context(), &buf, page.Content); err != nil {
		h.fail(w, r, domain.Technical("export subscriptions", err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="subscriptions.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *handler) fullTextSearch(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Text string `query:"q"`
		Size int    `query:"size"`
	}
	if err := binder.Query(r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	if p.Text == "" {
		h.fail(w, r, fmt.Errorf("%w: q is required", domain.ErrInvalidData))
		return
	}
	subs, err := h.subs.FullTextSearch(r.Context(), p.Text, p.Size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *handler) getSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subs.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *handler) updateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscription.UpdateRequest
	if err := binder.JSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	sub, err := h.subs.Update(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *handler) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.subs.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) processSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscription.ProcessRequest
	if err := binder.JSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	sub, err := h.subs.Process(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type transitionFunc func(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error)

// transition serves the body-less lifecycle operations.
func (h *handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := fn(r.Context(), actor(r), chi.URLParam(r, "id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func (h *handler) transferSubscription(w http.ResponseWriter, r *http.Request) {
	var body transferBody
	if err := binder.JSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	if body.Plan == "" {
		h.fail(w, r, fmt.Errorf("%w: plan is required", domain.ErrInvalidData))
		return
	}
	sub, err := h.subs.Transfer(r.Context(), actor(r), chi.URLParam(r, "id"), body.Plan)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *handler) subscriptionKeys(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subs.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	keys, err := h.keys.FindBySubscription(r.Context(), sub.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *handler) renewSubscriptionKey(w http.ResponseWriter, r *http.Request) {
	var body renewBody
	if r.ContentLength != 0 {
		if err := binder.JSON(r, &body); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	sub, err := h.subs.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key, err := h.keys.Renew(r.Context(), sub, body.CustomKey)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, key)
}
