package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

func (h *handler) renewApplicationKey(w http.ResponseWriter, r *http.Request) {
	app, err := h.apps.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, notFoundAs(err, domain.ErrApplicationNotFound))
		return
	}
	key, err := h.keys.RenewForApplication(r.Context(), app)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, key)
}

func (h *handler) getKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

// revokeKey revokes and notifies. The answer carries the revoked key.
func (h *handler) revokeKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.RevokeByID(r.Context(), chi.URLParam(r, "id"), true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

func (h *handler) reactivateKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key, err = h.keys.Reactivate(r.Context(), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}
