package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/apimgmt/pkg/logger"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail answers err. Internal messages are not leaked to the caller.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, key := classify(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.log.LogAttrs(r.Context(), slog.LevelError, "request failed",
			logger.Component("rest"),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: key, Message: msg})
}
