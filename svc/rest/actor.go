package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

const (
	HeaderUserID        = "X-User-ID"
	HeaderEnvironmentID = "X-Environment-ID"
	HeaderRole          = "X-Role"
	HeaderGroups        = "X-Groups"
)

// actorFrom reads the caller identity set by the gateway in front of the
// service.
func actorFrom(r *http.Request) domain.Actor {
	var groups []string
	for _, v := range r.Header.Values(HeaderGroups) {
		for g := range strings.SplitSeq(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
	}
	return domain.Actor{
		UserID:        r.Header.Get(HeaderUserID),
		EnvironmentID: r.Header.Get(HeaderEnvironmentID),
		Role:          strings.ToUpper(r.Header.Get(HeaderRole)),
		Groups:        groups,
	}
}

// withActor stores the request actor in the context for the audit logger.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actorFrom(r))))
	})
}

func actor(r *http.Request) domain.Actor {
	if a, ok := domain.ActorFromContext(r.Context()); ok {
		return a
	}
	return actorFrom(r)
}
