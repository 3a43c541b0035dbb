package handler

import (
	"context"
	"net/http"

	"paperarchive/internal/auth"
	"paperarchive/internal/domain"
	"paperarchive/internal/service"
)

type actorKey struct{}

// ActorMiddleware resolves the verified token subject to a portal user and
// stores the resulting actor in the request context. Subjects without a
// portal record are rejected; registration is an admin action.
func ActorMiddleware(users *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.SubjectFromContext(r.Context())
			if subject == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor, err := users.ResolveActor(r.Context(), subject)
			if err != nil {
				respondError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFrom(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(actorKey{}).(domain.Actor)
	return actor
}
