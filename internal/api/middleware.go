package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/thomurie/jobly/internal/auth"
)

// claimsFrom returns the verified token claims, or nil for anonymous requests.
func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// AuthenticateMiddleware verifies a bearer token when one is supplied and
// stores its claims on the request context. Invalid tokens are treated as
// anonymous; the ensure* wrappers decide whether that is acceptable.
func (s *APIServer) AuthenticateMiddleware(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || s.deps.Tokens == nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.deps.Tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			s.logger.Debug("rejected token", "error", err, "request_id", RequestIDFrom(r.Context()))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

func (s *APIServer) ensureLoggedIn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()) == nil {
			RespondError(w, s.logger, fmt.Errorf("%w: login required", auth.ErrUnauthorized))
			return
		}
		next(w, r)
	}
}

func (s *APIServer) ensureAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.ensureLoggedIn(func(w http.ResponseWriter, r *http.Request) {
		if !claimsFrom(r.Context()).IsAdmin {
			RespondError(w, s.logger, fmt.Errorf("%w: admin required", auth.ErrUnauthorized))
			return
		}
		next(w, r)
	})
}

func (s *APIServer) ensureAdminOrSameUser(next http.HandlerFunc) http.HandlerFunc {
	return s.ensureLoggedIn(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if !claims.IsAdmin && claims.Username != mux.Vars(r)["username"] {
			RespondError(w, s.logger, fmt.Errorf("%w: admin or same user required", auth.ErrUnauthorized))
			return
		}
		next(w, r)
	})
}
