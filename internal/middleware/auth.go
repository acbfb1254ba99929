package middleware

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/nxsg/chat-api/internal/apperr"
	"github.com/nxsg/chat-api/internal/auth"
	"github.com/nxsg/chat-api/internal/httpx"
)

// TokenParser verifies a raw token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RequireToken validates the x-auth header and injects the token claims into
// the request context. A missing header is Forbidden; a bad, expired or
// revoked token is Unauthorized. denylist may be nil.
func RequireToken(tokens TokenParser, denylist auth.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(auth.TokenHeader)
			if raw == "" {
				httpx.WriteError(w, r, apperr.ErrForbidden)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				httpx.WriteError(w, r, &apperr.Error{Kind: apperr.ErrUnauthorized, Msg: "unauthorized", Wrapped: err})
				return
			}

			if denylist != nil {
				revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					hlog.FromRequest(r).Error().Err(err).Msg("denylist lookup")
				}
				if err != nil || revoked {
					httpx.WriteError(w, r, apperr.New(apperr.ErrUnauthorized, "unauthorized"))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
