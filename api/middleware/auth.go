package middleware

import (
	"net/http"
	"strings"

	"github.com/jvacosta/dailyfish-backend/api/responses"
	pkgAuth "github.com/jvacosta/dailyfish-backend/pkg/auth"
	"github.com/jvacosta/dailyfish-backend/pkg/config"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
)

// bearerToken strips an optional "Bearer " scheme off the Authorization
// header and returns the raw token, or empty when none was sent.
func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[len("bearer "):])
	}
	return raw
}

// Auth authenticates the request via its bearer token and stores the user id
// and role in the request context. Log entries downstream carry both fields.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			next.ServeHTTP(w, withIdentity(r, logg, claims))
		})
	}
}

// AuthOptional stores the caller's identity in the request context when a
// valid bearer token is present, so public endpoints can honor staff-only
// filters. Missing or invalid tokens fall through as anonymous.
func AuthOptional(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, withIdentity(r, logg, claims))
		})
	}
}

func withIdentity(r *http.Request, logg *logger.Logger, claims *pkgAuth.AccessTokenClaims) *http.Request {
	userID := claims.UserID.String()
	role := string(claims.Role)

	ctx := WithRole(WithUserID(r.Context(), userID), role)
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id":    userID,
			"actor_role": role,
		})
	}
	return r.WithContext(ctx)
}
