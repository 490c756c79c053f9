package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stewardhq/steward/internal/platform/httpx"
)

// CookieName is the cookie carrying the session token for browser clients.
const CookieName = "authToken"

type claimsContextKey struct{}

// ContextWithClaims stores verified claims in the request context.
func ContextWithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext extracts claims stored by the admin gate.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(Claims)
	return claims, ok
}

// Middleware gates entry to the administrative area.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAdmin verifies the bearer token on every request and rejects
// structurally valid tokens whose role is not admin. The decision is never
// cached beyond the token's own validity window.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Service.Verify(BearerToken(r))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if claims.Role != AdminRole {
			if m.Logger != nil {
				m.Logger.Warn("non-admin denied", slog.Int64("account_id", claims.AccountID), slog.String("path", r.URL.Path))
			}
			httpx.Error(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// BearerToken extracts the raw token from the Authorization header, falling
// back to the session cookie set at login.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
