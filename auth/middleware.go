package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hazyhaar/ideaswipe/kit"
)

type claimsKey struct{}

// Middleware returns an http.Handler middleware that extracts a session JWT
// from the "token" cookie or the Authorization Bearer header. A cookie that
// fails validation is cleared and the header is tried next. Valid claims are
// injected into the request context along with kit.UserEmailKey. Missing or
// invalid tokens are ignored here; use RequireSession to enforce.
//
// Use Gateway.Middleware when sessions are set with a cookie domain, so the
// stale cookie is cleared on the same domain.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return sessionMiddleware(secret, "")
}

// Middleware is the session middleware bound to the gateway's key and
// cookie domain.
func (g *Gateway) Middleware() func(http.Handler) http.Handler {
	return sessionMiddleware(g.secret, g.cookieDomain)
}

func sessionMiddleware(secret []byte, cookieDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *SessionClaims
			if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
				if claims, err = ValidateToken(secret, c.Value); err != nil {
					claims = nil
					ClearTokenCookie(w, cookieDomain)
				}
			}
			if claims == nil {
				if h, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && h != "" {
					if c, err := ValidateToken(secret, h); err == nil {
						claims = c
					}
				}
			}

			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores claims and the acting email in ctx.
func WithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	ctx = context.WithValue(ctx, claimsKey{}, claims)
	return kit.WithUserEmail(ctx, claims.Email)
}

// GetClaims retrieves the SessionClaims from the context, or nil if absent.
func GetClaims(ctx context.Context) *SessionClaims {
	c, _ := ctx.Value(claimsKey{}).(*SessionClaims)
	return c
}

// RequireSession answers 401 JSON when no valid session is in the context.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
