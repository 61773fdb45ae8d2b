package auth

import (
	"net/http"
	"time"
)

const (
	tokenCookie = "token"
	stateCookie = "oauth_state"
)

// SetTokenCookie writes the session JWT as an HttpOnly cookie living as long
// as the token. A non-empty domain enables cross-subdomain sessions.
func SetTokenCookie(w http.ResponseWriter, token, domain string, secure bool, ttl time.Duration) {
	c := &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	if domain != "" {
		c.Domain = domain
	}
	http.SetCookie(w, c)
}

// ClearTokenCookie removes the session cookie with the same Domain attribute
// it was set with.
func ClearTokenCookie(w http.ResponseWriter, domain string) {
	c := &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	if domain != "" {
		c.Domain = domain
	}
	http.SetCookie(w, c)
}

// setStateCookie stores the OAuth state nonce for the callback to compare.
// SameSite=Lax so the cookie survives the top-level redirect back from the
// provider.
func setStateCookie(w http.ResponseWriter, state string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/auth", MaxAge: -1, HttpOnly: true})
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
