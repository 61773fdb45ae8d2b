package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HandleLogin starts the OAuth flow: it stores a fresh state nonce in a
// cookie and redirects to the provider.
func (g *Gateway) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := g.newState()
	setStateCookie(w, state, isSecure(r))
	http.Redirect(w, r, g.LoginURL(state), http.StatusFound)
}

// HandleCallback completes the OAuth flow, sets the session cookie and
// redirects to the landing path.
func (g *Gateway) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "provider denied sign-in: " + e})
		return
	}
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid oauth state"})
		return
	}
	clearStateCookie(w)

	code := q.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing code"})
		return
	}

	_, token, err := g.SignIn(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrUnverifiedEmail) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		g.logger.Error("auth: sign-in failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "identity provider failure"})
		return
	}

	SetTokenCookie(w, token, g.cookieDomain, isSecure(r), g.ttl)
	http.Redirect(w, r, g.landing, http.StatusFound)
}

// HandleLogout clears the session cookie.
func (g *Gateway) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	ClearTokenCookie(w, g.cookieDomain)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMe returns the current session. Mount behind RequireSession.
func (g *Gateway) HandleMe(w http.ResponseWriter, r *http.Request) {
	s := CurrentSession(r.Context())
	if s == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
