package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/ideaswipe/auth"
	"github.com/hazyhaar/ideaswipe/kit"
	"github.com/hazyhaar/ideaswipe/observability"
	"github.com/hazyhaar/ideaswipe/shield"
	"github.com/hazyhaar/ideaswipe/swipe"
)

type routerDeps struct {
	DB      *sql.DB
	ObsDB   *sql.DB // optional, enables heartbeat status in /healthz
	Service *swipe.Service
	Gateway *auth.Gateway
	Metrics *observability.MetricsManager // optional
	MCP     *mcp.Server                   // optional

	// TrustedProxies gates X-Forwarded-For for the anonymous rate-limit key.
	TrustedProxies []netip.Prefix
}

// newRouter assembles the HTTP surface. The returned RateLimiter still needs
// StartReloader.
func newRouter(d routerDeps) (http.Handler, *shield.RateLimiter) {
	r := chi.NewRouter()
	stack, rl := shield.DefaultStack(d.DB)
	for _, mw := range stack {
		r.Use(mw)
	}
	if d.Metrics != nil {
		r.Use(observability.RequestMetrics(d.Metrics))
	}
	r.Use(d.Gateway.Middleware())

	clientIP := shield.ClientIP(d.TrustedProxies)
	rl.SetClientKey(func(r *http.Request) string {
		if email := kit.GetUserEmail(r.Context()); email != "" {
			return email
		}
		return clientIP(r)
	})

	r.Get("/healthz", healthz(d.DB, d.ObsDB))

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/login", d.Gateway.HandleLogin)
		r.Get("/callback", d.Gateway.HandleCallback)
		r.Post("/logout", d.Gateway.HandleLogout)
		r.With(auth.RequireSession).Get("/me", d.Gateway.HandleMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession)
		r.Use(rl.Middleware)
		d.Service.Routes(r)
	})

	if d.MCP != nil {
		h := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return d.MCP }, nil)
		r.With(auth.RequireSession).Handle("/mcp", h)
	}

	return r, rl
}

func healthz(db, obsDB *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"status": "ok"}
		if err := db.PingContext(r.Context()); err != nil {
			shield.GetLogger(r.Context()).Error("healthz: database unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": "database unreachable"})
			return
		}
		if obsDB != nil {
			if hb, err := observability.LatestHeartbeat(r.Context(), obsDB, instanceName, time.Minute); err == nil && hb != nil {
				resp["heartbeat"] = hb
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
