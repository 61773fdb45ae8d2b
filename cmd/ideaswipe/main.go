// Command ideaswipe serves the ideaswipe JSON API: Google sign-in, idea
// CRUD, the swipe feed, engagement counters and comments, plus an optional
// read-only MCP endpoint.
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/ideaswipe/auth"
	"github.com/hazyhaar/ideaswipe/config"
	"github.com/hazyhaar/ideaswipe/dbopen"
	"github.com/hazyhaar/ideaswipe/observability"
	"github.com/hazyhaar/ideaswipe/shield"
	"github.com/hazyhaar/ideaswipe/swipe"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const instanceName = "ideaswipe"

func main() {
	cfg, err := config.Load(os.Getenv("IDEASWIPE_CONFIG"))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Application DB: local SQLite file or remote libSQL.
	// Lock waits never outlast a store call.
	db, err := dbopen.Open(cfg.DatabaseURL,
		dbopen.WithMkdirAll(),
		dbopen.WithAuthToken(cfg.DatabaseAuthToken),
		dbopen.WithBusyTimeout(int(cfg.StoreTimeout.Milliseconds())),
	)
	if err != nil {
		slog.Error("open database", "error", err, "remote", dbopen.IsRemote(cfg.DatabaseURL))
		os.Exit(1)
	}
	defer db.Close()
	if err := swipe.ApplySchema(db); err != nil {
		slog.Error("swipe schema", "error", err)
		os.Exit(1)
	}
	if err := shield.Init(db); err != nil {
		slog.Error("shield schema", "error", err)
		os.Exit(1)
	}

	// Observability DB, kept apart from the application DB.
	obsDB, err := dbopen.Open(cfg.ObservabilityDB, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open observability db", "error", err)
		os.Exit(1)
	}
	defer obsDB.Close()
	if err := observability.Init(obsDB); err != nil {
		slog.Error("observability schema", "error", err)
		os.Exit(1)
	}

	events := observability.NewEventLogger(obsDB)
	defer events.Close()
	metrics := observability.NewMetricsManager(obsDB, 100, 5*time.Second)
	defer metrics.Close()
	go observability.NewHeartbeat(obsDB, instanceName, 15*time.Second).Run(ctx)
	observability.StartCleanup(ctx, obsDB, observability.RetentionConfig{
		EventLogsDays:  cfg.RetentionDays,
		MetricsDays:    cfg.RetentionDays,
		HeartbeatsDays: 7,
	})

	// Session secret: SHA-256 of the configured value, always 32 bytes.
	sum := sha256.Sum256([]byte(cfg.SessionSecret))
	gateway, err := auth.NewGateway(auth.GatewayConfig{
		OAuth: auth.NewGoogleProvider(auth.OAuthConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		}),
		Secret:       sum[:],
		TTL:          cfg.SessionTTL,
		CookieDomain: cfg.CookieDomain,
	}, logger)
	if err != nil {
		slog.Error("auth gateway", "error", err)
		os.Exit(1)
	}

	svc := swipe.New(db, &swipe.Config{
		PublicURL:    cfg.PublicURL,
		StoreTimeout: cfg.StoreTimeout,
	}, logger, swipe.WithEvents(events))

	var mcpSrv *mcp.Server
	if cfg.MCPEnabled {
		mcpSrv = mcp.NewServer(&mcp.Implementation{Name: instanceName, Version: "1.0.0"}, nil)
		svc.RegisterMCP(mcpSrv)
		slog.Info("mcp enabled", "path", "/mcp")
	}

	proxies, err := shield.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		slog.Error("trusted proxies", "error", err)
		os.Exit(1)
	}

	handler, rl := newRouter(routerDeps{
		DB:             db,
		ObsDB:          obsDB,
		Service:        svc,
		Gateway:        gateway,
		Metrics:        metrics,
		MCP:            mcpSrv,
		TrustedProxies: proxies,
	})
	rl.StartReloader(ctx.Done())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "public_url", cfg.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}
