package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/podium/api"
	"github.com/use-agent/podium/cache"
	"github.com/use-agent/podium/challenge"
	"github.com/use-agent/podium/config"
	"github.com/use-agent/podium/extract"
	"github.com/use-agent/podium/scheduler"
	"github.com/use-agent/podium/scraper"
	"github.com/use-agent/podium/session"
	"github.com/use-agent/podium/snapshot"
	"github.com/use-agent/podium/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("podium starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"target", cfg.Scraper.TargetURL,
	)

	// ── 3. Durable store ────────────────────────────────────────────
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		slog.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// ── 4. Cache, snapshots, session ────────────────────────────────
	cc := cache.NewMemory(cfg.Cache.MaxEntries)
	snapshots := snapshot.NewDir(cfg.Snapshot.Dir)

	// The browser launches lazily on the first scrape; a launch failure
	// here would otherwise block the API from serving persisted data.
	sess := session.NewManager(cfg.Browser, nil)
	defer sess.Shutdown()

	// ── 5. Scrape pipeline ──────────────────────────────────────────
	engine, err := extract.NewEngine()
	if err != nil {
		slog.Error("failed to build extraction engine", "error", err)
		os.Exit(1)
	}
	challenges := challenge.NewHandler(cfg.Challenge, nil, snapshots)
	live := scraper.NewLive(cfg.Scraper, sess, challenges, engine, snapshots, nil)
	orch := scraper.NewOrchestrator(live, cc, st, cfg.Scraper.CacheTTL)

	// ── 6. Scheduler ────────────────────────────────────────────────
	sched := scheduler.New(orch, cfg.Scheduler.IntervalMinutes)
	sched.Start()
	defer sched.Stop()

	// ── 7. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orch, sess, sched, cfg, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// sched.Stop() and sess.Shutdown() run via defer.
	slog.Info("podium stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
