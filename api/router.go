// Package api exposes the scraped leaderboard over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/podium/api/handler"
	"github.com/use-agent/podium/api/middleware"
	"github.com/use-agent/podium/config"
	"github.com/use-agent/podium/scheduler"
	"github.com/use-agent/podium/scraper"
	"github.com/use-agent/podium/session"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(orch *scraper.Orchestrator, sess *session.Manager, sched *scheduler.Scheduler,
	cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(sess, sched, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Leaderboard reads.
	protected.GET("/leaderboard", handler.Leaderboard(orch))
	protected.GET("/leaderboard/history", handler.History(orch))

	// Forced scrape.
	protected.POST("/scrape", handler.Refresh(orch))

	// Scheduler control.
	protected.GET("/scheduler", handler.SchedulerStatus(sched))
	protected.POST("/scheduler/start", handler.SchedulerStart(sched))
	protected.POST("/scheduler/stop", handler.SchedulerStop(sched))

	return r
}
