package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/podium/models"
	"github.com/use-agent/podium/scheduler"
	"github.com/use-agent/podium/session"
)

// Health returns a handler for GET /api/v1/health.
//
// An uninitialized session is still healthy: the browser launches lazily on
// the first scrape. Only a closed session degrades the status.
func Health(sess *session.Manager, sched *scheduler.Scheduler, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := sess.State()

		status := "healthy"
		if state == session.StateClosed {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data: gin.H{
				"status":            status,
				"uptime":            time.Since(startTime).Round(time.Second).String(),
				"session_state":     state.String(),
				"launch_strategy":   sess.Strategy(),
				"scheduler_running": sched.Status().Running,
				"version":           "0.1.0",
			},
		})
	}
}
