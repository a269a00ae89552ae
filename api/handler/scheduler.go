package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/podium/models"
	"github.com/use-agent/podium/scheduler"
)

// SchedulerStatus returns a handler for GET /api/v1/scheduler.
func SchedulerStatus(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    sched.Status(),
		})
	}
}

// SchedulerStart returns a handler for POST /api/v1/scheduler/start.
func SchedulerStart(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sched.Start()
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    sched.Status(),
		})
	}
}

// SchedulerStop returns a handler for POST /api/v1/scheduler/stop.
func SchedulerStop(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sched.Stop()
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    sched.Status(),
		})
	}
}
