package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/podium/models"
	"github.com/use-agent/podium/scraper"
)

// Leaderboard returns a handler for GET /api/v1/leaderboard.
//
// The orchestrator serves cached entries when fresh; ?refresh=true forces a
// live scrape (still deduplicated against concurrent refreshers).
func Leaderboard(orch *scraper.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		force := c.Query("refresh") == "true"

		entries, source, err := orch.GetData(c.Request.Context(), force)
		if err != nil {
			respondError(c, err)
			return
		}

		cacheStatus := "miss"
		if source == scraper.SourceCache {
			cacheStatus = "hit"
		}
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data: gin.H{
				"entries": entries,
				"total":   len(entries),
				"source":  string(source),
			},
			CacheStatus: cacheStatus,
		})
	}
}

// Refresh returns a handler for POST /api/v1/scrape. It forces a live scrape
// and returns the full result including metadata.
func Refresh(orch *scraper.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := orch.TriggerScrape(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    result,
		})
	}
}

// History returns a handler for GET /api/v1/leaderboard/history. The limit
// query parameter caps how many summaries come back (default 10, max 100).
func History(orch *scraper.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 10
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput,
					"limit must be a positive integer", err))
				return
			}
			limit = min(n, 100)
		}

		records, err := orch.GetHistory(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data: gin.H{
				"records": records,
				"total":   len(records),
			},
		})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.APIResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeNoData:
		return http.StatusNotFound // 404
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
