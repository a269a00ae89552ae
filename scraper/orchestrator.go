package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/use-agent/podium/cache"
	"github.com/use-agent/podium/models"
	"github.com/use-agent/podium/store"
)

// Source says which layer of the fallback chain served a read.
type Source string

const (
	SourceCache Source = "cache"
	SourceLive  Source = "live"
	SourceStore Source = "store"
)

// scrapeBudget caps one live scrape end to end, independent of any single
// caller's deadline. Shared singleflight waiters depend on the scrape
// outliving the first caller.
const scrapeBudget = 3 * time.Minute

// Orchestrator layers caching, persistence and request dedup over a Scraper.
// Concurrent scrape demands coalesce into a single browser run.
type Orchestrator struct {
	scraper  Scraper
	cache    cache.Cache
	store    store.Store
	cacheTTL time.Duration

	group singleflight.Group
}

// NewOrchestrator wires the fallback chain.
func NewOrchestrator(s Scraper, c cache.Cache, st store.Store, cacheTTL time.Duration) *Orchestrator {
	return &Orchestrator{
		scraper:  s,
		cache:    c,
		store:    st,
		cacheTTL: cacheTTL,
	}
}

// GetData returns leaderboard entries via the chain cache, live scrape,
// store. forceRefresh skips the cache read but still dedups concurrent
// scrapes. Cache errors degrade to misses; a live failure falls back to the
// latest persisted result before propagating.
func (o *Orchestrator) GetData(ctx context.Context, forceRefresh bool) ([]models.LeaderboardEntry, Source, error) {
	if !forceRefresh {
		entries, ok, err := o.cache.Get(ctx, cache.LeaderboardKey)
		if err != nil {
			slog.Warn("cache read failed, treating as miss", "error", err)
		} else if ok {
			return entries, SourceCache, nil
		}
	}

	result, err := o.scrape(ctx)
	if err == nil {
		return result.Entries, SourceLive, nil
	}
	slog.Error("live scrape failed, falling back", "error", err)

	// Stale cache beats no data even on a forced refresh.
	if entries, ok, cErr := o.cache.Get(ctx, cache.LeaderboardKey); cErr == nil && ok {
		return entries, SourceCache, nil
	}

	if persisted, sErr := o.store.Latest(ctx); sErr == nil {
		slog.Info("serving persisted fallback", "scrapedAt", persisted.ScrapedAt,
			"entries", persisted.TotalEntries)
		return persisted.Entries, SourceStore, nil
	} else if !errors.Is(sErr, store.ErrNoRecords) {
		slog.Warn("store fallback failed", "error", sErr)
	}

	return nil, "", err
}

// TriggerScrape forces a live scrape and returns its full result. Concurrent
// triggers share one browser run.
func (o *Orchestrator) TriggerScrape(ctx context.Context) (*models.ScrapeResult, error) {
	return o.scrape(ctx)
}

// GetHistory returns summaries of recent persisted scrapes, newest first.
func (o *Orchestrator) GetHistory(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	records, err := o.store.History(ctx, limit)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeStore, "history query failed", err)
	}
	return records, nil
}

// scrape coalesces concurrent demands into one browser run and, on success,
// persists and caches the result. The run is detached from the first
// caller's cancellation so that waiters joining mid-flight still get an
// answer, but each waiter's own context is honored.
func (o *Orchestrator) scrape(ctx context.Context) (*models.ScrapeResult, error) {
	ch := o.group.DoChan("scrape", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), scrapeBudget)
		defer cancel()

		result, err := o.scraper.Scrape(runCtx)
		if err != nil {
			return nil, err
		}

		// Store failure is non-fatal. The scrape already succeeded and the
		// caller should get its data.
		if err := o.store.Append(runCtx, result); err != nil {
			slog.Error("persisting scrape result failed", "error", err)
		}
		if err := o.cache.Set(runCtx, cache.LeaderboardKey, result.Entries, o.cacheTTL); err != nil {
			slog.Warn("caching scrape result failed", "error", err)
		}
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("scrape result shared with concurrent caller")
		}
		return res.Val.(*models.ScrapeResult), nil
	case <-ctx.Done():
		return nil, categorizeError(ctx.Err(), models.ErrCodeTimeout, "scrape wait canceled")
	}
}
