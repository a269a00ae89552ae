// Package scraper contains the scrape pipeline: an HTTP preflight probe, the
// browser-driven live scraper, and the orchestrator that layers caching,
// persistence and request dedup on top.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/use-agent/podium/challenge"
	"github.com/use-agent/podium/config"
	"github.com/use-agent/podium/extract"
	"github.com/use-agent/podium/models"
	"github.com/use-agent/podium/session"
	"github.com/use-agent/podium/snapshot"
)

// Scraper produces one fresh scrape result per call.
type Scraper interface {
	Scrape(ctx context.Context) (*models.ScrapeResult, error)
}

// ChallengeRunner resolves interstitial pages before extraction.
// challenge.Handler is the production implementation.
type ChallengeRunner interface {
	Run(ctx context.Context, page *rod.Page) (challenge.Outcome, error)
}

// Live is the browser-backed Scraper. One Scrape call runs the whole
// pipeline: probe, session, navigation, challenge handling, extraction.
type Live struct {
	cfg        config.ScraperConfig
	session    *session.Manager
	challenges ChallengeRunner
	engine     *extract.Engine
	snapshots  snapshot.Sink
	delay      session.DelayPolicy
}

// NewLive assembles the live scraper. A nil delay uses randomized waits; a
// nil sink disables snapshots.
func NewLive(cfg config.ScraperConfig, sess *session.Manager, challenges ChallengeRunner,
	engine *extract.Engine, snapshots snapshot.Sink, delay session.DelayPolicy) *Live {
	if delay == nil {
		delay = session.RandomDelay{}
	}
	if snapshots == nil {
		snapshots = snapshot.Discard{}
	}
	return &Live{
		cfg:        cfg,
		session:    sess,
		challenges: challenges,
		engine:     engine,
		snapshots:  snapshots,
		delay:      delay,
	}
}

// Scrape implements Scraper.
func (l *Live) Scrape(ctx context.Context) (*models.ScrapeResult, error) {
	started := time.Now()
	meta := models.ScrapeMetadata{}

	// 1. HTTP preflight probe. Diagnostic only; never blocks the browser path.
	if probe, err := probeTarget(ctx, l.cfg.TargetURL); err != nil {
		slog.Debug("preflight probe failed", "error", err)
	} else {
		meta.ProbeStatus = probe.Status
		meta.ProbeBotWall = probe.BotWall
		slog.Info("preflight probe", "status", probe.Status,
			"title", probe.Title, "botWall", probe.BotWall)
	}

	// 2. Shared browser session, launched lazily on first use.
	if err := l.session.EnsureSession(ctx); err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserInit, "browser session unavailable")
	}

	// 3. Prepared page. Closed on every exit path.
	page, err := l.session.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Debug("page close failed", "error", err)
		}
	}()

	// 4. Navigate within the navigation budget.
	if err := l.navigate(ctx, page); err != nil {
		return nil, err
	}

	// 5. Settle wait for client-rendered content, with jitter.
	if err := l.delay.Wait(ctx, l.cfg.SettleDelay, l.cfg.SettleDelay/2); err != nil {
		return nil, categorizeError(err, models.ErrCodeNavigation, "settle wait interrupted")
	}

	// 6. Challenge handling. A failed outcome is flagged, not fatal.
	outcome, err := l.challenges.Run(ctx, page)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeNavigation, "challenge handling failed")
	}
	meta.ChallengeUnresolved = outcome == challenge.OutcomeFailed

	// 7. Extraction.
	extracted, err := l.engine.Extract(page)
	if err != nil {
		return nil, err
	}
	meta.Selector = extracted.Selector
	meta.MatchCount = extracted.MatchCount

	l.fillPageState(page, &meta)

	result, err := finalize(extracted.Entries, meta, l.cfg.TargetURL, time.Now().UTC())
	if err != nil {
		l.snapshots.Capture(page, "blocked-empty")
		return nil, err
	}
	if result.TotalEntries == 0 {
		slog.Warn("extraction produced no entries",
			"selector", meta.Selector, "matchCount", meta.MatchCount, "title", meta.PageTitle)
		l.snapshots.Capture(page, "empty-extraction")
	}

	slog.Info("scrape complete", "entries", result.TotalEntries,
		"selector", meta.Selector, "challengeUnresolved", meta.ChallengeUnresolved,
		"duration", time.Since(started).Round(time.Millisecond))
	return result, nil
}

// finalize turns an extraction outcome into the scrape result. Zero entries
// with the challenge still up means the interstitial was scraped, not the
// leaderboard; that fails the scrape so the fallback chain engages instead
// of persisting a bogus empty result. Zero entries on a clear page is a
// legitimate result.
func finalize(entries []models.LeaderboardEntry, meta models.ScrapeMetadata,
	sourceURL string, at time.Time) (*models.ScrapeResult, error) {
	if len(entries) == 0 && meta.ChallengeUnresolved {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			"challenge unresolved and no entries extracted", nil)
	}
	return &models.ScrapeResult{
		Entries:      entries,
		TotalEntries: len(entries),
		ScrapedAt:    at,
		SourceURL:    sourceURL,
		Metadata:     meta,
	}, nil
}

// navigate drives the page to the target and waits for it to become usable.
// Load and DOM-stability waits are best-effort; heavy pages keep streaming
// analytics requests long after the leaderboard is rendered.
func (l *Live) navigate(ctx context.Context, page *rod.Page) error {
	navCtx, cancel := context.WithTimeout(ctx, l.cfg.NavigationTimeout)
	defer cancel()
	p := page.Context(navCtx)

	if err := p.Navigate(l.cfg.TargetURL); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "navigation to target failed")
	}
	if err := p.WaitLoad(); err != nil {
		slog.Debug("wait load did not complete", "error", err)
	}
	if err := p.WaitDOMStable(time.Second, 0.2); err != nil {
		slog.Debug("DOM did not stabilize", "error", err)
	}
	return nil
}

// fillPageState records the page's final title, URL and effective user agent.
// All best-effort: metadata gaps must never fail a scrape.
func (l *Live) fillPageState(page *rod.Page, meta *models.ScrapeMetadata) {
	if info, err := page.Info(); err == nil {
		meta.PageTitle = info.Title
		meta.FinalURL = info.URL
	} else {
		slog.Debug("page info unavailable", "error", err)
	}
	if res, err := page.Eval(`() => navigator.userAgent`); err == nil {
		meta.UserAgent = res.Value.Str()
	}
}

// categorizeError wraps err in a ScrapeError, upgrading deadline expiry to
// the timeout code so API clients can tell slowness from breakage.
func categorizeError(err error, code, message string) error {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewScrapeError(models.ErrCodeTimeout, message, err)
	}
	return models.NewScrapeError(code, message, err)
}
