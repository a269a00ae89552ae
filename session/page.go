package session

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/podium/models"
)

// Base viewport; every page gets a small random offset on top so repeated
// sessions do not share an exact fingerprint.
const (
	baseViewportWidth  = 1920
	baseViewportHeight = 1080
	viewportJitter     = 100
)

// maskScript installs property overrides on the page's global object before
// any page script runs. stealth.JS covers the bulk of known probes; this
// adds the leaderboard target's specific checks observed in the wild.
//
// EvalOnNewDocument sources are evaluated as classic scripts, not invoked
// the way Eval wraps its payloads, so this must stay a self-executing
// expression like stealth.JS itself.
const maskScript = `(() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });

	window.chrome = {
		runtime: { onConnect: undefined, onMessage: undefined },
		loadTimes: () => ({}),
		csi: () => ({}),
		app: {},
	};

	const originalQuery = window.navigator.permissions.query.bind(window.navigator.permissions);
	window.navigator.permissions.query = (parameters) => (
		parameters.name === 'notifications'
			? Promise.resolve({ state: Notification.permission })
			: originalQuery(parameters)
	);

	Object.defineProperty(navigator, 'plugins', {
		get: () => Array.from({ length: 5 }, (_, i) => ({ name: 'Plugin ' + i })),
	});
	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
	Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => 4 });
	Object.defineProperty(navigator, 'deviceMemory', { get: () => 8 });

	Object.defineProperty(screen, 'width', { get: () => 1920 });
	Object.defineProperty(screen, 'height', { get: () => 1080 });
})()`

// navigationHeaders mimic an ordinary address-bar navigation.
var navigationHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate, br",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
}

// NewPage creates a page on the shared session and runs the fixed
// preparation pipeline: user agent, jittered viewport, navigation headers,
// cookie seeding, before-load masking, synthetic pointer movement.
//
// The masking scripts MUST be installed before the first navigation; rod's
// EvalOnNewDocument guarantees they run ahead of any page script.
func (m *Manager) NewPage(ctx context.Context) (*rod.Page, error) {
	m.mu.Lock()
	browser := m.browser
	state := m.state
	m.mu.Unlock()

	if state != StateReady {
		return nil, models.NewScrapeError(models.ErrCodeSessionNotReady,
			"page requested while session is "+state.String(), nil)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserInit,
			"failed to create page on shared session", err)
	}

	if err := m.preparePage(ctx, page); err != nil {
		_ = page.Close()
		return nil, err
	}
	return page, nil
}

func (m *Manager) preparePage(ctx context.Context, page *rod.Page) error {
	p := page.Context(ctx)

	// 1. Realistic user agent.
	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: m.cfg.UserAgent,
	}); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserInit, "set user agent", err)
	}

	// 2. Viewport with jitter around the base resolution.
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             baseViewportWidth + rand.IntN(viewportJitter),
		Height:            baseViewportHeight + rand.IntN(viewportJitter),
		DeviceScaleFactor: 1,
		Mobile:            false,
	}).Call(p); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserInit, "set viewport", err)
	}

	// 3. Ordinary-navigation request headers.
	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(navigationHeaders),
	}).Call(p); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserInit, "set headers", err)
	}

	// 4. Cookie seeding from the optional seed file.
	cookies, err := loadCookieSeed(m.cfg.CookieFile)
	if err != nil {
		return err
	}
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		_, _ = proto.NetworkSetCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}.Call(p)
	}

	// 5. Before-load masking. Both payloads must precede navigation.
	if _, err := p.EvalOnNewDocument(stealth.JS); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserInit, "install stealth overrides", err)
	}
	if _, err := p.EvalOnNewDocument(maskScript); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserInit, "install mask overrides", err)
	}

	// 6. Synthetic pointer movement to seed input-derived fingerprints.
	for _, pt := range []proto.Point{{X: 100, Y: 100}, {X: 200, Y: 200}, {X: 150, Y: 150}} {
		if err := p.Mouse.MoveTo(pt); err != nil {
			break
		}
		_ = m.delay.Wait(ctx, 50*time.Millisecond, 100*time.Millisecond)
	}

	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
