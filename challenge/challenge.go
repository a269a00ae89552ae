// Package challenge detects interstitial verification pages and attempts a
// bounded automated resolution before extraction runs.
package challenge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/podium/config"
	"github.com/use-agent/podium/session"
	"github.com/use-agent/podium/snapshot"
)

// Outcome is the terminal state of one challenge-handling pass.
type Outcome int

const (
	// OutcomeClear means no challenge was ever detected.
	OutcomeClear Outcome = iota
	// OutcomeResolved means a challenge was detected and cleared.
	OutcomeResolved
	// OutcomeFailed means the round budget and the single reload were both
	// exhausted with the page still challenged. Not an error: the caller
	// proceeds to extraction and flags the result.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeFailed:
		return "failed"
	default:
		return "clear"
	}
}

// titlePhrases mark a challenge when present in a lowercased page title.
var titlePhrases = []string{
	"human verification",
	"verification",
	"captcha",
	"just a moment",
	"please wait",
}

// stageMarkers are DOM selectors whose presence marks a challenge page.
var stageMarkers = []string{
	`[data-testid="challenge-stage"]`,
	".challenge-stage",
	".cf-challenge-stage",
	"#challenge-running",
	"#cf-challenge-running",
	"#turnstile-wrapper",
}

// clickTexts select interactive elements worth clicking during resolution.
var clickTexts = []string{"continue", "proceed", "verify", "human", "robot"}

// IsChallengePage is the detection predicate: challenge phrase in the title
// OR a known challenge-stage marker in the markup.
func IsChallengePage(title, html string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range titlePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	for _, marker := range stageMarkers {
		if doc.Find(marker).Length() > 0 {
			return true
		}
	}
	return false
}

// Handler runs the challenge state machine
// Normal → Detected → Resolving → {Resolved | Failed}.
type Handler struct {
	cfg       config.ChallengeConfig
	delay     session.DelayPolicy
	snapshots snapshot.Sink
}

// NewHandler creates a Handler. A nil sink disables snapshots.
func NewHandler(cfg config.ChallengeConfig, delay session.DelayPolicy, snapshots snapshot.Sink) *Handler {
	if delay == nil {
		delay = session.RandomDelay{}
	}
	if snapshots == nil {
		snapshots = snapshot.Discard{}
	}
	return &Handler{cfg: cfg, delay: delay, snapshots: snapshots}
}

// pageDriver is the narrow page surface the state machine drives. rodDriver
// adapts a live *rod.Page; tests script their own.
type pageDriver interface {
	// state returns the current title and markup.
	state() (title, html string, err error)
	// click presses the first interactive challenge element. Best effort.
	click()
	// reload re-navigates the page and waits for it to load. Best effort.
	reload()
	// capture stores a diagnostic snapshot tagged with reason.
	capture(reason string)
}

// Run evaluates the detection predicate and, if it matches, attempts up to
// MaxRounds click-and-recheck rounds followed by exactly one reload. Page
// inspection failures propagate; click and reload failures are swallowed.
func (h *Handler) Run(ctx context.Context, page *rod.Page) (Outcome, error) {
	return h.resolve(ctx, &rodDriver{page: page, snapshots: h.snapshots})
}

func (h *Handler) resolve(ctx context.Context, d pageDriver) (Outcome, error) {
	title, html, err := d.state()
	if err != nil {
		return OutcomeClear, err
	}
	if !IsChallengePage(title, html) {
		return OutcomeClear, nil
	}

	slog.Warn("challenge page detected", "title", title)
	d.capture("challenge-detected")

	for round := 0; round < h.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return OutcomeFailed, err
		}

		d.click()

		if err := h.delay.Wait(ctx, h.cfg.SettleInterval, h.cfg.SettleInterval/2); err != nil {
			return OutcomeFailed, err
		}

		title, html, err = d.state()
		if err != nil {
			return OutcomeFailed, err
		}
		if !IsChallengePage(title, html) {
			slog.Info("challenge resolved", "round", round+1, "title", title)
			return OutcomeResolved, nil
		}
		slog.Debug("challenge still present", "round", round+1, "title", title)
	}

	// Round budget exhausted: exactly one reload, then one final check.
	slog.Info("challenge rounds exhausted, reloading once")
	d.reload()
	_ = h.delay.Wait(ctx, h.cfg.SettleInterval, h.cfg.SettleInterval/2)

	title, html, err = d.state()
	if err != nil {
		return OutcomeFailed, err
	}
	if !IsChallengePage(title, html) {
		slog.Info("challenge resolved after reload", "title", title)
		return OutcomeResolved, nil
	}

	slog.Warn("challenge unresolved, proceeding anyway", "title", title)
	d.capture("challenge-failed")
	return OutcomeFailed, nil
}

// rodDriver adapts a live page to the state machine.
type rodDriver struct {
	page      *rod.Page
	snapshots snapshot.Sink
}

func (d *rodDriver) state() (string, string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", "", err
	}
	html, err := d.page.HTML()
	if err != nil {
		return info.Title, "", err
	}
	return info.Title, html, nil
}

// click clicks the first element matching the checkbox/button heuristic.
// Element handles are released to avoid leaking DOM references.
func (d *rodDriver) click() {
	elements, err := d.page.Elements(strings.Join([]string{
		`input[type="checkbox"]`,
		`button[type="submit"]`,
		`input[type="submit"]`,
		"button",
		".challenge-button",
		".verify-button",
		".continue-button",
	}, ", "))
	if err != nil {
		slog.Debug("challenge element query failed", "error", err)
		return
	}
	defer func() {
		for _, el := range elements {
			_ = el.Release()
		}
	}()

	for _, el := range elements {
		if !isClickCandidate(el) {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Debug("challenge click failed", "error", err)
			continue
		}
		slog.Info("clicked challenge element")
		return
	}
}

func (d *rodDriver) reload() {
	if err := d.page.Reload(); err != nil {
		slog.Warn("challenge reload failed", "error", err)
		return
	}
	if err := d.page.WaitLoad(); err != nil {
		slog.Debug("wait after reload failed", "error", err)
	}
}

func (d *rodDriver) capture(reason string) {
	d.snapshots.Capture(d.page, reason)
}

// isClickCandidate matches checkboxes and buttons whose visible text hits
// the continue/proceed/verify/human vocabulary.
func isClickCandidate(el *rod.Element) bool {
	if typ, err := el.Attribute("type"); err == nil && typ != nil && *typ == "checkbox" {
		return true
	}
	text, err := el.Text()
	if err != nil {
		return false
	}
	lower := strings.ToLower(text)
	for _, t := range clickTexts {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
