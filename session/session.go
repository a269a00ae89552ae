// Package session owns the lifecycle of the single shared browser process
// and produces fingerprint-spoofed page handles. Nothing outside this
// package ever launches, re-assigns, or closes the browser.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/use-agent/podium/config"
	"github.com/use-agent/podium/models"
)

// State is the observable session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// LaunchAttempt records one failed launch strategy for diagnostics.
type LaunchAttempt struct {
	Strategy string
	Err      error
}

// BrowserInitError means no launch strategy succeeded. It carries every
// attempt so operators can see exactly what was tried and why it failed.
type BrowserInitError struct {
	Attempts []LaunchAttempt
}

func (e *BrowserInitError) Error() string {
	var b strings.Builder
	b.WriteString("session: all launch strategies failed:")
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, " [%s: %v]", a.Strategy, a.Err)
	}
	return b.String()
}

// launchStrategy is one entry of the ordered launch catalogue. Strategies
// are evaluated lazily in priority order; the first success is adopted and
// no further strategies are tried.
type launchStrategy struct {
	name  string
	build func() *launcher.Launcher
}

// Manager owns the shared browser. It is safe for concurrent use, though
// the orchestrator's dedup contract means only one scrape drives it at a
// time in practice.
type Manager struct {
	cfg   config.BrowserConfig
	delay DelayPolicy

	// launchMu serializes launch attempts. Launching can take the sum of
	// several strategy timeouts, so it must never hold mu: State and
	// Strategy back the health endpoint and have to stay responsive.
	launchMu sync.Mutex

	mu       sync.Mutex
	state    State
	browser  *rod.Browser
	launcher *launcher.Launcher
	strategy string
}

// NewManager creates an uninitialized Manager; the browser launches lazily
// on the first EnsureSession call.
func NewManager(cfg config.BrowserConfig, delay DelayPolicy) *Manager {
	if delay == nil {
		delay = RandomDelay{}
	}
	return &Manager{cfg: cfg, delay: delay}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Strategy returns the adopted launch strategy name, or "" before launch.
func (m *Manager) Strategy() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strategy
}

// EnsureSession lazily launches the browser on first use and returns once a
// session is ready. A closed manager cannot be revived.
func (m *Manager) EnsureSession(ctx context.Context) error {
	m.launchMu.Lock()
	defer m.launchMu.Unlock()

	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	switch state {
	case StateReady:
		return nil
	case StateClosed:
		return models.NewScrapeError(models.ErrCodeSessionNotReady,
			"session manager already shut down", nil)
	}

	var attempts []LaunchAttempt
	for _, strat := range m.strategies() {
		if err := ctx.Err(); err != nil {
			return err
		}

		l := strat.build()
		applyStealthFlags(l, m.cfg)

		controlURL, err := l.Launch()
		if err != nil {
			slog.Warn("launch strategy failed", "strategy", strat.name, "error", err)
			attempts = append(attempts, LaunchAttempt{Strategy: strat.name, Err: err})
			l.Kill()
			continue
		}

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			slog.Warn("browser connect failed", "strategy", strat.name, "error", err)
			attempts = append(attempts, LaunchAttempt{Strategy: strat.name, Err: err})
			l.Kill()
			continue
		}

		m.mu.Lock()
		if m.state == StateClosed {
			m.mu.Unlock()
			_ = browser.Close()
			l.Kill()
			return models.NewScrapeError(models.ErrCodeSessionNotReady,
				"session manager shut down during launch", nil)
		}
		m.browser = browser
		m.launcher = l
		m.strategy = strat.name
		m.state = StateReady
		m.mu.Unlock()

		slog.Info("browser session ready", "strategy", strat.name, "controlURL", controlURL)
		return nil
	}

	return &BrowserInitError{Attempts: attempts}
}

// Shutdown closes the browser and kills its process. Idempotent.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady {
		m.state = StateClosed
		return
	}
	slog.Info("session shutting down", "strategy", m.strategy)
	if err := m.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	m.launcher.Kill()
	m.browser = nil
	m.launcher = nil
	m.state = StateClosed
}

// strategies builds the ordered launch catalogue:
//
//  1. system Chrome binary with the persistent user profile
//  2. rod-managed (downloaded) browser
//  3. auto-detected binary on PATH
//
// The explicit PODIUM_BROWSER_BIN override, when set, becomes the sole
// candidate of the first strategy.
func (m *Manager) strategies() []launchStrategy {
	var out []launchStrategy

	bins := systemChromeBins()
	if m.cfg.BrowserBin != "" {
		bins = []string{m.cfg.BrowserBin}
	}
	for _, bin := range bins {
		bin := bin
		out = append(out, launchStrategy{
			name: "system:" + bin,
			build: func() *launcher.Launcher {
				l := launcher.New().Bin(bin)
				if m.cfg.UserDataDir != "" {
					l = l.UserDataDir(m.cfg.UserDataDir)
				}
				return l
			},
		})
	}

	out = append(out, launchStrategy{
		name:  "managed",
		build: func() *launcher.Launcher { return launcher.New() },
	})

	out = append(out, launchStrategy{
		name: "lookpath",
		build: func() *launcher.Launcher {
			l := launcher.New()
			if bin, ok := launcher.LookPath(); ok {
				l = l.Bin(bin)
			}
			return l
		},
	})

	return out
}

// systemChromeBins returns the per-OS candidate Chrome binaries that may
// carry a real user profile.
func systemChromeBins() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			filepath.Join(home, `AppData\Local\Google\Chrome\Application\chrome.exe`),
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
		}
	}
}

// applyStealthFlags configures the fixed anti-automation flag set shared by
// every launch strategy: no automation banners, stable rendering, no
// telemetry or crash reporting, fixed large viewport.
func applyStealthFlags(l *launcher.Launcher, cfg config.BrowserConfig) {
	l.Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "TranslateUI,AudioServiceOutOfProcess")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-background-networking"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-crash-reporter"))
	l.Set(flags.Flag("disable-breakpad"))
	l.Set(flags.Flag("disable-client-side-phishing-detection"))
	l.Set(flags.Flag("disable-session-crashed-bubble"))
	l.Set(flags.Flag("hide-crash-restore-bubble"))
	l.Set(flags.Flag("disable-domain-reliability"))
	l.Set(flags.Flag("disable-sync"))
	l.Set(flags.Flag("mute-audio"))
	l.Set(flags.Flag("no-default-browser-check"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("force-color-profile"), "srgb")
	l.Set(flags.Flag("window-size"), "1920,1080")
}
