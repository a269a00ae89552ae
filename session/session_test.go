package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/podium/config"
	"github.com/use-agent/podium/models"
)

func TestStateString(t *testing.T) {
	if StateUninitialized.String() != "uninitialized" ||
		StateReady.String() != "ready" ||
		StateClosed.String() != "closed" {
		t.Error("unexpected State string values")
	}
}

func TestManagerStartsUninitialized(t *testing.T) {
	m := NewManager(config.BrowserConfig{}, NoDelay{})
	if m.State() != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", m.State())
	}
	if m.Strategy() != "" {
		t.Fatalf("strategy = %q before any launch", m.Strategy())
	}
}

func TestShutdownBeforeLaunchCloses(t *testing.T) {
	m := NewManager(config.BrowserConfig{}, NoDelay{})
	m.Shutdown()
	if m.State() != StateClosed {
		t.Fatalf("state = %v after shutdown", m.State())
	}
	// Idempotent.
	m.Shutdown()
	if m.State() != StateClosed {
		t.Fatal("second shutdown changed state")
	}
}

func TestEnsureSessionAfterShutdown(t *testing.T) {
	m := NewManager(config.BrowserConfig{}, NoDelay{})
	m.Shutdown()

	err := m.EnsureSession(context.Background())
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSessionNotReady {
		t.Fatalf("got %v, want %s", err, models.ErrCodeSessionNotReady)
	}
}

func TestEnsureSessionHonorsCanceledContext(t *testing.T) {
	m := NewManager(config.BrowserConfig{}, NoDelay{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.EnsureSession(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestNewPageRequiresReadySession(t *testing.T) {
	m := NewManager(config.BrowserConfig{}, NoDelay{})

	_, err := m.NewPage(context.Background())
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSessionNotReady {
		t.Fatalf("got %v, want %s", err, models.ErrCodeSessionNotReady)
	}
}

func TestStrategiesOrderAndOverride(t *testing.T) {
	m := NewManager(config.BrowserConfig{BrowserBin: "/opt/chrome/chrome"}, NoDelay{})

	strats := m.strategies()
	if len(strats) != 3 {
		t.Fatalf("got %d strategies with explicit bin, want 3", len(strats))
	}
	if strats[0].name != "system:/opt/chrome/chrome" {
		t.Errorf("first strategy = %q, want the explicit binary", strats[0].name)
	}
	if strats[len(strats)-2].name != "managed" || strats[len(strats)-1].name != "lookpath" {
		t.Error("managed and lookpath fallbacks must come last, in that order")
	}
}

func TestMaskScriptSelfExecutes(t *testing.T) {
	// EvalOnNewDocument evaluates its source as a classic script. A bare
	// arrow function would be created and discarded without ever running,
	// silently losing every override the payload carries.
	if !strings.HasPrefix(maskScript, "(() => {") || !strings.HasSuffix(maskScript, "})()") {
		t.Fatal("mask payload must be a self-executing expression")
	}
}

func TestStateReadsDoNotBlockDuringLaunch(t *testing.T) {
	m := NewManager(config.BrowserConfig{}, NoDelay{})

	// Simulate a launch in flight: EnsureSession holds launchMu for the
	// whole strategy loop. State and Strategy must still answer.
	m.launchMu.Lock()
	defer m.launchMu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = m.State()
		_ = m.Strategy()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("State/Strategy blocked while a launch was in flight")
	}
}

func TestNoDelayReturnsImmediately(t *testing.T) {
	start := time.Now()
	if err := (NoDelay{}).Wait(context.Background(), time.Hour, time.Hour); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("NoDelay slept")
	}
}

func TestRandomDelayHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (RandomDelay{}).Wait(ctx, time.Hour, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestRandomDelayZeroDuration(t *testing.T) {
	if err := (RandomDelay{}).Wait(context.Background(), 0, 0); err != nil {
		t.Fatal(err)
	}
}
