// Package snapshot writes diagnostic full-page captures to an
// operator-visible location. Captures are observability side effects only;
// failures are logged and never propagate into scrape results.
package snapshot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Sink receives diagnostic page captures.
type Sink interface {
	// Capture stores a full-page screenshot tagged with reason.
	Capture(page *rod.Page, reason string)
}

// Dir writes timestamped PNG captures into a directory.
type Dir struct {
	path string
}

// NewDir creates the directory if needed and returns a Dir sink.
// An empty path returns a Discard sink instead.
func NewDir(path string) Sink {
	if path == "" {
		return Discard{}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		slog.Warn("snapshot dir unavailable, snapshots disabled", "dir", path, "error", err)
		return Discard{}
	}
	return &Dir{path: path}
}

// Capture implements Sink.
func (d *Dir) Capture(page *rod.Page, reason string) {
	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		slog.Warn("snapshot capture failed", "reason", reason, "error", err)
		return
	}

	name := fmt.Sprintf("%s-%s.png", reason, time.Now().UTC().Format("20060102-150405"))
	file := filepath.Join(d.path, name)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		slog.Warn("snapshot write failed", "file", file, "error", err)
		return
	}
	slog.Info("snapshot saved", "reason", reason, "file", file)
}

// Discard drops all captures. For tests and disabled configurations.
type Discard struct{}

func (Discard) Capture(*rod.Page, string) {}
