package scraper

import (
	"net/http"
	"testing"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"plain", `<html><head><title>Yapper Leaderboards</title></head></html>`, "Yapper Leaderboards"},
		{"whitespace trimmed", "<title>\n  Hello  \n</title>", "Hello"},
		{"no title", `<html><head></head><body>x</body></html>`, ""},
		{"empty title", `<title></title>`, ""},
		{"truncated markup", `<html><head><title>Cut`, "Cut"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle([]byte(tt.html)); got != tt.want {
				t.Errorf("extractTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLooksLikeBotWall(t *testing.T) {
	tests := []struct {
		name   string
		status int
		title  string
		want   bool
	}{
		{"ok with ordinary title", http.StatusOK, "Yapper Leaderboards", false},
		{"forbidden", http.StatusForbidden, "", true},
		{"too many requests", http.StatusTooManyRequests, "", true},
		{"service unavailable", http.StatusServiceUnavailable, "", true},
		{"cloudflare title on 200", http.StatusOK, "Just a moment...", true},
		{"attention required", http.StatusOK, "Attention Required! | Cloudflare", true},
		{"verification title", http.StatusOK, "Human Verification", true},
		{"not found is not a wall", http.StatusNotFound, "404", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeBotWall(tt.status, tt.title); got != tt.want {
				t.Errorf("looksLikeBotWall(%d, %q) = %v, want %v", tt.status, tt.title, got, tt.want)
			}
		})
	}
}
