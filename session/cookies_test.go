package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCookieSeedMissingFile(t *testing.T) {
	cookies, err := loadCookieSeed(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing seed file must not error: %v", err)
	}
	if cookies != nil {
		t.Fatalf("got %d cookies from missing file", len(cookies))
	}
}

func TestLoadCookieSeedEmptyPath(t *testing.T) {
	cookies, err := loadCookieSeed("")
	if err != nil || cookies != nil {
		t.Fatalf("empty path: got (%v, %v)", cookies, err)
	}
}

func TestLoadCookieSeedMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCookieSeed(path); err == nil {
		t.Fatal("malformed seed file must error")
	}
}

func TestLoadCookieSeedParsesExportFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	seed := `[
		{"name": "session", "value": "abc123", "domain": ".kaito.ai", "path": "/",
		 "expirationDate": 1893456000.5, "secure": true, "httpOnly": true},
		{"name": "pref", "value": "dark", "domain": "yaps.kaito.ai"}
	]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	cookies, err := loadCookieSeed(path)
	if err != nil {
		t.Fatalf("loadCookieSeed: %v", err)
	}
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}

	first := cookies[0]
	if first.Name != "session" || first.Value != "abc123" || first.Domain != ".kaito.ai" {
		t.Errorf("unexpected first cookie: %+v", first)
	}
	if !first.Secure || !first.HTTPOnly {
		t.Error("secure/httpOnly flags not parsed")
	}
	if first.Expires != 1893456000.5 {
		t.Errorf("expirationDate = %v", first.Expires)
	}
	if cookies[1].Path != "" {
		t.Errorf("absent path should stay empty, got %q", cookies[1].Path)
	}
}
