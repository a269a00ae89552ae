package session

import (
	"encoding/json"
	"fmt"
	"os"
)

// SeedCookie is one cookie from the externally provided seed file.
// The file is a JSON array in the shape browser extensions export.
type SeedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expirationDate,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
}

// loadCookieSeed reads the cookie seed file. A missing file yields an empty
// slice; a present but malformed file is an error worth surfacing.
func loadCookieSeed(path string) ([]SeedCookie, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: read cookie seed %q: %w", path, err)
	}
	var cookies []SeedCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("session: parse cookie seed %q: %w", path, err)
	}
	return cookies, nil
}
