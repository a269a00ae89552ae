package models

// APIResponse is the JSON envelope for every endpoint.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`

	// CacheStatus is "hit" or "miss" on leaderboard reads, empty elsewhere.
	CacheStatus string `json:"cache_status,omitempty"`
}
