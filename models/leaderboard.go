package models

import "time"

// LeaderboardEntry is one extracted row of the target leaderboard.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`

	// Provenance records where the values came from, for diagnostics.
	Provenance *Provenance `json:"provenance,omitempty"`
}

// Provenance carries the raw matched text and the selector/strategy that
// produced an entry. It is diagnostic only and never interpreted.
type Provenance struct {
	RawRank     string `json:"raw_rank,omitempty"`
	RawUsername string `json:"raw_username,omitempty"`
	RawScore    string `json:"raw_score,omitempty"`
	Selector    string `json:"selector,omitempty"`
	Strategy    int    `json:"strategy,omitempty"`
}

// ScrapeMetadata describes the page state at extraction time.
type ScrapeMetadata struct {
	PageTitle string `json:"page_title,omitempty"`
	FinalURL  string `json:"final_url,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	// Selector is the winning catalogue pattern; MatchCount is how many
	// elements it matched. MatchCount 0 with no challenge flag means the
	// page may legitimately be empty.
	Selector   string `json:"selector,omitempty"`
	MatchCount int    `json:"match_count"`

	// ChallengeUnresolved is set when the challenge handler gave up and
	// extraction ran against a page that still looks like an interstitial.
	ChallengeUnresolved bool `json:"challenge_unresolved,omitempty"`

	// Preflight probe diagnostics (HTTP-level, independent of the browser).
	ProbeStatus  int  `json:"probe_status,omitempty"`
	ProbeBotWall bool `json:"probe_bot_wall,omitempty"`
}

// ScrapeResult is the full outcome of one scrape, as persisted to the store.
// Entries are sorted ascending by rank.
type ScrapeResult struct {
	Entries      []LeaderboardEntry `json:"entries"`
	TotalEntries int                `json:"total_entries"`
	ScrapedAt    time.Time          `json:"scraped_at"`
	SourceURL    string             `json:"source_url"`
	Metadata     ScrapeMetadata     `json:"metadata"`
}

// HistoryRecord is the summary projection of a persisted ScrapeResult used
// by history queries; it never carries the entries payload.
type HistoryRecord struct {
	ID           int64          `json:"id"`
	ScrapedAt    time.Time      `json:"scraped_at"`
	SourceURL    string         `json:"source_url"`
	TotalEntries int            `json:"total_entries"`
	Metadata     ScrapeMetadata `json:"metadata"`
}

// SchedulerStatus reports the periodic trigger state.
type SchedulerStatus struct {
	Running         bool       `json:"running"`
	IntervalMinutes int        `json:"interval_minutes"`
	NextRun         *time.Time `json:"next_run,omitempty"`
}
