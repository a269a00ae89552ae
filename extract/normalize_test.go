package extract

import (
	"testing"
)

func TestNormalizeRank(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		position int
		want     int
	}{
		{"plain number", "7", 1, 7},
		{"hash prefix", "#7", 1, 7},
		{"ordinal suffix", "3rd", 1, 3},
		{"embedded text", "Rank 12", 1, 12},
		{"split digit runs", "1a2", 1, 12},
		{"no digits falls back to position", "gold", 4, 4},
		{"empty falls back to position", "", 9, 9},
		{"whitespace only", "   ", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeRank(tt.raw, tt.position); got != tt.want {
				t.Errorf("normalizeRank(%q, %d) = %d, want %d", tt.raw, tt.position, got, tt.want)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "alice", "alice"},
		{"allowed punctuation kept", "a_b.c-d", "a_b.c-d"},
		{"emoji stripped", "bob🔥", "bob"},
		{"at sign stripped", "@carol", "carol"},
		{"surrounding whitespace trimmed", "  dave  ", "dave"},
		{"interior space kept", "eve online", "eve online"},
		{"all symbols yields empty", "✨💎✨", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeUsername(tt.raw); got != tt.want {
				t.Errorf("normalizeUsername(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain integer", "42", 42},
		{"thousand separators", "1,234", 1234},
		{"decimal", "98.6", 98.6},
		{"separator and decimal", "1,234.56", 1234.56},
		{"trailing unit", "1,234 pts", 1234},
		{"leading text", "score: 17", 17},
		{"first token wins", "10 of 20", 10},
		{"no numeric token", "n/a", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeScore(tt.raw); got != tt.want {
				t.Errorf("normalizeScore(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAssembleEntries(t *testing.T) {
	rows := []rawRow{
		{Rank: "#2", Username: "bob", Score: "500 pts", Strategy: 2},
		{Rank: "#1", Username: "@alice", Score: "900", Strategy: 2},
		{Rank: "", Username: "carol", Score: "10", Strategy: 3},
		{Rank: "#4", Username: "💎💎", Score: "5", Strategy: 1},
	}

	entries := assembleEntries(rows, ".leaderboard-item")

	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (symbol-only username dropped)", len(entries))
	}

	// Sorted ascending by rank; the rankless row took its iteration position.
	wantRanks := []int{1, 2, 3}
	wantNames := []string{"alice", "bob", "carol"}
	wantScores := []float64{900, 500, 10}
	for i, e := range entries {
		if e.Rank != wantRanks[i] || e.Username != wantNames[i] || e.Score != wantScores[i] {
			t.Errorf("entry %d = {%d %q %v}, want {%d %q %v}",
				i, e.Rank, e.Username, e.Score, wantRanks[i], wantNames[i], wantScores[i])
		}
	}

	if entries[0].Provenance == nil {
		t.Fatal("expected provenance on assembled entries")
	}
	if entries[0].Provenance.RawUsername != "@alice" {
		t.Errorf("provenance raw username = %q, want %q", entries[0].Provenance.RawUsername, "@alice")
	}
	if entries[0].Provenance.Selector != ".leaderboard-item" {
		t.Errorf("provenance selector = %q", entries[0].Provenance.Selector)
	}
}

func TestAssembleEntriesKeepsDuplicates(t *testing.T) {
	rows := []rawRow{
		{Rank: "1", Username: "alice", Score: "100"},
		{Rank: "1", Username: "alice", Score: "100"},
	}
	entries := assembleEntries(rows, "tbody tr")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want duplicates preserved", len(entries))
	}
}

func TestAssembleEntriesEmpty(t *testing.T) {
	if entries := assembleEntries(nil, "tbody tr"); len(entries) != 0 {
		t.Fatalf("got %d entries from no rows", len(entries))
	}
}
