package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/use-agent/podium/models"
)

var (
	digitsRe    = regexp.MustCompile(`\d+`)
	usernameRe  = regexp.MustCompile(`[^A-Za-z0-9 _.\-]`)
	scoreSomeRe = regexp.MustCompile(`[\d,]+\.?\d*`)
)

// normalizeRank parses the rank as the concatenated digits of the raw text
// ("#7" → 7). When no digits are present, the element's 1-based iteration
// position is used instead.
func normalizeRank(raw string, position int) int {
	digits := digitsRe.FindAllString(raw, -1)
	if len(digits) == 0 {
		return position
	}
	n, err := strconv.Atoi(strings.Join(digits, ""))
	if err != nil {
		return position
	}
	return n
}

// normalizeUsername strips every character outside [A-Za-z0-9 _.-] and
// trims surrounding whitespace.
func normalizeUsername(raw string) string {
	return strings.TrimSpace(usernameRe.ReplaceAllString(raw, ""))
}

// normalizeScore parses the first numeric token (thousand separators and an
// optional decimal point allowed) as a float. "1,234 pts" → 1234. No token
// yields 0.
func normalizeScore(raw string) float64 {
	token := scoreSomeRe.FindString(raw)
	if token == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// assembleEntries normalizes raw rows into leaderboard entries, dropping
// rows with an empty normalized username or a non-finite score, and returns
// them sorted ascending by rank. Duplicate ranks or usernames are kept as
// observed on the source page.
func assembleEntries(rows []rawRow, selector string) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		username := normalizeUsername(row.Username)
		if username == "" {
			continue
		}
		score := normalizeScore(row.Score)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}

		entries = append(entries, models.LeaderboardEntry{
			Rank:     normalizeRank(row.Rank, i+1),
			Username: username,
			Score:    score,
			Provenance: &models.Provenance{
				RawRank:     row.Rank,
				RawUsername: row.Username,
				RawScore:    row.Score,
				Selector:    selector,
				Strategy:    row.Strategy,
			},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Rank < entries[j].Rank
	})
	return entries
}
