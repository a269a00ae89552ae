package extract

import "github.com/andybalholm/cascadia"

// catalogue is the fixed, ordered list of candidate selector patterns.
// Order matters twice: patterns are scored in this order, and ties in match
// count are broken in favor of the earlier entry. Specific leaderboard
// markers come first, generic structural fallbacks last.
var catalogue = []string{
	// Leaderboard-specific markers.
	`[data-testid*="leaderboard"]`,
	`[data-testid*="ranking"]`,
	".leaderboard-item",
	".ranking-item",
	".leaderboard-entry",
	".user-rank",
	".rank-item",
	".player-rank",
	".score-item",
	".user-entry",

	// Table-based leaderboards.
	`table[class*="leaderboard"] tbody tr`,
	`table[class*="ranking"] tbody tr`,
	`table[class*="score"] tbody tr`,
	"tbody tr",
	"table tr:not(:first-child)",

	// List-based leaderboards.
	`ul[class*="leaderboard"] li`,
	`ol[class*="ranking"] li`,
	`ul[class*="users"] li`,
	`ol[class*="players"] li`,

	// Generic patterns.
	`div[class*="rank"]`,
	`div[class*="leaderboard"]`,
	`div[class*="user"]`,
	`div[class*="score"]`,
	`div[class*="player"]`,
	".ranking-list > div",
	".leaderboard-list > div",
}

// validateCatalogue compiles every pattern with cascadia so a typo in the
// catalogue fails at construction instead of silently matching nothing
// in-page.
func validateCatalogue(patterns []string) error {
	for _, p := range patterns {
		if _, err := cascadia.Parse(p); err != nil {
			return err
		}
	}
	return nil
}
