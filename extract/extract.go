// Package extract turns a loaded, challenge-resolved page into normalized
// leaderboard entries via scored selector matching. The page's markup
// structure is unknown and may drift; the engine guarantees best-effort
// extraction with diagnosable failure, not success.
package extract

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/use-agent/podium/models"
)

// rawRow is one element's field text as returned by the in-page payload.
type rawRow struct {
	Rank     string
	Username string
	Score    string
	Strategy int
}

// Result is the extraction outcome plus its diagnostics.
type Result struct {
	Entries []models.LeaderboardEntry

	// Selector is the winning catalogue pattern; empty when nothing matched.
	Selector string

	// MatchCount is the winning pattern's element count. Zero is not an
	// error here: distinguishing "empty leaderboard" from "blocked page"
	// is the orchestrator's job via page-state checks.
	MatchCount int
}

// Engine evaluates the selector catalogue against live pages.
type Engine struct {
	catalogue []string
}

// NewEngine validates the selector catalogue and returns an Engine.
func NewEngine() (*Engine, error) {
	if err := validateCatalogue(catalogue); err != nil {
		return nil, fmt.Errorf("extract: invalid selector catalogue: %w", err)
	}
	return &Engine{catalogue: catalogue}, nil
}

// Extract runs the two-phase algorithm: score every catalogue pattern, then
// pull and normalize rows from the highest-scoring one.
func (e *Engine) Extract(page *rod.Page) (*Result, error) {
	counts, err := e.score(page)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			"selector scoring failed", err)
	}

	best, max := pickBest(counts)
	if max == 0 {
		return &Result{MatchCount: 0}, nil
	}
	selector := e.catalogue[best]

	rows, err := e.rows(page, selector)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			"row extraction failed", err)
	}

	return &Result{
		Entries:    assembleEntries(rows, selector),
		Selector:   selector,
		MatchCount: max,
	}, nil
}

// score evaluates the whole catalogue in a single in-page round trip.
func (e *Engine) score(page *rod.Page) ([]int, error) {
	res, err := page.Eval(scoreScript, e.catalogue)
	if err != nil {
		return nil, err
	}

	raw := res.Value.Arr()
	counts := make([]int, len(raw))
	for i, v := range raw {
		counts[i] = v.Int()
	}
	if len(counts) != len(e.catalogue) {
		return nil, fmt.Errorf("score payload returned %d counts for %d patterns",
			len(counts), len(e.catalogue))
	}
	return counts, nil
}

// rows extracts raw field triplets for the winning selector.
func (e *Engine) rows(page *rod.Page, selector string) ([]rawRow, error) {
	res, err := page.Eval(rowsScript, selector)
	if err != nil {
		return nil, err
	}

	raw := res.Value.Arr()
	rows := make([]rawRow, 0, len(raw))
	for _, v := range raw {
		rows = append(rows, rawRow{
			Rank:     v.Get("rank").Str(),
			Username: v.Get("username").Str(),
			Score:    v.Get("score").Str(),
			Strategy: v.Get("strategy").Int(),
		})
	}
	return rows, nil
}

// pickBest returns the index of the highest count; ties go to the earlier
// catalogue entry. An all-zero slice returns max 0.
func pickBest(counts []int) (best, max int) {
	for i, c := range counts {
		if c > max {
			best, max = i, c
		}
	}
	return best, max
}
