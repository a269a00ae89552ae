package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/podium/models"
)

func TestFinalizeBlockedEmptyFails(t *testing.T) {
	meta := models.ScrapeMetadata{ChallengeUnresolved: true, PageTitle: "Just a moment..."}

	_, err := finalize(nil, meta, "https://example.test/leaderboard", time.Now().UTC())
	require.Error(t, err)
	var se *models.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.ErrCodeExtraction, se.Code)
}

func TestFinalizeClearEmptyIsLegitimate(t *testing.T) {
	meta := models.ScrapeMetadata{MatchCount: 0}

	result, err := finalize(nil, meta, "https://example.test/leaderboard", time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, result.TotalEntries)
}

func TestFinalizeKeepsUnresolvedFlagWithEntries(t *testing.T) {
	// Entries extracted despite the interstitial: serve them, flagged.
	meta := models.ScrapeMetadata{ChallengeUnresolved: true, MatchCount: 2}
	entries := []models.LeaderboardEntry{
		{Rank: 1, Username: "alice", Score: 900},
		{Rank: 2, Username: "bob", Score: 500},
	}
	at := time.Now().UTC()

	result, err := finalize(entries, meta, "https://example.test/leaderboard", at)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalEntries)
	assert.True(t, result.Metadata.ChallengeUnresolved)
	assert.Equal(t, at, result.ScrapedAt)
}

func TestChallengedEmptyScrapeEngagesFallback(t *testing.T) {
	// A scrape that hit the interstitial and extracted nothing must not be
	// persisted; the chain serves the previous persisted result instead.
	_, blockedErr := finalize(nil, models.ScrapeMetadata{ChallengeUnresolved: true},
		"https://example.test/leaderboard", time.Now().UTC())
	require.Error(t, blockedErr)

	stub := &stubScraper{err: blockedErr}
	st := &fakeStore{results: []*models.ScrapeResult{liveResult("persisted")}}
	orch := NewOrchestrator(stub, newFakeCache(), st, time.Minute)

	entries, source, err := orch.GetData(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, SourceStore, source)
	assert.Equal(t, "persisted", entries[0].Username)
	assert.Len(t, st.results, 1, "blocked-empty scrape must not be appended")
}
