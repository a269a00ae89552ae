package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/podium/models"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(scrapedAt time.Time, entries ...models.LeaderboardEntry) *models.ScrapeResult {
	return &models.ScrapeResult{
		Entries:      entries,
		TotalEntries: len(entries),
		ScrapedAt:    scrapedAt,
		SourceURL:    "https://yaps.kaito.ai/yapper-leaderboards",
		Metadata: models.ScrapeMetadata{
			Selector:   "tbody tr",
			MatchCount: len(entries),
		},
	}
}

func TestLatestEmptyStore(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestAppendAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	result := sampleResult(now,
		models.LeaderboardEntry{Rank: 1, Username: "alice", Score: 900},
		models.LeaderboardEntry{Rank: 2, Username: "bob", Score: 500},
	)
	require.NoError(t, s.Append(ctx, result))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.SourceURL, got.SourceURL)
	assert.Equal(t, 2, got.TotalEntries)
	assert.Equal(t, result.Entries, got.Entries)
	assert.Equal(t, result.Metadata, got.Metadata)
	assert.True(t, got.ScrapedAt.Equal(now))
}

func TestLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Append(ctx, sampleResult(base.Add(-time.Hour),
		models.LeaderboardEntry{Rank: 1, Username: "old", Score: 1})))
	require.NoError(t, s.Append(ctx, sampleResult(base,
		models.LeaderboardEntry{Rank: 1, Username: "new", Score: 2})))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "new", got.Entries[0].Username)
}

func TestHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		r := sampleResult(base.Add(time.Duration(i)*time.Minute),
			models.LeaderboardEntry{Rank: 1, Username: "alice", Score: float64(i)})
		require.NoError(t, s.Append(ctx, r))
	}

	records, err := s.History(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.True(t, records[0].ScrapedAt.After(records[1].ScrapedAt))
	assert.True(t, records[1].ScrapedAt.After(records[2].ScrapedAt))

	// Summaries only, but metadata survives.
	assert.Equal(t, 1, records[0].TotalEntries)
	assert.Equal(t, "tbody tr", records[0].Metadata.Selector)
}

func TestHistoryDefaultLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 12; i++ {
		require.NoError(t, s.Append(ctx, sampleResult(base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := s.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 10)
}

func TestHistoryEmptyStore(t *testing.T) {
	s := openTestStore(t)

	records, err := s.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}
