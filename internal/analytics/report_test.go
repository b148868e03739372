package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademind/internal/models"
)

func TestBuild(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	recent := at(tradeWithPnL("recent", 40), time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC))
	recent.Strategies = []string{"Breakout"}
	recent.Mistakes = []string{"Late Entry"}
	loser := at(tradeWithPnL("loser", -25), time.Date(2024, 3, 7, 11, 0, 0, 0, time.UTC))
	loser.Mistakes = []string{"Chasing"}
	loser.Emotions = []string{"FOMO"}
	stale := at(tradeWithPnL("stale", 500), time.Date(2023, 11, 1, 10, 0, 0, 0, time.UTC))
	open := tradeWithPnL("open", 0)
	open.Status = models.StatusOpen
	open.Type = models.TradeTypeOption

	trades := []models.Trade{recent, loser, stale, open}

	r := Build(trades, Options{Window: WindowMonth, Now: now, Location: time.UTC})

	assert.Equal(t, WindowMonth, r.Window)
	assert.Equal(t, 4, r.TradeCount)
	assert.Equal(t, 2, r.Summary.ClosedCount, "stale trade is outside the window")
	assert.InDelta(t, 15, r.Summary.TotalNetPnL, 1e-9)
	assert.Len(t, r.AssetDistribution, 2)
	assert.Len(t, r.Calendar, 2)
	require.Len(t, r.Strategies, 1)
	assert.Equal(t, "Breakout", r.Strategies[0].Key)
	assert.Equal(t, "Chasing", r.Mistakes[0].Key)
	assert.InDelta(t, -25, r.TotalMistakeLoss, 1e-9)

	best, worst, ok := r.BestWorstHour()
	require.True(t, ok)
	assert.Equal(t, "10 AM", best.Label)
	assert.Equal(t, "11 AM", worst.Label)

	day, _, ok := r.BestWorstDay()
	require.True(t, ok)
	assert.Equal(t, "Friday", day.Key)

	first, last, ok := r.BestWorstEmotion()
	require.True(t, ok)
	assert.Equal(t, NeutralEmotion, first.Key)
	assert.Equal(t, "FOMO", last.Key)

	freq, ok := r.MostFrequentMistake()
	require.True(t, ok)
	assert.Equal(t, "Chasing", freq.Key)
}

func TestBuild_Defaults(t *testing.T) {
	r := Build(nil, Options{})

	assert.Equal(t, WindowAll, r.Window)
	assert.Zero(t, r.Summary.ClosedCount)
	assert.Len(t, r.Hourly, len(MarketHours))
	assert.Empty(t, r.Symbols)

	_, _, ok := r.BestWorstEmotion()
	assert.False(t, ok)
	_, ok = r.MostFrequentMistake()
	assert.False(t, ok)
}
