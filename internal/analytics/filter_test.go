package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademind/internal/models"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in   string
		want Window
	}{
		{"", WindowAll},
		{"all", WindowAll},
		{"week", WindowWeek},
		{"3months", Window3Months},
		{"30", WindowMonth},
		{"90d", Window3Months},
		{"365", WindowYear},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseWindow("fortnight")
	assert.Error(t, err)
	_, err = ParseWindow("14")
	assert.Error(t, err)
}

func TestClosedTrades_PreservesOrder(t *testing.T) {
	a := tradeWithPnL("a", 1)
	b := tradeWithPnL("b", 1)
	b.Status = models.StatusOpen
	c := tradeWithPnL("c", 1)

	got := ClosedTrades([]models.Trade{a, b, c})

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestFilterByWindow(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	exitAt := func(id string, ago time.Duration) models.Trade {
		tr := tradeWithPnL(id, 1)
		tr.ExitDate = models.Time(now.Add(-ago))
		return tr
	}
	undated := tradeWithPnL("undated", 1)
	undated.ExitDate = nil
	closed := []models.Trade{
		exitAt("today", time.Hour),
		exitAt("edge", 7*24*time.Hour),
		exitAt("eight", 8*24*time.Hour),
		exitAt("old", 200*24*time.Hour),
		undated,
	}

	week := FilterByWindow(closed, WindowWeek, now)
	assert.Equal(t, []string{"today", "edge"}, tradeIDs(week))

	year := FilterByWindow(closed, WindowYear, now)
	assert.Equal(t, []string{"today", "edge", "eight", "old"}, tradeIDs(year))

	assert.Len(t, FilterByWindow(closed, WindowAll, now), 5)
}

func TestOptionTrades(t *testing.T) {
	a := tradeWithPnL("a", 1)
	b := tradeWithPnL("b", 1)
	b.Type = models.TradeTypeOption

	assert.Equal(t, []string{"b"}, tradeIDs(OptionTrades([]models.Trade{a, b})))
	assert.Empty(t, OptionTrades(nil))
}

func tradeIDs(trades []models.Trade) []string {
	out := make([]string, len(trades))
	for i, tr := range trades {
		out[i] = tr.ID
	}
	return out
}
