package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademind/internal/models"
)

func TestComputeStats_MixedScenario(t *testing.T) {
	closed := []models.Trade{
		closedTrade("win", models.SideLong, 100, 110, 10, 5),
		closedTrade("loss", models.SideLong, 50, 40, 5, 2),
		closedTrade("flat", models.SideLong, 200, 200, 1, 0),
	}

	s := ComputeStats(closed)

	assert.Equal(t, 3, s.ClosedCount)
	assert.Equal(t, 1, s.WinCount)
	assert.Equal(t, 1, s.LossCount, "breakeven counts as neither")
	assert.InDelta(t, 100.0/3.0, s.WinRate, 1e-9)
	assert.InDelta(t, 100, s.AvgWin, 1e-9)
	assert.InDelta(t, 50, s.AvgLoss, 1e-9)
	assert.InDelta(t, 2.0, s.RiskReward, 1e-9)
	assert.InDelta(t, 2.0, s.ProfitFactor, 1e-9)
	assert.InDelta(t, 50, s.TotalGrossPnL, 1e-9)
	assert.InDelta(t, 7, s.TotalFees, 1e-9)
	assert.InDelta(t, 43, s.TotalNetPnL, 1e-9)
	assert.Equal(t, "win", s.BestTradeID)
	assert.InDelta(t, 95, s.BestTradePnL, 1e-9)
	assert.Equal(t, "loss", s.WorstTradeID)
	assert.InDelta(t, -52, s.WorstTradePnL, 1e-9)
}

func TestComputeStats_AllLosses(t *testing.T) {
	s := ComputeStats([]models.Trade{tradeWithPnL("a", -10), tradeWithPnL("b", -30)})

	assert.Zero(t, s.ProfitFactor)
	assert.Zero(t, s.RiskReward)
	assert.Zero(t, s.WinRate)
	assert.InDelta(t, 20, s.AvgLoss, 1e-9)
}

func TestComputeStats_AllWinsUsesInfiniteEdge(t *testing.T) {
	s := ComputeStats([]models.Trade{tradeWithPnL("a", 10), tradeWithPnL("b", 5)})

	assert.Equal(t, InfiniteEdge, s.ProfitFactor)
	assert.Equal(t, InfiniteEdge, s.RiskReward)
	assert.Equal(t, 100.0, s.WinRate)
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	assert.Equal(t, Stats{}, s)
}

func TestComputeStats_BestWorstTies(t *testing.T) {
	s := ComputeStats([]models.Trade{
		tradeWithPnL("a", 5),
		tradeWithPnL("b", 5),
		tradeWithPnL("c", -1),
		tradeWithPnL("d", -1),
	})
	assert.Equal(t, "a", s.BestTradeID)
	assert.Equal(t, "d", s.WorstTradeID)
}

func TestEquityCurve(t *testing.T) {
	late := tradeWithPnL("late", 10)
	late.ExitDate = models.Time(baseTime.Add(48 * time.Hour))
	early := tradeWithPnL("early", -4)
	early.ExitDate = models.Time(baseTime)
	undated := tradeWithPnL("undated", 1)
	undated.ExitDate = nil

	curve := EquityCurve([]models.Trade{undated, late, early})

	require.Len(t, curve, 3)
	assert.Equal(t, "early", curve[0].TradeID)
	assert.InDelta(t, -4, curve[0].Cumulative, 1e-9)
	assert.Equal(t, "late", curve[1].TradeID)
	assert.InDelta(t, 6, curve[1].Cumulative, 1e-9)
	assert.Equal(t, "undated", curve[2].TradeID)
	assert.InDelta(t, 7, curve[2].Cumulative, 1e-9)
}

func TestSummarize_OptionRatio(t *testing.T) {
	stock := tradeWithPnL("s", 300)
	opt := tradeWithPnL("o", -100)
	opt.Type = models.TradeTypeOption
	require.InDelta(t, -100, GrossPnL(opt), 1e-9)

	sum := Summarize([]models.Trade{stock, opt})

	assert.Equal(t, 1, sum.Options.ClosedCount)
	assert.Zero(t, sum.Options.WinRate)
	assert.InDelta(t, -50, sum.OptionPnLRatio, 1e-9)
	assert.Len(t, sum.EquityCurve, 2)

	flat := Summarize([]models.Trade{tradeWithPnL("a", 10), tradeWithPnL("b", -10)})
	assert.Zero(t, flat.OptionPnLRatio)
}

func TestProperty_StatsAreBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("win rate within [0, 100] and ratios finite", prop.ForAll(
		func(closed []models.Trade) bool {
			s := ComputeStats(closed)
			if s.WinRate < 0 || s.WinRate > 100 {
				t.Logf("win rate out of range: %f", s.WinRate)
				return false
			}
			for _, v := range []float64{s.WinRate, s.RiskReward, s.ProfitFactor, s.AvgWin, s.AvgLoss} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Logf("non-finite stat in %+v", s)
					return false
				}
			}
			if len(closed) == 0 && s.WinRate != 0 {
				return false
			}
			return s.WinCount+s.LossCount <= s.ClosedCount
		},
		genClosedTrades(),
	))

	properties.Property("summary is idempotent", prop.ForAll(
		func(closed []models.Trade) bool {
			a := Summarize(closed)
			b := Summarize(closed)
			return assert.ObjectsAreEqual(a, b)
		},
		genClosedTrades(),
	))

	properties.Property("equity curve ends at total net", prop.ForAll(
		func(closed []models.Trade) bool {
			curve := EquityCurve(closed)
			if len(curve) != len(closed) {
				return false
			}
			if len(curve) == 0 {
				return true
			}
			total := ComputeStats(closed).TotalNetPnL
			return math.Abs(curve[len(curve)-1].Cumulative-total) < 1e-6
		},
		genClosedTrades(),
	))

	properties.TestingRun(t)
}
