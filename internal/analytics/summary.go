package analytics

import (
	"math"
	"sort"
	"time"

	"trademind/internal/models"
)

// InfiniteEdge stands in for an unbounded ratio: a risk-reward ratio or
// profit factor whose denominator is zero while the numerator is positive.
const InfiniteEdge = 99.0

// Stats holds whole-set performance statistics of a closed-trade set.
type Stats struct {
	ClosedCount     int     `json:"closed_count"`
	WinCount        int     `json:"win_count"`
	LossCount       int     `json:"loss_count"`
	WinRate         float64 `json:"win_rate"`
	TotalWinAmount  float64 `json:"total_win_amount"`
	TotalLossAmount float64 `json:"total_loss_amount"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	RiskReward      float64 `json:"risk_reward"`
	ProfitFactor    float64 `json:"profit_factor"`
	TotalGrossPnL   float64 `json:"total_gross_pnl"`
	TotalFees       float64 `json:"total_fees"`
	TotalNetPnL     float64 `json:"total_net_pnl"`
	BestTradePnL    float64 `json:"best_trade_pnl"`
	BestTradeID     string  `json:"best_trade_id,omitempty"`
	WorstTradePnL   float64 `json:"worst_trade_pnl"`
	WorstTradeID    string  `json:"worst_trade_id,omitempty"`
}

// ComputeStats folds a closed-trade set into Stats. Win and loss tallies use
// gross P&L; best and worst trade use net P&L. Every ratio is guarded so the
// result never contains NaN or Inf.
func ComputeStats(closed []models.Trade) Stats {
	var s Stats
	s.ClosedCount = len(closed)

	for i, t := range closed {
		gross := GrossPnL(t)
		s.TotalGrossPnL += gross
		s.TotalFees += t.Fees
		if gross > 0 {
			s.WinCount++
			s.TotalWinAmount += gross
		} else if gross < 0 {
			s.LossCount++
			s.TotalLossAmount += gross
		}

		// Matches a stable descending sort by net P&L: best is the first
		// maximum, worst the last minimum.
		net := NetPnL(t)
		if i == 0 || net > s.BestTradePnL {
			s.BestTradePnL, s.BestTradeID = net, t.ID
		}
		if i == 0 || net <= s.WorstTradePnL {
			s.WorstTradePnL, s.WorstTradeID = net, t.ID
		}
	}
	s.TotalLossAmount = math.Abs(s.TotalLossAmount)
	s.TotalNetPnL = s.TotalGrossPnL - s.TotalFees

	if s.ClosedCount > 0 {
		s.WinRate = float64(s.WinCount) / float64(s.ClosedCount) * 100
	}
	if s.WinCount > 0 {
		s.AvgWin = s.TotalWinAmount / float64(s.WinCount)
	}
	if s.LossCount > 0 {
		s.AvgLoss = s.TotalLossAmount / float64(s.LossCount)
	}

	s.RiskReward = guardedRatio(s.AvgWin, s.AvgLoss, s.WinCount > 0)
	s.ProfitFactor = guardedRatio(s.TotalWinAmount, s.TotalLossAmount, s.TotalWinAmount > 0)
	return s
}

// guardedRatio divides num by den. A zero denominator yields InfiniteEdge
// when edge is true and 0 otherwise.
func guardedRatio(num, den float64, edge bool) float64 {
	if den != 0 {
		return num / den
	}
	if edge {
		return InfiniteEdge
	}
	return 0
}

// EquityPoint is one step of the cumulative net P&L curve.
type EquityPoint struct {
	TradeID    string     `json:"trade_id"`
	Date       *time.Time `json:"date"`
	PnL        float64    `json:"pnl"`
	Cumulative float64    `json:"cumulative"`
}

// EquityCurve orders closed trades by exit date, oldest first, and returns
// the running sum of net P&L. Trades without an exit date sort last.
func EquityCurve(closed []models.Trade) []EquityPoint {
	ordered := make([]models.Trade, len(closed))
	copy(ordered, closed)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].ExitDate, ordered[j].ExitDate
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})

	curve := make([]EquityPoint, 0, len(ordered))
	var running float64
	for _, t := range ordered {
		net := NetPnL(t)
		running += net
		curve = append(curve, EquityPoint{
			TradeID:    t.ID,
			Date:       t.ExitDate,
			PnL:        net,
			Cumulative: running,
		})
	}
	return curve
}

// Summary is the dashboard view of a closed-trade set.
type Summary struct {
	Stats
	Options        Stats         `json:"options"`
	OptionPnLRatio float64       `json:"option_pnl_ratio"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
}

// Summarize computes whole-set statistics, the same statistics restricted to
// option trades, and the equity curve.
func Summarize(closed []models.Trade) Summary {
	sum := Summary{
		Stats:       ComputeStats(closed),
		Options:     ComputeStats(OptionTrades(closed)),
		EquityCurve: EquityCurve(closed),
	}
	var optionNet float64
	for _, t := range OptionTrades(closed) {
		optionNet += NetPnL(t)
	}
	if sum.TotalNetPnL != 0 {
		sum.OptionPnLRatio = optionNet / math.Abs(sum.TotalNetPnL) * 100
	}
	return sum
}
