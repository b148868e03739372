package analytics

import (
	"fmt"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"trademind/internal/models"
)

var baseTime = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

// closedTrade builds a closed trade entered and exited at baseTime.
func closedTrade(id string, side models.TradeSide, entry, exit, qty, fees float64) models.Trade {
	return models.Trade{
		ID:         id,
		Symbol:     "NIFTY 50",
		Type:       models.TradeTypeStock,
		Side:       side,
		EntryPrice: entry,
		ExitPrice:  models.Float(exit),
		Quantity:   qty,
		EntryDate:  baseTime,
		ExitDate:   models.Time(baseTime),
		Fees:       fees,
		Status:     models.StatusClosed,
	}
}

// tradeWithPnL builds a closed LONG trade whose gross P&L equals pnl.
// The entry is well above any |pnl| used in tests so the exit stays positive.
func tradeWithPnL(id string, pnl float64) models.Trade {
	return closedTrade(id, models.SideLong, 1000, 1000+pnl, 1, 0)
}

func genSide() gopter.Gen {
	return gen.OneConstOf(models.SideLong, models.SideShort)
}

// genClosedTrade generates closed trades with entries spread over a year.
func genClosedTrade() gopter.Gen {
	return gopter.CombineGens(
		genSide(),
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 100),
		gen.Float64Range(0, 50),
		gen.IntRange(0, 365*24),
		gen.IntRange(0, 72),
		gen.OneConstOf(models.TradeTypeStock, models.TradeTypeOption),
	).Map(func(v []interface{}) models.Trade {
		entry := baseTime.Add(time.Duration(v[5].(int)) * time.Hour)
		exit := entry.Add(time.Duration(v[6].(int)) * time.Hour)
		return models.Trade{
			ID:         fmt.Sprintf("t-%d", v[5].(int)),
			Symbol:     "BANKNIFTY",
			Type:       v[7].(models.TradeType),
			Side:       v[0].(models.TradeSide),
			EntryPrice: v[1].(float64),
			ExitPrice:  models.Float(v[2].(float64)),
			Quantity:   v[3].(float64),
			EntryDate:  entry,
			ExitDate:   models.Time(exit),
			Fees:       v[4].(float64),
			Status:     models.StatusClosed,
		}
	})
}

func genClosedTrades() gopter.Gen {
	return gen.SliceOf(genClosedTrade())
}
