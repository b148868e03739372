// Package analytics derives performance metrics from a trade log.
//
// Every function in this package is pure: it reads the trades it is given,
// never mutates them, and returns freshly allocated results. Callers may
// invoke them from any goroutine as long as the input slice is not modified
// concurrently.
package analytics

import "trademind/internal/models"

// GrossPnL returns the price-driven profit or loss of a trade before fees.
// Open trades and trades without an exit price contribute 0.
func GrossPnL(t models.Trade) float64 {
	if t.Status != models.StatusClosed || !t.HasExit() {
		return 0
	}
	var diff float64
	if t.Side == models.SideLong {
		diff = *t.ExitPrice - t.EntryPrice
	} else {
		diff = t.EntryPrice - *t.ExitPrice
	}
	return diff * t.Quantity
}

// NetPnL returns GrossPnL minus fees. Fees always subtract, so an open trade
// with fees reports -fees.
func NetPnL(t models.Trade) float64 {
	return GrossPnL(t) - t.Fees
}
