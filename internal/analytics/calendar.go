package analytics

import (
	"time"
)

// GridCells is the size of a month grid: six Sunday-first weeks.
const GridCells = 42

// CalendarCell is one slot of a month grid. Day is 0 for padding cells
// outside the month; Stats is nil on days without closed trades.
type CalendarCell struct {
	Day   int     `json:"day"`
	Date  string  `json:"date,omitempty"`
	Stats *Bucket `json:"stats,omitempty"`
}

// MonthGrid lays a calendar view out as a 42-cell, Sunday-first grid for the
// given month. Dates in cal outside the month are ignored.
func MonthGrid(year int, month time.Month, cal map[string]Bucket) []CalendarCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := int(first.Weekday())

	cells := make([]CalendarCell, GridCells)
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		cell := CalendarCell{Day: d, Date: CalendarDate(date)}
		if b, ok := cal[cell.Date]; ok {
			b := b
			cell.Stats = &b
		}
		cells[offset+d-1] = cell
	}
	return cells
}

// MonthTotal sums the P&L and trade count of a grid.
func MonthTotal(cells []CalendarCell) Bucket {
	var total Bucket
	for _, c := range cells {
		if c.Stats == nil {
			continue
		}
		total.Count += c.Stats.Count
		total.PnL += c.Stats.PnL
		total.Wins += c.Stats.Wins
		total.Losses += c.Stats.Losses
	}
	return total
}
