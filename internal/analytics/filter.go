package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"trademind/internal/models"
)

// Window is a look-back period applied to exit dates.
type Window string

const (
	WindowWeek    Window = "WEEK"
	WindowMonth   Window = "MONTH"
	Window3Months Window = "3MONTHS"
	Window6Months Window = "6MONTHS"
	WindowYear    Window = "1YEAR"
	WindowAll     Window = "ALL"
)

var windowDays = map[Window]int{
	WindowWeek:    7,
	WindowMonth:   30,
	Window3Months: 90,
	Window6Months: 180,
	WindowYear:    365,
	WindowAll:     0,
}

// Windows lists the supported windows from shortest to longest.
var Windows = []Window{WindowWeek, WindowMonth, Window3Months, Window6Months, WindowYear, WindowAll}

// Days returns the number of days covered by the window, 0 for ALL.
func (w Window) Days() int {
	return windowDays[w]
}

// ParseWindow accepts a window name (WEEK, month, ...) or a day count
// matching one of the supported windows (7, 30, 90, 180, 365).
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return WindowAll, nil
	}
	if _, ok := windowDays[Window(s)]; ok {
		return Window(s), nil
	}
	if n, err := strconv.Atoi(strings.TrimSuffix(s, "D")); err == nil {
		for w, d := range windowDays {
			if d == n && w != WindowAll {
				return w, nil
			}
		}
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// ClosedTrades returns the trades with status CLOSED, preserving order.
func ClosedTrades(trades []models.Trade) []models.Trade {
	closed := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Status == models.StatusClosed {
			closed = append(closed, t)
		}
	}
	return closed
}

// FilterByWindow keeps trades whose exit date falls within the window ending
// at now. Trades without an exit date are excluded from any bounded window.
func FilterByWindow(closed []models.Trade, w Window, now time.Time) []models.Trade {
	days := w.Days()
	if days == 0 {
		return closed
	}
	cutoff := now.AddDate(0, 0, -days)
	kept := make([]models.Trade, 0, len(closed))
	for _, t := range closed {
		if t.ExitDate == nil {
			continue
		}
		if !t.ExitDate.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// OptionTrades returns the option trades of a set.
func OptionTrades(trades []models.Trade) []models.Trade {
	opts := make([]models.Trade, 0)
	for _, t := range trades {
		if t.Type == models.TradeTypeOption {
			opts = append(opts, t)
		}
	}
	return opts
}
