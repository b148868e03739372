package analytics

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"trademind/internal/models"
)

// MarketHours is the fixed hour-of-day domain of the hourly view.
var MarketHours = []int{9, 10, 11, 12, 13, 14, 15}

// TradingDays is the fixed weekday domain of the daily view.
var TradingDays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// HourLabel formats an hour of day as "9 AM", "12 PM", "3 PM".
func HourLabel(h int) string {
	switch {
	case h == 12:
		return "12 PM"
	case h > 12:
		return fmt.Sprintf("%d PM", h-12)
	default:
		return fmt.Sprintf("%d AM", h)
	}
}

// Hourly groups closed trades by the hour of their entry in loc. Only the
// market hours 9 to 15 are reported; trades entered outside them are dropped.
func Hourly(closed []models.Trade, loc *time.Location) []Bucket {
	loc = locationOrLocal(loc)
	acc := newAccumulator()
	for _, h := range MarketHours {
		acc.seed(strconv.Itoa(h), HourLabel(h))
	}
	for _, t := range closed {
		acc.addIfSeeded(strconv.Itoa(t.EntryDate.In(loc).Hour()), GrossPnL(t))
	}
	return acc.list()
}

// Daily groups closed trades by the weekday of their entry in loc.
// Weekend entries are dropped.
func Daily(closed []models.Trade, loc *time.Location) []Bucket {
	loc = locationOrLocal(loc)
	acc := newAccumulator()
	for _, d := range TradingDays {
		acc.seed(d.String(), d.String())
	}
	for _, t := range closed {
		acc.addIfSeeded(t.EntryDate.In(loc).Weekday().String(), GrossPnL(t))
	}
	return acc.list()
}

// WeekKey returns the "{year}-W{NN}" key of an exit time.
//
// The week number is ceil((daysSinceJan1 + weekday(Jan1) + 1) / 7) where
// daysSinceJan1 is fractional. It is not ISO-8601; "recent weeks" ordering
// depends on this exact form.
func WeekKey(exit time.Time, loc *time.Location) string {
	exit = exit.In(locationOrLocal(loc))
	jan1 := time.Date(exit.Year(), time.January, 1, 0, 0, 0, 0, exit.Location())
	pastDays := float64(exit.Sub(jan1).Milliseconds()) / 86400000
	week := int(math.Ceil((pastDays + float64(jan1.Weekday()) + 1) / 7))
	return fmt.Sprintf("%d-W%02d", exit.Year(), week)
}

// Weekly groups closed trades by the week of their exit date.
// Trades without an exit date are skipped.
func Weekly(closed []models.Trade, loc *time.Location) []Bucket {
	acc := newAccumulator()
	for _, t := range closed {
		if t.ExitDate == nil {
			continue
		}
		key := WeekKey(*t.ExitDate, loc)
		acc.add(key, key, GrossPnL(t))
	}
	return acc.list()
}

// CalendarDate returns the UTC calendar date of t as YYYY-MM-DD.
func CalendarDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Calendar groups closed trades by the UTC calendar date of their exit.
func Calendar(closed []models.Trade) map[string]Bucket {
	acc := newAccumulator()
	for _, t := range closed {
		if t.ExitDate == nil {
			continue
		}
		key := CalendarDate(*t.ExitDate)
		acc.add(key, key, GrossPnL(t))
	}
	return acc.byKey()
}

// CalendarDates returns the dates present in a calendar, oldest first.
func CalendarDates(cal map[string]Bucket) []string {
	dates := maps.Keys(cal)
	slices.Sort(dates)
	return dates
}

// BySymbol groups closed trades by symbol.
func BySymbol(closed []models.Trade) []Bucket {
	acc := newAccumulator()
	for _, t := range closed {
		acc.add(t.Symbol, t.Symbol, GrossPnL(t))
	}
	return acc.list()
}

// ByTag groups closed trades by each tag of a category. A trade with several
// tags contributes its full P&L to every one of them.
func ByTag(closed []models.Trade, c TagCategory) []Bucket {
	acc := newAccumulator()
	for _, t := range closed {
		pnl := GrossPnL(t)
		for _, tag := range TagsFor(t, c) {
			acc.add(tag, tag, pnl)
		}
	}
	return acc.list()
}

// ByStrategy groups closed trades by strategy. Untagged trades are left out.
func ByStrategy(closed []models.Trade) []Bucket {
	return ByTag(closed, CategoryStrategy)
}

// ByEmotion groups closed trades by emotion, with untagged trades under
// NeutralEmotion.
func ByEmotion(closed []models.Trade) []Bucket {
	return ByTag(closed, CategoryEmotion)
}

// ByMistake groups closed trades by mistake, with untagged trades under
// DisciplinedMistake.
func ByMistake(closed []models.Trade) []Bucket {
	return ByTag(closed, CategoryMistake)
}

// FilterByTags returns the closed trades carrying any of the selected tags
// (sentinel included), newest entry first. No selection yields no trades.
func FilterByTags(closed []models.Trade, c TagCategory, selected []string) []models.Trade {
	if len(selected) == 0 {
		return nil
	}
	var out []models.Trade
	for _, t := range closed {
		tags := TagsFor(t, c)
		for _, s := range selected {
			if slices.Contains(tags, s) {
				out = append(out, t)
				break
			}
		}
	}
	slices.SortStableFunc(out, func(a, b models.Trade) int {
		return b.EntryDate.Compare(a.EntryDate)
	})
	return out
}

// TypeCount is the number of trades of one instrument type.
type TypeCount struct {
	Type  models.TradeType `json:"type"`
	Count int              `json:"count"`
}

// AssetDistribution counts all trades, open ones included, by instrument type.
func AssetDistribution(trades []models.Trade) []TypeCount {
	var out []TypeCount
	index := make(map[models.TradeType]int)
	for _, t := range trades {
		i, ok := index[t.Type]
		if !ok {
			i = len(out)
			index[t.Type] = i
			out = append(out, TypeCount{Type: t.Type})
		}
		out[i].Count++
	}
	return out
}
