package analytics

import (
	"time"

	"trademind/internal/models"
)

// Options controls which slice of the ledger a Report covers and how much of
// each ranked view it keeps.
type Options struct {
	Window      Window
	Now         time.Time
	Location    *time.Location
	TopSymbols  int
	RecentWeeks int
}

// DefaultOptions returns options covering the whole history in local time.
func DefaultOptions() Options {
	return Options{
		Window:      WindowAll,
		Now:         time.Now(),
		Location:    time.Local,
		TopSymbols:  DefaultTopSymbols,
		RecentWeeks: DefaultRecentWeeks,
	}
}

// Report is every analytics view of a ledger snapshot.
type Report struct {
	Window      Window    `json:"window"`
	GeneratedAt time.Time `json:"generated_at"`
	TradeCount  int       `json:"trade_count"`

	Summary           Summary     `json:"summary"`
	AssetDistribution []TypeCount `json:"asset_distribution"`

	Hourly   []Bucket          `json:"hourly"`
	Daily    []Bucket          `json:"daily"`
	Weekly   []Bucket          `json:"weekly"`
	Calendar map[string]Bucket `json:"calendar"`

	Strategies []Bucket `json:"strategies"`
	Symbols    []Bucket `json:"symbols"`
	Emotions   []Bucket `json:"emotions"`
	Mistakes   []Bucket `json:"mistakes"`

	TotalMistakeLoss float64 `json:"total_mistake_loss"`
}

// Build computes a Report from a ledger snapshot. The window applies to every
// closed-trade view; the asset distribution counts every trade supplied.
func Build(trades []models.Trade, opts Options) *Report {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Window == "" {
		opts.Window = WindowAll
	}
	if opts.TopSymbols == 0 {
		opts.TopSymbols = DefaultTopSymbols
	}
	if opts.RecentWeeks == 0 {
		opts.RecentWeeks = DefaultRecentWeeks
	}
	loc := locationOrLocal(opts.Location)

	closed := FilterByWindow(ClosedTrades(trades), opts.Window, opts.Now)
	mistakes := ByMistake(closed)

	return &Report{
		Window:            opts.Window,
		GeneratedAt:       opts.Now,
		TradeCount:        len(trades),
		Summary:           Summarize(closed),
		AssetDistribution: AssetDistribution(trades),
		Hourly:            Hourly(closed, loc),
		Daily:             Daily(closed, loc),
		Weekly:            RecentWeeks(Weekly(closed, loc), opts.RecentWeeks),
		Calendar:          Calendar(closed),
		Strategies:        SortByPnLDesc(ByStrategy(closed)),
		Symbols:           TopSymbols(BySymbol(closed), opts.TopSymbols),
		Emotions:          SortByPnLDesc(ByEmotion(closed)),
		Mistakes:          SortByPnLAsc(mistakes),
		TotalMistakeLoss:  TotalMistakeLoss(mistakes),
	}
}

// BestWorstHour returns the best and worst market hour. Hours without
// trades take part with zero P&L.
func (r *Report) BestWorstHour() (best, worst Bucket, ok bool) {
	return BestWorst(r.Hourly)
}

// BestWorstDay returns the best and worst weekday.
func (r *Report) BestWorstDay() (best, worst Bucket, ok bool) {
	return BestWorst(r.Daily)
}

// BestWorstEmotion returns the first and last emotion of the P&L ranking.
func (r *Report) BestWorstEmotion() (best, worst Bucket, ok bool) {
	return Extremes(r.Emotions)
}

// MostFrequentMistake returns the most frequent tagged mistake. Ties resolve
// in the order of the cost ranking.
func (r *Report) MostFrequentMistake() (Bucket, bool) {
	return MostFrequentMistake(r.Mistakes)
}
