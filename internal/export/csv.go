// Package export writes journal data and analytics views as CSV and reads
// trades back from CSV.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"trademind/internal/analytics"
	"trademind/internal/models"
)

// DateLayout is the timestamp layout used in exported files.
const DateLayout = "2006-01-02 15:04:05"

// tagSeparator joins tag lists inside a single CSV cell.
const tagSeparator = "|"

// TradeRow is the CSV shape of a trade.
type TradeRow struct {
	ID         string `csv:"id"`
	Symbol     string `csv:"symbol"`
	Type       string `csv:"type"`
	Side       string `csv:"side"`
	Status     string `csv:"status"`
	EntryDate  string `csv:"entry_date"`
	ExitDate   string `csv:"exit_date"`
	EntryPrice string `csv:"entry_price"`
	ExitPrice  string `csv:"exit_price"`
	Quantity   string `csv:"quantity"`
	Fees       string `csv:"fees"`
	GrossPnL   string `csv:"gross_pnl"`
	NetPnL     string `csv:"net_pnl"`
	OptionType string `csv:"option_type"`
	Strike     string `csv:"strike"`
	Expiration string `csv:"expiration"`
	Emotions   string `csv:"emotions"`
	Mistakes   string `csv:"mistakes"`
	Strategies string `csv:"strategies"`
	Tags       string `csv:"tags"`
	Notes      string `csv:"notes"`
}

// BucketRow is the CSV shape of an aggregation bucket.
type BucketRow struct {
	Key     string `csv:"key"`
	Label   string `csv:"label"`
	Trades  int    `csv:"trades"`
	Wins    int    `csv:"wins"`
	Losses  int    `csv:"losses"`
	WinRate string `csv:"win_rate"`
	PnL     string `csv:"pnl"`
	AvgPnL  string `csv:"avg_pnl"`
}

// MetricRow is one line of a summary export.
type MetricRow struct {
	Metric string `csv:"metric"`
	Value  string `csv:"value"`
}

// Money renders v rounded half away from zero to two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Percent renders a percentage with one decimal.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}

// plain renders prices and quantities without trailing zeros.
func plain(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DateLayout)
}

// NewTradeRow converts a trade for export. Times are written in loc.
func NewTradeRow(t models.Trade, loc *time.Location) TradeRow {
	if loc == nil {
		loc = time.Local
	}
	row := TradeRow{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Type:       string(t.Type),
		Side:       string(t.Side),
		Status:     string(t.Status),
		EntryDate:  formatTime(&t.EntryDate, loc),
		ExitDate:   formatTime(t.ExitDate, loc),
		EntryPrice: plain(t.EntryPrice),
		Quantity:   plain(t.Quantity),
		Fees:       Money(t.Fees),
		GrossPnL:   Money(analytics.GrossPnL(t)),
		NetPnL:     Money(analytics.NetPnL(t)),
		Emotions:   strings.Join(t.Emotions, tagSeparator),
		Mistakes:   strings.Join(t.Mistakes, tagSeparator),
		Strategies: strings.Join(t.Strategies, tagSeparator),
		Tags:       strings.Join(t.Tags, tagSeparator),
		Notes:      t.Notes,
	}
	if t.ExitPrice != nil {
		row.ExitPrice = plain(*t.ExitPrice)
	}
	if od := t.OptionDetails; od != nil {
		row.OptionType = string(od.OptionType)
		row.Strike = plain(od.Strike)
		row.Expiration = od.Expiration
	}
	return row
}

// NewBucketRow converts a bucket for export.
func NewBucketRow(b analytics.Bucket) BucketRow {
	return BucketRow{
		Key:     b.Key,
		Label:   b.Label,
		Trades:  b.Count,
		Wins:    b.Wins,
		Losses:  b.Losses,
		WinRate: Percent(b.WinRate()),
		PnL:     Money(b.PnL),
		AvgPnL:  Money(b.AvgPnL()),
	}
}

// WriteTrades writes trades as CSV with a header row.
func WriteTrades(w io.Writer, trades []models.Trade, loc *time.Location) error {
	rows := make([]*TradeRow, 0, len(trades))
	for _, t := range trades {
		row := NewTradeRow(t, loc)
		rows = append(rows, &row)
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write trades: %w", err)
	}
	return nil
}

// WriteBuckets writes an aggregation view as CSV.
func WriteBuckets(w io.Writer, buckets []analytics.Bucket) error {
	rows := make([]*BucketRow, 0, len(buckets))
	for _, b := range buckets {
		row := NewBucketRow(b)
		rows = append(rows, &row)
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write buckets: %w", err)
	}
	return nil
}

// SummaryRows flattens a summary into metric/value pairs.
func SummaryRows(s analytics.Summary) []*MetricRow {
	return []*MetricRow{
		{"closed_trades", fmt.Sprint(s.ClosedCount)},
		{"wins", fmt.Sprint(s.WinCount)},
		{"losses", fmt.Sprint(s.LossCount)},
		{"win_rate", Percent(s.WinRate)},
		{"net_pnl", Money(s.TotalNetPnL)},
		{"gross_pnl", Money(s.TotalGrossPnL)},
		{"fees", Money(s.TotalFees)},
		{"total_win_amount", Money(s.TotalWinAmount)},
		{"total_loss_amount", Money(s.TotalLossAmount)},
		{"avg_win", Money(s.AvgWin)},
		{"avg_loss", Money(s.AvgLoss)},
		{"risk_reward", Money(s.RiskReward)},
		{"profit_factor", Money(s.ProfitFactor)},
		{"best_trade", Money(s.BestTradePnL)},
		{"worst_trade", Money(s.WorstTradePnL)},
		{"option_trades", fmt.Sprint(s.Options.ClosedCount)},
		{"option_net_pnl", Money(s.Options.TotalNetPnL)},
		{"option_win_rate", Percent(s.Options.WinRate)},
		{"option_pnl_ratio", Percent(s.OptionPnLRatio)},
	}
}

// WriteSummary writes the headline statistics as metric/value rows.
func WriteSummary(w io.Writer, s analytics.Summary) error {
	rows := SummaryRows(s)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
