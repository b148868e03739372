package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trademind/internal/analytics"
	"trademind/internal/journal"
	"trademind/internal/models"
)

// addAnalysisCommands adds the dashboard and performance analysis commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newDashboardCmd(app))
	rootCmd.AddCommand(newAnalysisCmd(app))
	rootCmd.AddCommand(newEmotionsCmd(app))
	rootCmd.AddCommand(newMistakesCmd(app))
}

// bucketView is the JSON shape of a bucket with its derived ratios.
type bucketView struct {
	analytics.Bucket
	WinRate float64 `json:"win_rate"`
	AvgPnL  float64 `json:"avg_pnl"`
}

func bucketViews(buckets []analytics.Bucket) []bucketView {
	views := make([]bucketView, 0, len(buckets))
	for _, b := range buckets {
		views = append(views, bucketView{Bucket: b, WinRate: b.WinRate(), AvgPnL: b.AvgPnL()})
	}
	return views
}

// report builds every analytics view for the window named by the --window
// flag, or the configured default. The trades it was built from are
// returned with it.
func (app *App) report(ctx context.Context, cmd *cobra.Command) (*analytics.Report, []models.Trade, error) {
	window := app.Config.Window()
	if cmd.Flags().Lookup("window") != nil {
		if s, _ := cmd.Flags().GetString("window"); s != "" {
			w, err := analytics.ParseWindow(s)
			if err != nil {
				return nil, nil, err
			}
			window = w
		}
	}

	trades, err := app.Journal.List(ctx, journal.ListOptions{})
	if err != nil {
		return nil, nil, err
	}
	return analytics.Build(trades, app.analyticsOptions(window)), trades, nil
}

func (app *App) analyticsOptions(window analytics.Window) analytics.Options {
	return analytics.Options{
		Window:      window,
		Now:         app.Now(),
		Location:    app.Config.Location(),
		TopSymbols:  app.Config.Journal.TopSymbols,
		RecentWeeks: app.Config.Journal.RecentWeeks,
	}
}

func addWindowFlag(cmd *cobra.Command) {
	names := make([]string, 0, len(analytics.Windows))
	for _, w := range analytics.Windows {
		names = append(names, string(w))
	}
	cmd.Flags().StringP("window", "w", "", "look-back window: "+strings.Join(names, ", ")+" (default journal.default_window)")
}

func newDashboardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the performance dashboard",
		Long: `Show headline statistics for closed trades in the window: net P&L,
win rate, risk-reward, profit factor, the options share of P&L, best and
worst trade, and the equity curve.`,
		Example: `  trademind dashboard
  trademind dashboard --window month
  trademind dashboard -w 90 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			r, _, err := app.report(ctx, cmd)
			if err != nil {
				output.Error("Failed to build dashboard: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"window":             r.Window,
					"generated_at":       r.GeneratedAt,
					"summary":            r.Summary,
					"asset_distribution": r.AssetDistribution,
				})
			}

			renderDashboard(output, r)
			return nil
		},
	}

	addWindowFlag(cmd)
	return cmd
}

func renderDashboard(output *Output, r *analytics.Report) {
	s := r.Summary
	output.Bold("Dashboard (%s)", r.Window)
	output.Println()

	if s.ClosedCount == 0 {
		output.Info("No closed trades in this window.")
		return
	}

	output.Box("Performance", []string{
		fmt.Sprintf("Net P&L:        %s", output.FormatPnL(s.TotalNetPnL)),
		fmt.Sprintf("Gross P&L:      %s", output.FormatPnL(s.TotalGrossPnL)),
		fmt.Sprintf("Fees:           %s", FormatIndianCurrency(s.TotalFees)),
		fmt.Sprintf("Win Rate:       %s (%d W / %d L of %d)", output.FormatWinRate(s.WinRate), s.WinCount, s.LossCount, s.ClosedCount),
		fmt.Sprintf("Avg Win:        %s", FormatIndianCurrency(s.AvgWin)),
		fmt.Sprintf("Avg Loss:       %s", FormatIndianCurrency(s.AvgLoss)),
		fmt.Sprintf("Risk:Reward:    1:%s", FormatRatio(s.RiskReward)),
		fmt.Sprintf("Profit Factor:  %s", FormatRatio(s.ProfitFactor)),
		fmt.Sprintf("Best Trade:     %s", output.FormatPnL(s.BestTradePnL)),
		fmt.Sprintf("Worst Trade:    %s", output.FormatPnL(s.WorstTradePnL)),
	})
	output.Println()

	if s.Options.ClosedCount > 0 {
		output.Bold("Options")
		output.Printf("  Trades:        %d\n", s.Options.ClosedCount)
		output.Printf("  Net P&L:       %s (%s of total)\n", output.FormatPnL(s.Options.TotalNetPnL), FormatPercent(s.OptionPnLRatio))
		output.Printf("  Win Rate:      %s\n", output.FormatWinRate(s.Options.WinRate))
		output.Println()
	}

	if len(r.AssetDistribution) > 0 {
		output.Bold("Asset Distribution")
		for _, tc := range r.AssetDistribution {
			output.Printf("  %-8s %d\n", tc.Type, tc.Count)
		}
		output.Println()
	}

	if len(s.EquityCurve) > 0 {
		last := s.EquityCurve[len(s.EquityCurve)-1]
		peak, trough := last.Cumulative, last.Cumulative
		for _, p := range s.EquityCurve {
			peak = max(peak, p.Cumulative)
			trough = min(trough, p.Cumulative)
		}
		output.Bold("Equity Curve")
		output.Printf("  Points: %d  Peak: %s  Trough: %s  Final: %s\n",
			len(s.EquityCurve), FormatIndianCurrency(peak), FormatIndianCurrency(trough), output.FormatPnL(last.Cumulative))
	}
}

func newAnalysisCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Performance breakdowns",
		Long:  "Break closed-trade performance down by time, strategy and symbol.",
	}

	type view struct {
		use, short string
		title      string
		buckets    func(r *analytics.Report) []analytics.Bucket
		bestWorst  bool
	}
	views := []view{
		{"hours", "Performance by market hour", "Hour", func(r *analytics.Report) []analytics.Bucket { return r.Hourly }, true},
		{"days", "Performance by weekday", "Day", func(r *analytics.Report) []analytics.Bucket { return r.Daily }, true},
		{"weeks", "Performance of recent weeks", "Week", func(r *analytics.Report) []analytics.Bucket { return r.Weekly }, false},
		{"strategies", "Performance by strategy", "Strategy", func(r *analytics.Report) []analytics.Bucket { return r.Strategies }, false},
		{"symbols", "Top symbols by P&L", "Symbol", func(r *analytics.Report) []analytics.Bucket { return r.Symbols }, false},
	}

	for _, v := range views {
		v := v
		sub := &cobra.Command{
			Use:   v.use,
			Short: v.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				output := NewOutput(cmd)
				ctx, cancel := app.context()
				defer cancel()

				r, _, err := app.report(ctx, cmd)
				if err != nil {
					output.Error("Failed to analyze trades: %v", err)
					return err
				}
				buckets := v.buckets(r)

				if output.IsJSON() {
					return output.JSON(bucketViews(buckets))
				}

				output.Bold("%s (%s)", v.short, r.Window)
				output.Println()
				if r.Summary.ClosedCount == 0 {
					output.Info("No closed trades in this window.")
					return nil
				}
				renderBuckets(output, v.title, buckets)

				if v.bestWorst {
					if best, worst, ok := analytics.BestWorst(buckets); ok {
						output.Println()
						output.Printf("  Best:  %s %s\n", best.Label, output.FormatPnL(best.PnL))
						output.Printf("  Worst: %s %s\n", worst.Label, output.FormatPnL(worst.PnL))
					}
				}
				return nil
			},
		}
		addWindowFlag(sub)
		cmd.AddCommand(sub)
	}

	cmd.AddCommand(newCalendarCmd(app))
	return cmd
}

func renderBuckets(output *Output, title string, buckets []analytics.Bucket) {
	table := NewTable(output, title, "Trades", "W/L", "Win Rate", "P&L", "Avg")
	for _, b := range buckets {
		table.AddRow(
			b.Label,
			fmt.Sprintf("%d", b.Count),
			fmt.Sprintf("%d/%d", b.Wins, b.Losses),
			FormatPercent(b.WinRate()),
			output.FormatPnL(b.PnL),
			FormatIndianCurrency(b.AvgPnL()),
		)
	}
	table.Render()
}

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Daily P&L calendar for a month",
		Example: `  trademind analysis calendar
  trademind analysis calendar --month 2024-03`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			month := app.Now().UTC()
			if s, _ := cmd.Flags().GetString("month"); s != "" {
				m, err := time.Parse("2006-01", s)
				if err != nil {
					err = fmt.Errorf("invalid month: %s (use YYYY-MM)", s)
					output.Error("%v", err)
					return err
				}
				month = m
			}

			r, _, err := app.report(ctx, cmd)
			if err != nil {
				output.Error("Failed to analyze trades: %v", err)
				return err
			}
			cells := analytics.MonthGrid(month.Year(), month.Month(), r.Calendar)
			total := analytics.MonthTotal(cells)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"month": month.Format("2006-01"),
					"cells": cells,
					"total": bucketView{Bucket: total, WinRate: total.WinRate(), AvgPnL: total.AvgPnL()},
				})
			}

			renderCalendar(output, month, cells)
			output.Println()
			output.Printf("  Month: %s over %d trades\n", output.FormatPnL(total.PnL), total.Count)
			return nil
		},
	}

	cmd.Flags().String("month", "", "month to show (YYYY-MM, default current)")
	addWindowFlag(cmd)
	return cmd
}

func renderCalendar(output *Output, month time.Time, cells []analytics.CalendarCell) {
	const cellWidth = 11
	output.Bold("%s", month.Format("January 2006"))

	var header []string
	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		header = append(header, fmt.Sprintf("%-*s", cellWidth, d))
	}
	output.Println(output.DimText(strings.TrimRight(strings.Join(header, " "), " ")))

	for week := 0; week < analytics.GridCells/7; week++ {
		row := cells[week*7 : week*7+7]
		if week > 0 && row[0].Day == 0 {
			break
		}
		var days, pnls []string
		for _, c := range row {
			day, pnl := "", ""
			if c.Day > 0 {
				day = fmt.Sprintf("%d", c.Day)
			}
			if c.Stats != nil {
				pnl = FormatPnL(c.Stats.PnL)
			}
			days = append(days, fmt.Sprintf("%-*s", cellWidth, day))
			pnls = append(pnls, colorPad(output, pnl, c.Stats, cellWidth))
		}
		output.Println(strings.TrimRight(strings.Join(days, " "), " "))
		output.Println(strings.TrimRight(strings.Join(pnls, " "), " "))
	}
}

func colorPad(output *Output, text string, b *analytics.Bucket, width int) string {
	text = TruncateString(text, width)
	padded := text + strings.Repeat(" ", width-displayWidth(text))
	if b == nil {
		return padded
	}
	if b.PnL < 0 {
		return output.Red(padded)
	}
	return output.Green(padded)
}

func newEmotionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emotions",
		Short: "Performance by emotional state",
		Long: `Rank emotions by the P&L of the trades tagged with them. Untagged trades
are grouped as Neutral. --filter lists the trades carrying any of the given
emotions.`,
		Example: `  trademind emotions
  trademind emotions --filter FOMO --filter Greed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			r, trades, err := app.report(ctx, cmd)
			if err != nil {
				output.Error("Failed to analyze trades: %v", err)
				return err
			}
			filter, _ := cmd.Flags().GetStringSlice("filter")

			var filtered []models.Trade
			if len(filter) > 0 {
				closed := analytics.FilterByWindow(analytics.ClosedTrades(trades), r.Window, r.GeneratedAt)
				filtered = analytics.FilterByTags(closed, analytics.CategoryEmotion, filter)
			}

			if output.IsJSON() {
				views := make([]tradeView, 0, len(filtered))
				for i := range filtered {
					views = append(views, newTradeView(&filtered[i]))
				}
				result := map[string]interface{}{"emotions": bucketViews(r.Emotions)}
				if best, worst, ok := r.BestWorstEmotion(); ok {
					result["best"] = best.Key
					result["worst"] = worst.Key
				}
				if len(filter) > 0 {
					result["trades"] = views
				}
				return output.JSON(result)
			}

			output.Bold("Psychology (%s)", r.Window)
			output.Println()
			if len(r.Emotions) == 0 {
				output.Info("No closed trades in this window.")
				return nil
			}
			renderBuckets(output, "Emotion", r.Emotions)
			if best, worst, ok := r.BestWorstEmotion(); ok {
				output.Println()
				output.Printf("  Best state:  %s %s\n", best.Label, output.FormatPnL(best.PnL))
				output.Printf("  Worst state: %s %s\n", worst.Label, output.FormatPnL(worst.PnL))
			}

			if len(filter) > 0 {
				output.Println()
				output.Bold("Trades tagged %s", strings.Join(filter, ", "))
				renderTradeTable(output, app, filtered)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("filter", nil, "list trades with this emotion (repeatable)")
	addWindowFlag(cmd)
	return cmd
}

func renderTradeTable(output *Output, app *App, trades []models.Trade) {
	if len(trades) == 0 {
		output.Dim("  none")
		return
	}
	loc := app.Config.Location()
	table := NewTable(output, "Entry", "Symbol", "Side", "Emotions", "Net P&L")
	for _, t := range trades {
		table.AddRow(
			FormatDateTime(t.EntryDate, loc),
			t.Symbol,
			string(t.Side),
			TruncateString(FormatTags(t.Emotions), 30),
			output.FormatPnL(analytics.NetPnL(t)),
		)
	}
	table.Render()
}

func newMistakesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mistakes",
		Short: "Cost of trading mistakes",
		Long: `Rank mistakes by P&L, costliest first. Trades without a mistake are
grouped as disciplined and left out of the loss total.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			r, _, err := app.report(ctx, cmd)
			if err != nil {
				output.Error("Failed to analyze trades: %v", err)
				return err
			}
			frequent, hasFrequent := r.MostFrequentMistake()

			if output.IsJSON() {
				result := map[string]interface{}{
					"mistakes":           bucketViews(r.Mistakes),
					"total_mistake_loss": r.TotalMistakeLoss,
				}
				if hasFrequent {
					result["most_frequent"] = frequent.Key
				}
				return output.JSON(result)
			}

			output.Bold("Mistakes (%s)", r.Window)
			output.Println()
			if len(r.Mistakes) == 0 {
				output.Info("No closed trades in this window.")
				return nil
			}
			renderBuckets(output, "Mistake", r.Mistakes)
			output.Println()
			output.Printf("  Lost to mistakes: %s\n", output.FormatPnL(r.TotalMistakeLoss))
			if hasFrequent {
				output.Printf("  Most frequent:    %s (%d trades)\n", frequent.Label, frequent.Count)
			} else {
				output.Success("  No mistakes tagged. Disciplined trading!")
			}
			return nil
		},
	}

	addWindowFlag(cmd)
	return cmd
}
