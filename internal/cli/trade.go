package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"trademind/internal/analytics"
	"trademind/internal/journal"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

// addTradeCommands adds the trade lifecycle commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and manage trades",
		Long:  "Add, close, edit, list, show and delete journaled trades.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeEditCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

// tradeView is the JSON shape of a trade with its computed P&L.
type tradeView struct {
	*models.Trade
	GrossPnL float64 `json:"gross_pnl"`
	NetPnL   float64 `json:"net_pnl"`
}

func newTradeView(t *models.Trade) tradeView {
	return tradeView{Trade: t, GrossPnL: analytics.GrossPnL(*t), NetPnL: analytics.NetPnL(*t)}
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, s)
	}
	return v, nil
}

// addTagFlags registers the psychology and strategy tag flags.
func addTagFlags(flags *pflag.FlagSet) {
	flags.StringSlice("emotion", nil, "emotion felt during the trade (repeatable), e.g. Calm, FOMO")
	flags.StringSlice("mistake", nil, "mistake made (repeatable), e.g. \"Early Exit\"")
	flags.StringSlice("strategy", nil, "strategy followed (repeatable), e.g. Breakout")
	flags.StringSlice("tag", nil, "free-form tag (repeatable)")
}

func parseSide(s string) (models.TradeSide, error) {
	switch strings.ToUpper(s) {
	case "", "LONG", "BUY":
		return models.SideLong, nil
	case "SHORT", "SELL":
		return models.SideShort, nil
	}
	return "", fmt.Errorf("invalid side: %s (use long or short)", s)
}

func parseType(s string) (models.TradeType, error) {
	switch strings.ToUpper(s) {
	case "", "STOCK":
		return models.TradeTypeStock, nil
	case "OPTION":
		return models.TradeTypeOption, nil
	}
	return "", fmt.Errorf("invalid type: %s (use stock or option)", s)
}

func parseOptionDetails(cmd *cobra.Command) (*models.OptionDetails, error) {
	right, _ := cmd.Flags().GetString("right")
	strike, _ := cmd.Flags().GetFloat64("strike")
	expiry, _ := cmd.Flags().GetString("expiry")
	if right == "" && strike == 0 && expiry == "" {
		return nil, nil
	}
	od := &models.OptionDetails{Strike: strike, Expiration: expiry}
	if right != "" {
		ot, ok := models.ParseOptionType(strings.ToUpper(right))
		if !ok {
			return nil, fmt.Errorf("invalid option right: %s (use call or put)", right)
		}
		od.OptionType = ot
	}
	return od, nil
}

func (app *App) parseTime(cmd *cobra.Command, flag string) (*time.Time, error) {
	s, _ := cmd.Flags().GetString(flag)
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseDateTime(s, app.Config.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return &t, nil
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol> <entry-price> <quantity>",
		Short: "Record a trade",
		Long: `Record a new trade.

The trade is stored as CLOSED when --exit is given and OPEN otherwise.
Symbols are upper-cased; preset symbols are NIFTY 50, BANKNIFTY, SENSEX,
GOLD, BTC and ETH, anything else is accepted as a custom symbol.`,
		Example: `  trademind trade add BANKNIFTY 48210 15 --side long
  trademind trade add "NIFTY 50" 22150 50 --exit 22190 --fees 40 --emotion Calm --strategy Breakout
  trademind trade add NIFTY 120.5 50 --type option --right call --strike 22200 --expiry 2024-03-07`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			entry, err := parseFloatArg("entry price", args[1])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			qty, err := parseFloatArg("quantity", args[2])
			if err != nil {
				output.Error("%v", err)
				return err
			}

			sideFlag, _ := cmd.Flags().GetString("side")
			side, err := parseSide(sideFlag)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			typeFlag, _ := cmd.Flags().GetString("type")
			typ, err := parseType(typeFlag)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			od, err := parseOptionDetails(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			entryDate, err := app.parseTime(cmd, "entry-date")
			if err != nil {
				output.Error("%v", err)
				return err
			}
			exitDate, err := app.parseTime(cmd, "exit-date")
			if err != nil {
				output.Error("%v", err)
				return err
			}

			in := journal.NewTrade{
				Symbol:        args[0],
				Type:          typ,
				Side:          side,
				EntryPrice:    entry,
				Quantity:      qty,
				ExitDate:      exitDate,
				OptionDetails: od,
			}
			if entryDate != nil {
				in.EntryDate = *entryDate
			}
			if cmd.Flags().Changed("exit") {
				exit, _ := cmd.Flags().GetFloat64("exit")
				in.ExitPrice = models.Float(exit)
			}
			in.Fees, _ = cmd.Flags().GetFloat64("fees")
			in.Notes, _ = cmd.Flags().GetString("notes")
			in.Emotions, _ = cmd.Flags().GetStringSlice("emotion")
			in.Mistakes, _ = cmd.Flags().GetStringSlice("mistake")
			in.Strategies, _ = cmd.Flags().GetStringSlice("strategy")
			in.Tags, _ = cmd.Flags().GetStringSlice("tag")

			t, err := app.Journal.Add(ctx, in)
			if err != nil {
				output.Error("Failed to record trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(newTradeView(t))
			}
			output.Success("✓ Trade recorded: %s", t.ID)
			if t.IsClosed() {
				output.Printf("  Net P&L: %s\n", output.FormatPnL(analytics.NetPnL(*t)))
			}
			return nil
		},
	}

	cmd.Flags().String("side", "long", "position side: long or short")
	cmd.Flags().String("type", "stock", "instrument type: stock or option")
	cmd.Flags().Float64("exit", 0, "exit price; closes the trade")
	cmd.Flags().Float64("fees", 0, "brokerage and charges")
	cmd.Flags().String("entry-date", "", "entry time (YYYY-MM-DD HH:MM, default now)")
	cmd.Flags().String("exit-date", "", "exit time (default now when --exit is given)")
	cmd.Flags().String("notes", "", "trade notes")
	cmd.Flags().String("right", "", "option right: call or put")
	cmd.Flags().Float64("strike", 0, "option strike")
	cmd.Flags().String("expiry", "", "option expiry date")
	addTagFlags(cmd.Flags())

	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "close <trade-id> <exit-price>",
		Short:   "Close an open trade",
		Example: `  trademind trade close 3f2a... 48350 --exit-date "2024-03-04 14:10"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			exit, err := parseFloatArg("exit price", args[1])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			exitDate, err := app.parseTime(cmd, "exit-date")
			if err != nil {
				output.Error("%v", err)
				return err
			}

			t, err := app.Journal.Close(ctx, args[0], exit, exitDate)
			if err != nil {
				output.Error("Failed to close trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(newTradeView(t))
			}
			output.Success("✓ Trade closed: %s %s", t.Symbol, t.ID)
			output.Printf("  Net P&L: %s\n", output.FormatPnL(analytics.NetPnL(*t)))
			return nil
		},
	}

	cmd.Flags().String("exit-date", "", "exit time (default now)")
	return cmd
}

func newTradeEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <trade-id>",
		Short: "Edit a trade",
		Long: `Edit fields of a recorded trade. Only the flags given are changed;
tag flags replace the whole list. --reopen moves a closed trade back to OPEN.`,
		Example: `  trademind trade edit 3f2a... --fees 42.5 --mistake "Early Exit"
  trademind trade edit 3f2a... --reopen`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			edit, err := app.tradeEdit(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			t, err := app.Journal.Update(ctx, args[0], edit)
			if err != nil {
				output.Error("Failed to update trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(newTradeView(t))
			}
			output.Success("✓ Trade updated: %s", t.ID)
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "symbol")
	cmd.Flags().String("side", "", "position side: long or short")
	cmd.Flags().String("type", "", "instrument type: stock or option")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("exit", 0, "exit price; closes the trade")
	cmd.Flags().Float64("quantity", 0, "quantity")
	cmd.Flags().Float64("fees", 0, "brokerage and charges")
	cmd.Flags().String("entry-date", "", "entry time")
	cmd.Flags().String("exit-date", "", "exit time")
	cmd.Flags().String("notes", "", "trade notes")
	cmd.Flags().String("right", "", "option right: call or put")
	cmd.Flags().Float64("strike", 0, "option strike")
	cmd.Flags().String("expiry", "", "option expiry date")
	cmd.Flags().Bool("reopen", false, "clear the exit and reopen the trade")
	addTagFlags(cmd.Flags())

	return cmd
}

// tradeEdit builds an edit from the flags that were set.
func (app *App) tradeEdit(cmd *cobra.Command) (journal.TradeEdit, error) {
	var edit journal.TradeEdit
	flags := cmd.Flags()

	if flags.Changed("symbol") {
		s, _ := flags.GetString("symbol")
		edit.Symbol = &s
	}
	if flags.Changed("side") {
		s, _ := flags.GetString("side")
		side, err := parseSide(s)
		if err != nil {
			return edit, err
		}
		edit.Side = &side
	}
	if flags.Changed("type") {
		s, _ := flags.GetString("type")
		typ, err := parseType(s)
		if err != nil {
			return edit, err
		}
		edit.Type = &typ
	}
	floats := map[string]**float64{
		"entry":    &edit.EntryPrice,
		"exit":     &edit.ExitPrice,
		"quantity": &edit.Quantity,
		"fees":     &edit.Fees,
	}
	for name, dst := range floats {
		if flags.Changed(name) {
			v, _ := flags.GetFloat64(name)
			*dst = &v
		}
	}
	var err error
	if edit.EntryDate, err = app.parseTime(cmd, "entry-date"); err != nil {
		return edit, err
	}
	if edit.ExitDate, err = app.parseTime(cmd, "exit-date"); err != nil {
		return edit, err
	}
	if flags.Changed("notes") {
		s, _ := flags.GetString("notes")
		edit.Notes = &s
	}
	if edit.OptionDetails, err = parseOptionDetails(cmd); err != nil {
		return edit, err
	}
	tags := map[string]*[]string{
		"emotion":  &edit.Emotions,
		"mistake":  &edit.Mistakes,
		"strategy": &edit.Strategies,
	}
	for name, dst := range tags {
		if flags.Changed(name) {
			v, _ := flags.GetStringSlice(name)
			if v == nil {
				v = []string{}
			}
			*dst = v
		}
	}
	edit.Reopen, _ = flags.GetBool("reopen")
	return edit, nil
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		Long:  "List trades, newest entry first.",
		Example: `  trademind trade list
  trademind trade list --status open
  trademind trade list --symbol BANKNIFTY --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			opts := journal.ListOptions{}
			opts.Symbol, _ = cmd.Flags().GetString("symbol")
			opts.Limit, _ = cmd.Flags().GetInt("limit")
			if status, _ := cmd.Flags().GetString("status"); status != "" {
				st, ok := models.ParseTradeStatus(strings.ToUpper(status))
				if !ok {
					err := fmt.Errorf("invalid status: %s (use open or closed)", status)
					output.Error("%v", err)
					return err
				}
				opts.Status = st
			}

			trades, err := app.Journal.List(ctx, opts)
			if err != nil {
				output.Error("Failed to list trades: %v", err)
				return err
			}

			if output.IsJSON() {
				views := make([]tradeView, 0, len(trades))
				for i := range trades {
					views = append(views, newTradeView(&trades[i]))
				}
				return output.JSON(views)
			}

			if len(trades) == 0 {
				output.Info("No trades recorded.")
				output.Dim("Tip: record one with 'trademind trade add <symbol> <entry-price> <quantity>'.")
				return nil
			}

			loc := app.Config.Location()
			table := NewTable(output, "ID", "Entry", "Symbol", "Side", "Qty", "Entry ₹", "Exit ₹", "Status", "Net P&L")
			for _, t := range trades {
				exit := "-"
				if t.ExitPrice != nil {
					exit = FormatPrice(*t.ExitPrice)
				}
				table.AddRow(
					t.ID[:min(8, len(t.ID))],
					FormatDateTime(t.EntryDate, loc),
					t.Symbol,
					string(t.Side),
					FormatQuantity(t.Quantity),
					FormatPrice(t.EntryPrice),
					exit,
					string(t.Status),
					output.FormatPnL(analytics.NetPnL(t)),
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d trades", len(trades))
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "only this symbol")
	cmd.Flags().String("status", "", "only open or closed trades")
	cmd.Flags().Int("limit", 0, "maximum trades (default journal.fetch_limit)")
	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			t, err := app.Journal.Get(ctx, args[0])
			if err != nil {
				output.Error("Failed to get trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(newTradeView(t))
			}

			loc := app.Config.Location()
			lines := []string{
				fmt.Sprintf("Symbol:     %s (%s)", t.Symbol, t.Type),
				fmt.Sprintf("Side:       %s", t.Side),
				fmt.Sprintf("Status:     %s", t.Status),
				fmt.Sprintf("Entry:      %s @ %s", FormatDateTime(t.EntryDate, loc), FormatIndianCurrency(t.EntryPrice)),
			}
			if t.ExitPrice != nil && t.ExitDate != nil {
				lines = append(lines,
					fmt.Sprintf("Exit:       %s @ %s", FormatDateTime(*t.ExitDate, loc), FormatIndianCurrency(*t.ExitPrice)),
					fmt.Sprintf("Held:       %s", FormatDuration(t.ExitDate.Sub(t.EntryDate))),
				)
			}
			lines = append(lines,
				fmt.Sprintf("Quantity:   %s", FormatQuantity(t.Quantity)),
				fmt.Sprintf("Fees:       %s", FormatIndianCurrency(t.Fees)),
				fmt.Sprintf("Gross P&L:  %s", output.FormatPnL(analytics.GrossPnL(*t))),
				fmt.Sprintf("Net P&L:    %s", output.FormatPnL(analytics.NetPnL(*t))),
			)
			if od := t.OptionDetails; od != nil {
				lines = append(lines, fmt.Sprintf("Option:     %s %s exp %s", od.OptionType, FormatPrice(od.Strike), od.Expiration))
			}
			lines = append(lines,
				fmt.Sprintf("Emotions:   %s", FormatTags(t.Emotions)),
				fmt.Sprintf("Mistakes:   %s", FormatTags(t.Mistakes)),
				fmt.Sprintf("Strategies: %s", FormatTags(t.Strategies)),
			)
			if len(t.Tags) > 0 {
				lines = append(lines, fmt.Sprintf("Tags:       %s", FormatTags(t.Tags)))
			}
			output.Box("Trade "+t.ID, lines)

			if t.Notes != "" {
				output.Println()
				output.Bold("Notes")
				output.Printf("  %s\n", t.Notes)
			}
			return nil
		},
	}
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			if err := app.Journal.Delete(ctx, args[0]); err != nil {
				output.Error("Failed to delete trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade deleted: %s", args[0])
			return nil
		},
	}
}
