package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"trademind/internal/analytics"
	"trademind/internal/errors"
	"trademind/internal/export"
	"trademind/internal/models"
)

// addDataCommands adds CSV export and import.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
}

// exportViews names the views the export command can write.
var exportViews = []string{"trades", "summary", "hours", "days", "weeks", "strategies", "symbols", "emotions", "mistakes"}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [view]",
		Short: "Export trades or an analysis view as CSV",
		Long: `Export journal data as CSV. The default view is trades; analysis views
cover closed trades in the window. Views: ` + strings.Join(exportViews, ", ") + `.`,
		Example: `  trademind export > trades.csv
  trademind export summary --window month
  trademind export strategies -o strategies.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			view := "trades"
			if len(args) == 1 {
				view = strings.ToLower(args[0])
			}

			r, trades, err := app.report(ctx, cmd)
			if err != nil {
				output.Error("Failed to load trades: %v", err)
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			path, _ := cmd.Flags().GetString("output")
			if path != "" {
				f, err := os.Create(path)
				if err != nil {
					output.Error("Failed to create %s: %v", path, err)
					return err
				}
				defer f.Close()
				w = f
			}

			if err := writeView(w, view, r, trades, app); err != nil {
				output.Error("Export failed: %v", err)
				return err
			}
			if path != "" {
				output.Success("✓ Exported %s to %s", view, path)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	addWindowFlag(cmd)
	return cmd
}

func writeView(w io.Writer, view string, r *analytics.Report, trades []models.Trade, app *App) error {
	switch view {
	case "trades":
		return export.WriteTrades(w, trades, app.Config.Location())
	case "summary":
		return export.WriteSummary(w, r.Summary)
	case "hours":
		return export.WriteBuckets(w, r.Hourly)
	case "days":
		return export.WriteBuckets(w, r.Daily)
	case "weeks":
		return export.WriteBuckets(w, r.Weekly)
	case "strategies":
		return export.WriteBuckets(w, r.Strategies)
	case "symbols":
		return export.WriteBuckets(w, r.Symbols)
	case "emotions":
		return export.WriteBuckets(w, r.Emotions)
	case "mistakes":
		return export.WriteBuckets(w, r.Mistakes)
	}
	return fmt.Errorf("unknown view %q (use one of: %s)", view, strings.Join(exportViews, ", "))
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from CSV",
		Long: `Import trades from a CSV file in the export layout. Only symbol,
entry_price, quantity and entry_date columns are required. Rows that fail
to parse are reported; use --partial to import the rest anyway.`,
		Example: `  trademind import trades.csv
  trademind import broker-tradebook.csv --partial`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				output.Error("Failed to open %s: %v", args[0], err)
				return err
			}
			defer f.Close()

			trades, readErr := export.ReadTrades(f, app.Config.Location())
			rowErrs := multierr.Errors(readErr)
			partial, _ := cmd.Flags().GetBool("partial")

			var rowErr *errors.RowError
			rowsOnly := errors.As(readErr, &rowErr)
			if readErr != nil && (!partial || !rowsOnly) {
				for _, e := range rowErrs {
					output.Error("  %v", e)
				}
				output.Error("Import aborted: %d rows rejected", len(rowErrs))
				return readErr
			}

			if len(trades) > 0 {
				if err := app.Journal.Import(ctx, trades); err != nil {
					output.Error("Import failed: %v", err)
					return err
				}
			}

			if output.IsJSON() {
				skipped := make([]string, 0, len(rowErrs))
				for _, e := range rowErrs {
					skipped = append(skipped, e.Error())
				}
				return output.JSON(map[string]interface{}{
					"imported": len(trades),
					"skipped":  skipped,
				})
			}
			for _, e := range rowErrs {
				output.Warning("  skipped %v", e)
			}
			output.Success("✓ Imported %d trades", len(trades))
			return nil
		},
	}

	cmd.Flags().Bool("partial", false, "import valid rows even when some rows fail")
	return cmd
}
