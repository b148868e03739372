package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademind/internal/config"
	"trademind/internal/models"
)

var cliNow = time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.Journal.Timezone = "UTC"
	app := &App{
		Config: cfg,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return cliNow },
	}
	t.Cleanup(func() { app.Close() })
	return app
}

// run executes one command line against app with a fresh command tree.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append(args, "--no-color"))
	err := root.Execute()
	return buf.String(), err
}

func runJSON(t *testing.T, app *App, v interface{}, args ...string) {
	t.Helper()
	out, err := run(t, app, append(args, "--json")...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

type tradeJSON struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Status string  `json:"status"`
	NetPnL float64 `json:"net_pnl"`
}

// seedTrades records a winning Calm breakout and a losing FOMO trade.
func seedTrades(t *testing.T, app *App) {
	t.Helper()
	var tr tradeJSON
	runJSON(t, app, &tr, "trade", "add", "NIFTY 50", "100", "10",
		"--exit", "110", "--entry-date", "2024-06-03 09:30", "--exit-date", "2024-06-03 10:00",
		"--emotion", "Calm", "--strategy", "Breakout")
	runJSON(t, app, &tr, "trade", "add", "BANKNIFTY", "200", "5",
		"--exit", "190", "--entry-date", "2024-06-03 11:00", "--exit-date", "2024-06-03 11:30",
		"--emotion", "FOMO", "--mistake", "Early Exit")
}

func TestCLI_TradeLifecycle(t *testing.T) {
	app := newTestApp(t)

	var added tradeJSON
	runJSON(t, app, &added, "trade", "add", "reliance", "100", "10",
		"--fees", "20", "--entry-date", "2024-06-03 09:30")
	require.NotEmpty(t, added.ID)
	assert.Equal(t, "RELIANCE", added.Symbol)
	assert.Equal(t, string(models.StatusOpen), added.Status)
	assert.Equal(t, -20.0, added.NetPnL)

	var listed []tradeJSON
	runJSON(t, app, &listed, "trade", "list", "--status", "open")
	require.Len(t, listed, 1)
	assert.Equal(t, added.ID, listed[0].ID)

	var closed tradeJSON
	runJSON(t, app, &closed, "trade", "close", added.ID, "110", "--exit-date", "2024-06-03 10:15")
	assert.Equal(t, string(models.StatusClosed), closed.Status)
	assert.InDelta(t, 80.0, closed.NetPnL, 1e-9)

	out, err := run(t, app, "trade", "show", added.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "RELIANCE")
	assert.Contains(t, out, "+₹80.00")

	_, err = run(t, app, "trade", "close", added.ID, "120")
	assert.Error(t, err, "closing twice fails")

	var edited tradeJSON
	runJSON(t, app, &edited, "trade", "edit", added.ID, "--reopen")
	assert.Equal(t, string(models.StatusOpen), edited.Status)

	_, err = run(t, app, "trade", "delete", added.ID)
	require.NoError(t, err)

	runJSON(t, app, &listed, "trade", "list")
	assert.Empty(t, listed)
}

func TestCLI_TradeAddRejectsInvalidInput(t *testing.T) {
	app := newTestApp(t)

	for _, args := range [][]string{
		{"trade", "add", "NIFTY 50", "0", "10"},
		{"trade", "add", "NIFTY 50", "abc", "10"},
		{"trade", "add", "NIFTY 50", "100", "10", "--side", "sideways"},
		{"trade", "add", "NIFTY 50", "100", "10", "--exit", "110", "--entry-date", "2024-06-03 10:00", "--exit-date", "2024-06-03 09:00"},
	} {
		_, err := run(t, app, args...)
		assert.Error(t, err, strings.Join(args, " "))
	}

	var listed []tradeJSON
	runJSON(t, app, &listed, "trade", "list")
	assert.Empty(t, listed)
}

func TestCLI_DashboardJSON(t *testing.T) {
	app := newTestApp(t)
	seedTrades(t, app)

	var dash struct {
		Window  string `json:"window"`
		Summary struct {
			ClosedCount int     `json:"closed_count"`
			WinCount    int     `json:"win_count"`
			LossCount   int     `json:"loss_count"`
			WinRate     float64 `json:"win_rate"`
			TotalNetPnL float64 `json:"total_net_pnl"`
			RiskReward  float64 `json:"risk_reward"`
			EquityCurve []struct {
				Cumulative float64 `json:"cumulative"`
			} `json:"equity_curve"`
		} `json:"summary"`
	}
	runJSON(t, app, &dash, "dashboard")

	assert.Equal(t, "ALL", dash.Window)
	assert.Equal(t, 2, dash.Summary.ClosedCount)
	assert.Equal(t, 1, dash.Summary.WinCount)
	assert.Equal(t, 1, dash.Summary.LossCount)
	assert.InDelta(t, 50.0, dash.Summary.TotalNetPnL, 1e-9)
	assert.InDelta(t, 2.0, dash.Summary.RiskReward, 1e-9)
	assert.Len(t, dash.Summary.EquityCurve, 2)

	out, err := run(t, app, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Dashboard")
}

func TestCLI_AnalysisViews(t *testing.T) {
	app := newTestApp(t)
	seedTrades(t, app)

	var hours []struct {
		Key   string  `json:"key"`
		Count int     `json:"count"`
		PnL   float64 `json:"pnl"`
	}
	runJSON(t, app, &hours, "analysis", "hours")
	total := 0
	for _, b := range hours {
		total += b.Count
	}
	assert.Equal(t, 2, total)

	var strategies []struct {
		Key     string  `json:"key"`
		Count   int     `json:"count"`
		WinRate float64 `json:"win_rate"`
	}
	runJSON(t, app, &strategies, "analysis", "strategies")
	require.NotEmpty(t, strategies)
	assert.Equal(t, "Breakout", strategies[0].Key)
	assert.Equal(t, 100.0, strategies[0].WinRate)

	_, err := run(t, app, "analysis", "hours", "--window", "fortnight")
	assert.Error(t, err)
}

func TestCLI_EmotionsAndMistakes(t *testing.T) {
	app := newTestApp(t)
	seedTrades(t, app)

	var emotions struct {
		Best   string      `json:"best"`
		Worst  string      `json:"worst"`
		Trades []tradeJSON `json:"trades"`
	}
	runJSON(t, app, &emotions, "emotions", "--filter", "FOMO")
	assert.Equal(t, "Calm", emotions.Best)
	assert.Equal(t, "FOMO", emotions.Worst)
	require.Len(t, emotions.Trades, 1)
	assert.Equal(t, "BANKNIFTY", emotions.Trades[0].Symbol)

	var mistakes struct {
		TotalMistakeLoss float64 `json:"total_mistake_loss"`
		MostFrequent     string  `json:"most_frequent"`
	}
	runJSON(t, app, &mistakes, "mistakes")
	assert.Equal(t, "Early Exit", mistakes.MostFrequent)
	assert.InDelta(t, -50.0, mistakes.TotalMistakeLoss, 1e-9)
}

func TestCLI_ExportImport(t *testing.T) {
	app := newTestApp(t)
	seedTrades(t, app)

	dir := t.TempDir()
	tradesFile := filepath.Join(dir, "trades.csv")
	_, err := run(t, app, "export", "-o", tradesFile)
	require.NoError(t, err)

	out, err := run(t, app, "export", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "metric,value")
	assert.Contains(t, out, "net_pnl,50.00")

	_, err = run(t, app, "export", "moods")
	assert.Error(t, err)

	other := newTestApp(t)
	var result struct {
		Imported int      `json:"imported"`
		Skipped  []string `json:"skipped"`
	}
	runJSON(t, other, &result, "import", tradesFile)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Skipped)

	var listed []tradeJSON
	runJSON(t, other, &listed, "trade", "list")
	assert.Len(t, listed, 2)
}

func TestCLI_ImportRejectsBadRowsUnlessPartial(t *testing.T) {
	app := newTestApp(t)

	file := filepath.Join(t.TempDir(), "broker.csv")
	csv := "symbol,side,entry_price,quantity,entry_date,exit_price,exit_date\n" +
		"TCS,LONG,3500,2,2024-06-03 09:30,3550,2024-06-03 10:00\n" +
		"INFY,LONG,oops,2,2024-06-03 09:30,,\n"
	require.NoError(t, os.WriteFile(file, []byte(csv), 0o600))

	_, err := run(t, app, "import", file)
	require.Error(t, err)

	var listed []tradeJSON
	runJSON(t, app, &listed, "trade", "list")
	assert.Empty(t, listed)

	var result struct {
		Imported int      `json:"imported"`
		Skipped  []string `json:"skipped"`
	}
	runJSON(t, app, &result, "import", file, "--partial")
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Skipped, 1)
}

func TestCLI_Profile(t *testing.T) {
	app := newTestApp(t)

	var u models.User
	runJSON(t, app, &u, "profile", "show")
	assert.Equal(t, app.Config.Journal.UserID, u.ID)
	assert.Equal(t, "Trader", u.Name)

	runJSON(t, app, &u, "profile", "set", "--name", "Asha Rao", "--plan", "annual")
	assert.Equal(t, "Asha Rao", u.Name)
	assert.Equal(t, models.PlanAnnual, u.SelectedPlan)

	runJSON(t, app, &u, "profile", "show")
	assert.Equal(t, "Asha Rao", u.Name)

	_, err := run(t, app, "profile", "set", "--plan", "lifetime")
	assert.Error(t, err)
}

func TestCLI_ConfigAndVersion(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, app, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	var v map[string]string
	runJSON(t, app, &v, "version")
	assert.Equal(t, Version, v["version"])
}
