package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"trademind/internal/cache"
	"trademind/internal/config"
	"trademind/internal/journal"
	"trademind/internal/logging"
	"trademind/internal/store"
)

// Version information
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// commandTimeout bounds a single command's store work.
const commandTimeout = 30 * time.Second

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Journal  *journal.Service
	Profiles *cache.ProfileCache
	Now      func() time.Time
}

// Open loads whatever the app is missing: configuration from configDir,
// the logger, the store, the journal service and the profile cache.
func (app *App) Open(configDir string) error {
	if app.Now == nil {
		app.Now = time.Now
	}
	if app.Config == nil {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		app.Config = cfg
		app.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
	}

	if app.Store == nil {
		ds, err := store.NewSQLiteStore(app.Config.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		app.Store = ds
		app.Logger.Debug().Str("path", app.Config.Journal.DBPath).Msg("SQLite store initialized")
	}

	if app.Journal == nil {
		app.Journal = journal.NewService(app.Store, app.Config.Journal.UserID,
			journal.WithLogger(app.Logger),
			journal.WithClock(app.Now),
			journal.WithFetchLimit(app.Config.Journal.FetchLimit),
		)
	}

	if app.Profiles == nil {
		profiles, err := cache.NewProfileCache(app.Store, cache.Config{
			File:           app.Config.Cache.ProfileFile,
			RefreshTimeout: app.Config.Cache.RefreshTimeout,
			Retry:          app.Config.RetryConfig(),
			Logger:         app.Logger,
			Now:            app.Now,
		})
		if err != nil {
			return err
		}
		app.Profiles = profiles
	}
	return nil
}

// Close releases the profile cache and the store.
func (app *App) Close() error {
	var err error
	if app.Profiles != nil {
		err = multierr.Append(err, app.Profiles.Close())
		app.Profiles = nil
	}
	if app.Store != nil {
		err = multierr.Append(err, app.Store.Close())
		app.Store = nil
	}
	app.Journal = nil
	return err
}

// context returns a command context carrying the app logger.
func (app *App) context() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	return logging.WithLogger(ctx, app.Logger), cancel
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trademind",
		Short: "TradeMind - trading journal and performance analytics",
		Long: `TradeMind is a trading journal for discretionary traders.

Record trades with the emotions, mistakes and strategies behind them, then
review performance by hour, weekday, week, calendar day, strategy, symbol
and psychology.

Use 'trademind help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			if err := app.Open(configDir); err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trademind)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addTradeCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addProfileCommands(rootCmd, app)

	return rootCmd
}

// Execute runs the CLI and releases resources on failure.
func Execute(app *App) error {
	err := NewRootCmd(app).Execute()
	if err != nil {
		err = multierr.Append(err, app.Close())
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// No journal needed.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("TradeMind v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := config.TemplatePath(app.Config.Dir)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Journal")
	output.Printf("  User:            %s\n", cfg.Journal.UserID)
	output.Printf("  Database:        %s\n", cfg.Journal.DBPath)
	output.Printf("  Timezone:        %s\n", cfg.Journal.Timezone)
	output.Printf("  Fetch Limit:     %d\n", cfg.Journal.FetchLimit)
	output.Printf("  Default Window:  %s\n", cfg.Window())
	output.Printf("  Top Symbols:     %d\n", cfg.Journal.TopSymbols)
	output.Printf("  Recent Weeks:    %d\n", cfg.Journal.RecentWeeks)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Println()

	output.Bold("Profile Cache")
	output.Printf("  File:            %s\n", cfg.Cache.ProfileFile)
	output.Printf("  Refresh Timeout: %s\n", cfg.Cache.RefreshTimeout)
	output.Printf("  Max Retries:     %d\n", cfg.Cache.MaxRetries)
}
