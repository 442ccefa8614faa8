package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/app"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/config"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
)

var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "Switchboard experiments add-on and reference host",
	Long: `switchboard runs the experiments add-on against a local reference host.

The add-on downloads the experiments configuration, asks the host which
experiments are active, and shows the result in a home panel and on the
about:experiments page, where clicking a row overrides it.

Configuration comes from the environment (EXPERIMENTS_URL, STORAGE_PATH,
LOG_LEVEL, ...); the flags below override it.`,
	SilenceUsage: true,
}

// Global flags
var (
	storagePath string
	logLevel    string
	devLogs     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "SQLite database path (overrides STORAGE_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&devLogs, "dev", false, "Human-readable development logs")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if devLogs {
		cfg.Logging.Development = true
	}
	return cfg, nil
}

// newApp builds the App for a command from environment and flags.
func newApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
