package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/qepting91/hospital-sync/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "hospitalsync",
		Short: "Incrementally mirror CMS hospital datasets",
		Long: `hospitalsync polls the CMS provider-data catalog, downloads every dataset in the
configured theme that changed since the last run, normalizes its column names and
writes it as CSV. Running without a subcommand is the same as "hospitalsync sync".`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file (YAML format)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (env LOG_LEVEL)")

	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newDashboardCmd(opts))
	return cmd
}

// loadConfig resolves configuration as defaults < config file < environment
// (.env included) and installs the JSON logger as the slog default.
func loadConfig(opts *rootOptions, logOut io.Writer) (config.Config, *slog.Logger, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := config.Default()
	if opts.configPath != "" {
		fileCfg, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	level, err := parseLevel(opts.logLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func parseLevel(flagValue string) (slog.Level, error) {
	value := flagValue
	if value == "" {
		value = os.Getenv("LOG_LEVEL")
	}
	if value == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(value))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", value, err)
	}
	return level, nil
}
