package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/qepting91/hospital-sync/internal/dashboard"
)

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve charts built from the sync history file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.HistoryPath == "" {
				return errors.New("dashboard needs history_path (HSYNC_HISTORY_PATH) to be set")
			}
			if port == "" {
				port = os.Getenv("PORT")
			}
			if port == "" {
				port = "8080"
			}
			logger.Info("Starting Dashboard", "port", port, "history", cfg.HistoryPath)
			return dashboard.StartServer(cfg.HistoryPath, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (env PORT, default 8080)")
	return cmd
}
