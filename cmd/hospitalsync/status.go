package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qepting91/hospital-sync/internal/watermark"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the stored watermark",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			mark, err := watermark.NewStore(cfg.WatermarkPath).Load(cmd.Context())
			if err != nil {
				return err
			}
			if mark.Equal(watermark.Epoch) {
				fmt.Fprintln(cmd.OutOrStdout(), "No previous sync recorded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Last sync: %s\n", mark.Format(time.RFC3339))
			return nil
		},
	}
}
