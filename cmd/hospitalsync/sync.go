package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qepting91/hospital-sync/internal/collector"
	"github.com/qepting91/hospital-sync/internal/config"
	"github.com/qepting91/hospital-sync/internal/dashboard"
	"github.com/qepting91/hospital-sync/internal/domain"
	"github.com/qepting91/hospital-sync/internal/pipeline"
	"github.com/qepting91/hospital-sync/internal/storage"
	"github.com/qepting91/hospital-sync/internal/watermark"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one incremental sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts)
		},
	}
}

func runSync(cmd *cobra.Command, opts *rootOptions) error {
	// 1. Setup
	cfg, logger, err := loadConfig(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Collaborators
	catalog, content, err := collector.NewCollector(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize collector: %w", err)
	}
	logger.Info("Collector initialized", "mode", cfg.CollectorMode)

	bucket, err := storage.OpenBucket(ctx, cfg.OutputURL, cfg.OutputDir)
	if err != nil {
		return err
	}
	defer bucket.Close()

	// 3. History writer
	runAt := time.Now()
	var historyQueue chan storage.HistoryRecord
	var writerWg sync.WaitGroup
	if cfg.HistoryPath != "" {
		historyQueue = make(chan storage.HistoryRecord, cfg.Workers)
		writer := &storage.HistoryWriter{FilePath: cfg.HistoryPath, Logger: logger}
		writerWg.Add(1)
		go writer.Start(&writerWg, historyQueue)
	}
	observer := func(o domain.Outcome) {
		if historyQueue != nil {
			historyQueue <- storage.NewHistoryRecord(runAt, o)
		}
	}

	// 4. Run
	syncer := pipeline.NewSyncer(
		catalog,
		pipeline.NewWorker(content, storage.NewBlobSink(bucket), logger),
		watermark.NewStore(cfg.WatermarkPath),
		pipeline.Options{Theme: cfg.Theme, Workers: cfg.Workers, Observer: observer},
		logger,
	)
	outcomes, runErr := syncer.Run(ctx)

	if historyQueue != nil {
		close(historyQueue)
	}
	writerWg.Wait()

	if runErr != nil && outcomes == nil {
		return runErr
	}

	// 5. Report
	printOutcomes(cmd.OutOrStdout(), outcomes)
	writeRunReport(cfg, runAt, outcomes, logger)
	logSummary(logger, outcomes)
	return runErr
}

func printOutcomes(w io.Writer, outcomes []domain.Outcome) {
	for _, o := range outcomes {
		fmt.Fprintln(w, o.String())
	}
}

func writeRunReport(cfg config.Config, runAt time.Time, outcomes []domain.Outcome, logger *slog.Logger) {
	if cfg.ReportPath == "" {
		return
	}
	records := make([]storage.HistoryRecord, 0, len(outcomes))
	for _, o := range outcomes {
		records = append(records, storage.NewHistoryRecord(runAt, o))
	}
	if err := dashboard.WriteReport(cfg.ReportPath, records); err != nil {
		logger.Warn("Run report not written", "path", cfg.ReportPath, "err", err)
		return
	}
	logger.Info("Run report written", "path", cfg.ReportPath)
}

func logSummary(logger *slog.Logger, outcomes []domain.Outcome) {
	counts := make(map[domain.Status]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	logger.Info("Sync complete",
		"downloaded", counts[domain.StatusDownloaded],
		"skipped", counts[domain.StatusSkipped],
		"failed", counts[domain.StatusFailed])
}
