package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zewif/zcashd-migrate/internal/config"
	"github.com/zewif/zcashd-migrate/internal/core/application"
	"github.com/zewif/zcashd-migrate/internal/infrastructure/snapshot"
	dbbadger "github.com/zewif/zcashd-migrate/internal/infrastructure/storage/db/badger"
	"github.com/zewif/zcashd-migrate/pkg/stats"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:   "zmigrate",
		Short: "zcashd wallet migration",
		Long: "zmigrate turns a decoded zcashd wallet snapshot into an account " +
			"based export and stores it in the export db",
		Version:       formatVersion(),
		RunE:          action,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := app.Flags()
	flags.String("datadir", "", "the directory where export db, backups and metrics are stored")
	flags.String("snapshot", "", "the path of the decoded wallet snapshot to migrate")
	flags.String("network", "", "the network of the snapshot if not stated in it (main, test, regtest)")
	flags.String("db-dir", "", "the directory of the export db. Defaults to <datadir>/db")
	flags.Int("workers", 0, "the number of transactions processed concurrently. 0 means one per CPU")
	flags.String("empty-tree-policy", "", "what to do with note positions if the wallet has no tree state (skip, placeholder)")
	flags.String("metrics-file", "", "write prometheus metrics of the run to this file")
	flags.Int("log-level", 0, "the logrus level, from 0 (panic) to 6 (trace)")
	flags.Bool("no-backup", false, "do not archive a previous export as compressed archive .tar.gz before overwriting it")
}

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

func action(cmd *cobra.Command, args []string) (err error) {
	if err := config.InitConfig(cmd.Flags()); err != nil {
		return err
	}
	log.SetLevel(config.GetLogLevel())

	snapshotFile := config.GetSnapshotFile()
	if snapshotFile == "" {
		return fmt.Errorf("missing snapshot file, use --snapshot flag")
	}
	if _, err := os.Stat(snapshotFile); err != nil {
		return fmt.Errorf("snapshot not found: %s", snapshotFile)
	}

	start := time.Now()
	log.Info("starting migration...")

	defer func(start time.Time) {
		if err == nil {
			elapsedTime := time.Since(start).Seconds()
			log.Infof("migration ended in %fs", elapsedTime)
		}
	}(start)

	dbDir := config.GetDbDir()
	if !config.GetBool(config.NoBackupKey) {
		if err = backupExport(dbDir, config.GetBackupDir()); err != nil {
			return fmt.Errorf("failed to backup previous export: %s", err)
		}
	}

	dbManager, err := dbbadger.NewDbManager(dbDir, nil)
	if err != nil {
		return err
	}
	defer dbManager.Close()

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	svc := application.NewMigrationService(
		snapshot.NewFileLoader(snapshotFile, config.GetNetwork()),
		dbManager.ExportRepository(),
		application.MigrationOpts{
			Workers:         config.GetInt(config.WorkersKey),
			EmptyTreePolicy: config.GetEmptyTreePolicy(),
			Sink:            application.NewLogSink(log.WithField("component", "migration")),
		},
	)

	result, err := svc.Migrate(ctx)
	if err != nil {
		return err
	}
	stats.PrintMemoryStatistics()

	if metricsFile := config.GetMetricsFile(); metricsFile != "" {
		if err = writeMetrics(metricsFile, result, time.Since(start)); err != nil {
			return fmt.Errorf("failed to write metrics: %s", err)
		}
	}

	printSummary(result)
	return nil
}

func writeMetrics(
	path string, result *application.MigrationResult, elapsed time.Duration,
) error {
	metrics := stats.NewMigrationMetrics()
	metrics.Observe(runStats(result, elapsed))
	if err := os.MkdirAll(filepath.Dir(path), os.ModeDir|0755); err != nil {
		return err
	}
	return metrics.WriteToTextfile(path)
}

func runStats(result *application.MigrationResult, elapsed time.Duration) stats.Run {
	warnings := 0
	for _, d := range result.Diagnostics {
		if d.Level == application.LevelWarning {
			warnings++
		}
	}
	passes := make(map[string]int, len(result.Passes))
	for pass, count := range result.Passes {
		passes[pass.String()] = count
	}

	return stats.Run{
		Accounts:       result.Export.Accounts.Len(),
		Transactions:   len(result.Export.Transactions),
		Warnings:       warnings,
		Positions:      result.Positions.Updated,
		PositionSource: result.Positions.Source.String(),
		Passes:         passes,
		Elapsed:        elapsed,
	}
}

func printSummary(result *application.MigrationResult) {
	export := result.Export
	fmt.Printf("export:       %s\n", export.ID)
	fmt.Printf("network:      %s\n", export.Network)
	fmt.Printf("accounts:     %d\n", export.Accounts.Len())
	fmt.Printf("transactions: %d\n", len(export.Transactions))
	fmt.Printf(
		"positions:    %d (%s)\n",
		result.Positions.Updated, result.Positions.Source,
	)
	for _, d := range result.Diagnostics {
		if d.Level == application.LevelWarning {
			fmt.Printf("warning: %s\n", d)
		}
	}
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}
