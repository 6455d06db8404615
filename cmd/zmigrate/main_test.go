package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zewif/zcashd-migrate/internal/core/application"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

func newResult() *application.MigrationResult {
	export := domain.NewExport("main")
	export.Transactions = make([]*domain.Transaction, 3)
	return &application.MigrationResult{
		Export: export,
		Diagnostics: []application.Diagnostic{
			{Level: application.LevelInfo, Stage: application.StageAccounts, Message: "ok"},
			{Level: application.LevelWarning, Stage: application.StageExtraction, TxID: "aa", Message: "bad"},
		},
		Positions: application.PositionOutcome{
			Source:  domain.PositionsPlaceholder,
			Updated: 4,
		},
		Passes: map[application.AttributionPass]int{
			application.PassChange: 1,
			application.PassDirect: 2,
		},
	}
}

func TestRunStats(t *testing.T) {
	t.Parallel()

	run := runStats(newResult(), 2*time.Second)

	require.Zero(t, run.Accounts)
	require.Equal(t, 3, run.Transactions)
	require.Equal(t, 1, run.Warnings)
	require.Equal(t, 4, run.Positions)
	require.Equal(t, "placeholder", run.PositionSource)
	require.Equal(t, map[string]int{"change": 1, "direct": 2}, run.Passes)
	require.Equal(t, 2*time.Second, run.Elapsed)
}

func TestWriteMetrics(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "metrics", "zmigrate.prom")
	require.NoError(t, writeMetrics(path, newResult(), time.Second))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `zmigrate_attributed_transactions_total{pass="change"} 1`)
	require.Contains(t, string(content), `zmigrate_note_positions{source="placeholder"} 4`)
}
