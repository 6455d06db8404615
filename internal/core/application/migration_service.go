package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zewif/zcashd-migrate/internal/core/ports"
)

// MigrationService loads a wallet snapshot, migrates it and persists the
// export.
type MigrationService interface {
	Migrate(ctx context.Context) (*MigrationResult, error)
}

type migrationService struct {
	loader     ports.SnapshotLoader
	repository ports.ExportRepository
	opts       MigrationOpts
}

// NewMigrationService ...
func NewMigrationService(
	loader ports.SnapshotLoader,
	repository ports.ExportRepository,
	opts MigrationOpts,
) MigrationService {
	return &migrationService{loader, repository, opts}
}

func (s *migrationService) Migrate(ctx context.Context) (*MigrationResult, error) {
	start := time.Now()

	log.Info("--> loading wallet snapshot...")
	w, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	log.Infof(
		"--> loaded %d keys, %d sapling addresses and %d transactions",
		len(w.Keys), len(w.SaplingAddresses), w.Transactions.Len(),
	)

	log.Info("--> migrating wallet...")
	result, err := Migrate(ctx, w, s.opts)
	if err != nil {
		return nil, err
	}

	log.Info("--> saving export...")
	if err := s.repository.SaveExport(ctx, result.Export); err != nil {
		return nil, fmt.Errorf("saving export: %w", err)
	}

	log.Infof(
		"--> migrated %d accounts and %d transactions in %.3fs",
		result.Export.Accounts.Len(), len(result.Export.Transactions),
		time.Since(start).Seconds(),
	)
	return result, nil
}
