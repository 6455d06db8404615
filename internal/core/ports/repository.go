package ports

import (
	"context"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

// ExportRepository persists the result of a migration. A store holds at
// most one export; saving a new one replaces the previous.
type ExportRepository interface {
	// SaveExport stores the export, replacing any previous one.
	SaveExport(ctx context.Context, export *domain.Export) error
	// GetExportInfo returns domain.ErrExportNotFound if nothing was saved.
	GetExportInfo(ctx context.Context) (*domain.ExportInfo, error)
	// GetAccounts returns the accounts in their export order.
	GetAccounts(ctx context.Context) ([]*domain.Account, error)
	GetAccount(ctx context.Context, key domain.AccountKey) (*domain.Account, error)
	// GetTransactions returns the transactions in their export order.
	GetTransactions(ctx context.Context) ([]*domain.Transaction, error)
	GetTransaction(ctx context.Context, txid domain.TxID) (*domain.Transaction, error)
	Close()
}
