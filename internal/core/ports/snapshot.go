package ports

import (
	"context"

	"github.com/zewif/zcashd-migrate/internal/core/legacy"
)

// SnapshotLoader returns a decoded wallet ready to be migrated.
type SnapshotLoader interface {
	Load(ctx context.Context) (*legacy.Wallet, error)
}
