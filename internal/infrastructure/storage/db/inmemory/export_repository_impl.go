package inmemory

import (
	"context"
	"sync"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/ports"
)

type exportInmemoryStore struct {
	export *domain.Export
	locker *sync.RWMutex
}

type exportRepositoryImpl struct {
	store *exportInmemoryStore
}

// NewExportRepositoryImpl returns a new inmemory ExportRepository
// implementation. It keeps references to the saved export.
func NewExportRepositoryImpl() ports.ExportRepository {
	return &exportRepositoryImpl{&exportInmemoryStore{locker: &sync.RWMutex{}}}
}

func (r *exportRepositoryImpl) SaveExport(_ context.Context, export *domain.Export) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.export = export
	return nil
}

func (r *exportRepositoryImpl) GetExportInfo(_ context.Context) (*domain.ExportInfo, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	if r.store.export == nil {
		return nil, domain.ErrExportNotFound
	}
	info := r.store.export.Info()
	return &info, nil
}

func (r *exportRepositoryImpl) GetAccounts(_ context.Context) ([]*domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	if r.store.export == nil || r.store.export.Accounts == nil {
		return []*domain.Account{}, nil
	}
	return r.store.export.Accounts.Accounts(), nil
}

func (r *exportRepositoryImpl) GetAccount(
	_ context.Context, key domain.AccountKey,
) (*domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	if r.store.export == nil || r.store.export.Accounts == nil {
		return nil, domain.ErrAccountNotFound
	}
	account, ok := r.store.export.Accounts.Get(key)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r *exportRepositoryImpl) GetTransactions(_ context.Context) ([]*domain.Transaction, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	if r.store.export == nil {
		return []*domain.Transaction{}, nil
	}
	txs := make([]*domain.Transaction, len(r.store.export.Transactions))
	copy(txs, r.store.export.Transactions)
	return txs, nil
}

func (r *exportRepositoryImpl) GetTransaction(
	_ context.Context, txid domain.TxID,
) (*domain.Transaction, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	if r.store.export == nil {
		return nil, domain.ErrTransactionNotFound
	}
	tx, ok := r.store.export.Transaction(txid)
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *exportRepositoryImpl) Close() {}
