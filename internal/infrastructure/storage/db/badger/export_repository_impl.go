package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/ports"
)

type exportRepositoryImpl struct {
	store *badgerhold.Store
}

// NewExportRepositoryImpl returns a badgerhold backed ExportRepository.
func NewExportRepositoryImpl(db *DbManager) ports.ExportRepository {
	return &exportRepositoryImpl{db.Store}
}

func (r *exportRepositoryImpl) SaveExport(
	_ context.Context, export *domain.Export,
) error {
	if err := r.store.DeleteMatching(&account{}, nil); err != nil {
		return fmt.Errorf("clearing accounts: %w", err)
	}
	if err := r.store.DeleteMatching(&transaction{}, nil); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}

	if export.Accounts != nil {
		for i, a := range export.Accounts.Accounts() {
			dto := toAccountDTO(a, i)
			if err := r.store.Upsert(dto.Key, dto); err != nil {
				return fmt.Errorf("account %s: %w", dto.Key, err)
			}
		}
	}
	for i, tx := range export.Transactions {
		dto := toTransactionDTO(tx, i)
		if err := r.store.Upsert(dto.TxID, dto); err != nil {
			return fmt.Errorf("transaction %s: %w", dto.TxID, err)
		}
	}

	return r.store.Upsert(exportInfoKey, toExportInfoDTO(export.Info()))
}

func (r *exportRepositoryImpl) GetExportInfo(
	_ context.Context,
) (*domain.ExportInfo, error) {
	var dto exportInfo
	if err := r.store.Get(exportInfoKey, &dto); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrExportNotFound
		}
		return nil, err
	}
	return dto.toDomain()
}

func (r *exportRepositoryImpl) GetAccounts(
	_ context.Context,
) ([]*domain.Account, error) {
	var dtos []account
	if err := r.store.Find(&dtos, nil); err != nil {
		return nil, err
	}
	sortAccounts(dtos)

	accounts := make([]*domain.Account, 0, len(dtos))
	for _, dto := range dtos {
		a, err := dto.toDomain()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", dto.Key, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (r *exportRepositoryImpl) GetAccount(
	_ context.Context, key domain.AccountKey,
) (*domain.Account, error) {
	var dto account
	if err := r.store.Get(key.String(), &dto); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return dto.toDomain()
}

func (r *exportRepositoryImpl) GetTransactions(
	_ context.Context,
) ([]*domain.Transaction, error) {
	var dtos []transaction
	if err := r.store.Find(&dtos, nil); err != nil {
		return nil, err
	}
	sortTransactions(dtos)

	txs := make([]*domain.Transaction, 0, len(dtos))
	for _, dto := range dtos {
		tx, err := dto.toDomain()
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", dto.TxID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r *exportRepositoryImpl) GetTransaction(
	_ context.Context, txid domain.TxID,
) (*domain.Transaction, error) {
	var dto transaction
	if err := r.store.Get(txid.String(), &dto); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return dto.toDomain()
}

func (r *exportRepositoryImpl) Close() {
	r.store.Close()
}
