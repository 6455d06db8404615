// Package dbtest holds the behaviour every ExportRepository must share.
package dbtest

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/ports"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

// NewExport returns an export with two accounts and two transactions.
func NewExport(t *testing.T) *domain.Export {
	t.Helper()

	addr, err := zaddr.EncodeP2PKH(zaddr.MainNet, make([]byte, 20))
	require.NoError(t, err)

	txid1 := chainhash.DoubleHashH([]byte("tx1"))
	txid2 := chainhash.DoubleHashH([]byte("tx2"))
	blockHash := chainhash.DoubleHashH([]byte("block"))

	accountID := uint32(0)
	unified := domain.NewAccount(
		domain.AccountKey{1}, domain.UnifiedAccountName(accountID), &accountID,
	)
	unified.FullViewingKey = "uview1test"
	unified.AddAddress(domain.Address{
		ID: domain.NewTransparentAddressID(addr), Name: "savings",
	})
	unified.AddAddress(domain.Address{
		ID: domain.NewDerivationMetaAddressID(domain.DerivationMeta{
			UFVKFingerprint: domain.AccountKey{1},
			ReceiverTypes:   domain.FlagP2PKH | domain.FlagOrchard,
		}),
	})
	unified.AddRelevantTransaction(txid1)

	defaultAccount := domain.NewDefaultAccount()
	defaultAccount.AddRelevantTransaction(txid2)

	export := domain.NewExport(zaddr.MainNet.String())
	export.Accounts.Add(unified)
	export.Accounts.Add(defaultAccount)
	export.PositionSource = domain.PositionsParsed
	export.Bip39Mnemonic = &domain.Bip39Mnemonic{
		Phrase:          "abandon abandon about",
		Language:        domain.LanguageFrench,
		SeedFingerprint: []byte{0x5e, 0xed},
	}

	prevOut := wire.NewOutPoint(&txid1, 1)
	export.Transactions = []*domain.Transaction{
		{
			TxID:         txid1,
			BlockHash:    &blockHash,
			TimeReceived: 1700000000,
			Inputs:       []*wire.TxIn{},
			Outputs: []*wire.TxOut{
				wire.NewTxOut(5000, []byte{0x76, 0xa9}),
			},
			SaplingSpends:  []domain.SaplingSpend{},
			SaplingOutputs: []domain.SaplingOutput{},
			OrchardActions: []domain.OrchardAction{
				{Commitment: [32]byte{7}, Position: 3},
			},
			Raw: []byte{0x05, 0x00},
		},
		{
			TxID:         txid2,
			TimeReceived: 1700000100,
			Inputs: []*wire.TxIn{
				wire.NewTxIn(prevOut, []byte{0x01, 0x02}, nil),
			},
			Outputs:       []*wire.TxOut{},
			SaplingSpends: []domain.SaplingSpend{},
			SaplingOutputs: []domain.SaplingOutput{
				{Commitment: [32]byte{9}, Witness: []byte{0xaa}, Position: 4},
			},
			OrchardActions: []domain.OrchardAction{},
		},
	}
	return export
}

// TestExportRepository runs the shared ExportRepository checks against the
// repository returned by newRepo.
func TestExportRepository(t *testing.T, newRepo func(t *testing.T) ports.ExportRepository) {
	t.Run("empty store", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.GetExportInfo(ctx)
		require.ErrorIs(t, err, domain.ErrExportNotFound)

		_, err = repo.GetAccount(ctx, domain.DefaultAccountKey)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)

		_, err = repo.GetTransaction(ctx, chainhash.Hash{})
		require.ErrorIs(t, err, domain.ErrTransactionNotFound)

		accounts, err := repo.GetAccounts(ctx)
		require.NoError(t, err)
		require.Empty(t, accounts)
	})

	t.Run("save and read", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		export := NewExport(t)

		require.NoError(t, repo.SaveExport(ctx, export))

		info, err := repo.GetExportInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, export.ID, info.ID)
		require.Equal(t, export.Network, info.Network)
		require.True(t, export.CreatedAt.Equal(info.CreatedAt))
		require.Equal(t, domain.PositionsParsed, info.PositionSource)
		require.Equal(t, 2, info.Accounts)
		require.Equal(t, 2, info.Transactions)
		require.Equal(t, export.Bip39Mnemonic, info.Bip39Mnemonic)

		accounts, err := repo.GetAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		for i, want := range export.Accounts.Accounts() {
			got := accounts[i]
			require.Equal(t, want.Key, got.Key)
			require.Equal(t, want.Name, got.Name)
			require.Equal(t, want.ZIP32AccountID, got.ZIP32AccountID)
			require.Equal(t, want.FullViewingKey, got.FullViewingKey)
			require.Equal(t, want.Addresses, got.Addresses)
			require.Equal(t, want.RelevantTransactions(), got.RelevantTransactions())
		}

		account, err := repo.GetAccount(ctx, domain.DefaultAccountKey)
		require.NoError(t, err)
		require.Equal(t, domain.DefaultAccountName, account.Name)

		txs, err := repo.GetTransactions(ctx)
		require.NoError(t, err)
		require.Equal(t, export.Transactions, txs)

		tx, err := repo.GetTransaction(ctx, export.Transactions[1].TxID)
		require.NoError(t, err)
		require.Equal(t, export.Transactions[1], tx)
	})

	t.Run("save replaces previous export", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := NewExport(t)
		require.NoError(t, repo.SaveExport(ctx, first))

		second := domain.NewExport(zaddr.TestNet.String())
		second.Accounts.Add(domain.NewDefaultAccount())
		require.NoError(t, repo.SaveExport(ctx, second))

		info, err := repo.GetExportInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, second.ID, info.ID)
		require.Nil(t, info.Bip39Mnemonic)

		accounts, err := repo.GetAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 1)

		txs, err := repo.GetTransactions(ctx)
		require.NoError(t, err)
		require.Empty(t, txs)
	})
}
