package dbbadger

import (
	"encoding/hex"
	"sort"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

const exportInfoKey = "export"

type exportInfo struct {
	ID             string
	Network        string
	CreatedAt      time.Time
	PositionSource int
	Accounts       int
	Transactions   int
	Bip39Mnemonic  *domain.Bip39Mnemonic
}

type account struct {
	Key                  string
	Order                int
	Name                 string
	ZIP32AccountID       *uint32
	SeedFingerprint      []byte
	FullViewingKey       string
	Addresses            []domain.Address
	RelevantTransactions []string
}

type txInput struct {
	PrevTxID        string
	PrevIndex       uint32
	SignatureScript string
	Sequence        uint32
}

type txOutput struct {
	Value    int64
	PkScript string
}

type transaction struct {
	TxID             string
	Order            int
	BlockHash        string
	TimeReceived     int64
	Inputs           []txInput
	Outputs          []txOutput
	SaplingSpends    []domain.SaplingSpend
	SaplingOutputs   []domain.SaplingOutput
	OrchardActions   []domain.OrchardAction
	SproutJoinSplits []domain.JoinSplit
	Raw              []byte
}

func toExportInfoDTO(info domain.ExportInfo) exportInfo {
	return exportInfo{
		ID:             info.ID.String(),
		Network:        info.Network,
		CreatedAt:      info.CreatedAt,
		PositionSource: int(info.PositionSource),
		Accounts:       info.Accounts,
		Transactions:   info.Transactions,
		Bip39Mnemonic:  info.Bip39Mnemonic,
	}
}

func (e exportInfo) toDomain() (*domain.ExportInfo, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, err
	}
	return &domain.ExportInfo{
		ID:             id,
		Network:        e.Network,
		CreatedAt:      e.CreatedAt,
		PositionSource: domain.PositionSource(e.PositionSource),
		Accounts:       e.Accounts,
		Transactions:   e.Transactions,
		Bip39Mnemonic:  e.Bip39Mnemonic,
	}, nil
}

func toAccountDTO(a *domain.Account, order int) account {
	txids := a.RelevantTransactions()
	relevant := make([]string, 0, len(txids))
	for _, txid := range txids {
		relevant = append(relevant, txid.String())
	}
	return account{
		Key:                  a.Key.String(),
		Order:                order,
		Name:                 a.Name,
		ZIP32AccountID:       a.ZIP32AccountID,
		SeedFingerprint:      a.SeedFingerprint,
		FullViewingKey:       a.FullViewingKey,
		Addresses:            a.Addresses,
		RelevantTransactions: relevant,
	}
}

func (a account) toDomain() (*domain.Account, error) {
	key, err := domain.ParseAccountKey(a.Key)
	if err != nil {
		return nil, err
	}
	acc := domain.NewAccount(key, a.Name, a.ZIP32AccountID)
	acc.SeedFingerprint = a.SeedFingerprint
	acc.FullViewingKey = a.FullViewingKey
	for _, addr := range a.Addresses {
		acc.AddAddress(addr)
	}
	for _, s := range a.RelevantTransactions {
		txid, err := chainhash.NewHashFromStr(s)
		if err != nil {
			return nil, err
		}
		acc.AddRelevantTransaction(*txid)
	}
	return acc, nil
}

func toTransactionDTO(tx *domain.Transaction, order int) transaction {
	inputs := make([]txInput, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		inputs = append(inputs, txInput{
			PrevTxID:        in.PreviousOutPoint.Hash.String(),
			PrevIndex:       in.PreviousOutPoint.Index,
			SignatureScript: hex.EncodeToString(in.SignatureScript),
			Sequence:        in.Sequence,
		})
	}
	outputs := make([]txOutput, 0, len(tx.Outputs))
	for _, out := range tx.Outputs {
		outputs = append(outputs, txOutput{
			Value:    out.Value,
			PkScript: hex.EncodeToString(out.PkScript),
		})
	}
	blockHash := ""
	if tx.BlockHash != nil {
		blockHash = tx.BlockHash.String()
	}
	return transaction{
		TxID:             tx.TxID.String(),
		Order:            order,
		BlockHash:        blockHash,
		TimeReceived:     tx.TimeReceived,
		Inputs:           inputs,
		Outputs:          outputs,
		SaplingSpends:    tx.SaplingSpends,
		SaplingOutputs:   tx.SaplingOutputs,
		OrchardActions:   tx.OrchardActions,
		SproutJoinSplits: tx.SproutJoinSplits,
		Raw:              tx.Raw,
	}
}

func (t transaction) toDomain() (*domain.Transaction, error) {
	txid, err := chainhash.NewHashFromStr(t.TxID)
	if err != nil {
		return nil, err
	}
	var blockHash *chainhash.Hash
	if t.BlockHash != "" {
		if blockHash, err = chainhash.NewHashFromStr(t.BlockHash); err != nil {
			return nil, err
		}
	}

	inputs := make([]*wire.TxIn, 0, len(t.Inputs))
	for _, in := range t.Inputs {
		prevHash, err := chainhash.NewHashFromStr(in.PrevTxID)
		if err != nil {
			return nil, err
		}
		sigScript, err := hex.DecodeString(in.SignatureScript)
		if err != nil {
			return nil, err
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(prevHash, in.PrevIndex), sigScript, nil)
		txIn.Sequence = in.Sequence
		inputs = append(inputs, txIn)
	}
	outputs := make([]*wire.TxOut, 0, len(t.Outputs))
	for _, out := range t.Outputs {
		pkScript, err := hex.DecodeString(out.PkScript)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, wire.NewTxOut(out.Value, pkScript))
	}

	return &domain.Transaction{
		TxID:             *txid,
		BlockHash:        blockHash,
		TimeReceived:     t.TimeReceived,
		Inputs:           inputs,
		Outputs:          outputs,
		SaplingSpends:    t.SaplingSpends,
		SaplingOutputs:   t.SaplingOutputs,
		OrchardActions:   t.OrchardActions,
		SproutJoinSplits: t.SproutJoinSplits,
		Raw:              t.Raw,
	}, nil
}

func sortAccounts(dtos []account) {
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Order < dtos[j].Order })
}

func sortTransactions(dtos []transaction) {
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Order < dtos[j].Order })
}
