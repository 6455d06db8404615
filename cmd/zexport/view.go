package main

import (
	"encoding/hex"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

// zecExp is the decimal exponent of a zatoshi.
const zecExp = -8

type exportInfoView struct {
	ID                   string    `json:"id"`
	Network              string    `json:"network"`
	CreatedAt            string    `json:"created_at"`
	PositionSource       string    `json:"position_source"`
	PlaceholderPositions bool      `json:"placeholder_positions"`
	Accounts             int       `json:"accounts"`
	Transactions         int       `json:"transactions"`
	Seed                 *seedView `json:"seed,omitempty"`
}

type seedView struct {
	Language        string `json:"language"`
	SeedFingerprint string `json:"seed_fingerprint,omitempty"`
	Mnemonic        string `json:"mnemonic,omitempty"`
}

type addressView struct {
	ID             string `json:"id"`
	Protocol       string `json:"protocol"`
	Name           string `json:"name,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
	IVK            string `json:"ivk,omitempty"`
	HasSpendingKey bool   `json:"has_spending_key,omitempty"`
}

type accountView struct {
	Key                  string        `json:"key"`
	Name                 string        `json:"name"`
	ZIP32AccountID       *uint32       `json:"zip32_account_id,omitempty"`
	SeedFingerprint      string        `json:"seed_fingerprint,omitempty"`
	FullViewingKey       string        `json:"full_viewing_key,omitempty"`
	Addresses            []addressView `json:"addresses,omitempty"`
	NumAddresses         int           `json:"num_addresses"`
	RelevantTransactions []string      `json:"relevant_transactions,omitempty"`
	NumTransactions      int           `json:"num_transactions"`
}

type outputView struct {
	Amount string `json:"amount"`
	Script string `json:"script"`
}

type transactionView struct {
	TxID             string       `json:"txid"`
	BlockHash        string       `json:"block_hash,omitempty"`
	TimeReceived     string       `json:"time_received"`
	Inputs           int          `json:"transparent_inputs"`
	Outputs          []outputView `json:"transparent_outputs,omitempty"`
	TransparentOut   string       `json:"transparent_out"`
	SaplingSpends    int          `json:"sapling_spends"`
	SaplingOutputs   int          `json:"sapling_outputs"`
	OrchardActions   int          `json:"orchard_actions"`
	SproutJoinSplits int          `json:"sprout_joinsplits"`
	SproutVPubOld    string       `json:"sprout_vpub_old,omitempty"`
	SproutVPubNew    string       `json:"sprout_vpub_new,omitempty"`
	Positions        []uint32     `json:"positions,omitempty"`
}

// formatZec renders an amount of zatoshis in ZEC with 8 decimals.
func formatZec(zatoshis decimal.Decimal) string {
	return zatoshis.Shift(zecExp).StringFixed(-zecExp)
}

func toExportInfoView(info *domain.ExportInfo, showMnemonic bool) exportInfoView {
	v := exportInfoView{
		ID:                   info.ID.String(),
		Network:              info.Network,
		CreatedAt:            info.CreatedAt.UTC().Format(time.RFC3339),
		PositionSource:       info.PositionSource.String(),
		PlaceholderPositions: info.PositionSource == domain.PositionsPlaceholder,
		Accounts:             info.Accounts,
		Transactions:         info.Transactions,
	}
	if m := info.Bip39Mnemonic; m != nil {
		v.Seed = &seedView{
			Language:        m.Language.String(),
			SeedFingerprint: hex.EncodeToString(m.SeedFingerprint),
		}
		if showMnemonic {
			v.Seed.Mnemonic = m.Phrase
		}
	}
	return v
}

func toAccountView(a *domain.Account, verbose bool) accountView {
	txs := a.RelevantTransactions()
	v := accountView{
		Key:             a.Key.String(),
		Name:            a.Name,
		ZIP32AccountID:  a.ZIP32AccountID,
		SeedFingerprint: hex.EncodeToString(a.SeedFingerprint),
		FullViewingKey:  a.FullViewingKey,
		NumAddresses:    len(a.Addresses),
		NumTransactions: len(txs),
	}
	if !verbose {
		return v
	}

	for _, addr := range a.Addresses {
		v.Addresses = append(v.Addresses, addressView{
			ID:             addr.ID.String(),
			Protocol:       addr.ID.ProtocolType(),
			Name:           addr.Name,
			Purpose:        addr.Purpose,
			IVK:            hex.EncodeToString(addr.IncomingViewingKey),
			HasSpendingKey: len(addr.SpendingKey) > 0,
		})
	}
	for _, txid := range txs {
		v.RelevantTransactions = append(v.RelevantTransactions, txid.String())
	}
	return v
}

func toTransactionView(tx *domain.Transaction, verbose bool) transactionView {
	v := transactionView{
		TxID:             tx.TxID.String(),
		TimeReceived:     time.Unix(tx.TimeReceived, 0).UTC().Format(time.RFC3339),
		Inputs:           len(tx.Inputs),
		SaplingSpends:    len(tx.SaplingSpends),
		SaplingOutputs:   len(tx.SaplingOutputs),
		OrchardActions:   len(tx.OrchardActions),
		SproutJoinSplits: len(tx.SproutJoinSplits),
	}
	if tx.BlockHash != nil {
		v.BlockHash = tx.BlockHash.String()
	}

	total := decimal.Zero
	for _, out := range tx.Outputs {
		amount := decimal.NewFromInt(out.Value)
		total = total.Add(amount)
		if verbose {
			v.Outputs = append(v.Outputs, outputView{
				Amount: formatZec(amount),
				Script: hex.EncodeToString(out.PkScript),
			})
		}
	}
	v.TransparentOut = formatZec(total)

	if len(tx.SproutJoinSplits) > 0 {
		vpubOld, vpubNew := decimal.Zero, decimal.Zero
		for _, js := range tx.SproutJoinSplits {
			vpubOld = vpubOld.Add(decimal.NewFromBigInt(uint64ToBig(js.VPubOld), 0))
			vpubNew = vpubNew.Add(decimal.NewFromBigInt(uint64ToBig(js.VPubNew), 0))
		}
		v.SproutVPubOld = formatZec(vpubOld)
		v.SproutVPubNew = formatZec(vpubNew)
	}

	if verbose {
		for _, out := range tx.SaplingOutputs {
			if out.Position != domain.PositionUnknown {
				v.Positions = append(v.Positions, uint32(out.Position))
			}
		}
		for _, action := range tx.OrchardActions {
			if action.Position != domain.PositionUnknown {
				v.Positions = append(v.Positions, uint32(action.Position))
			}
		}
	}
	return v
}

func uint64ToBig(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
