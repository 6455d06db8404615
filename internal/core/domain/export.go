package domain

import (
	"time"

	"github.com/google/uuid"
)

// PositionSource tells where the note commitment positions of an export
// come from.
type PositionSource int

const (
	// PositionsSkipped means no tree data was available and every position
	// is unknown.
	PositionsSkipped PositionSource = iota
	// PositionsParsed means positions come from the wallet's tree state.
	PositionsParsed
	// PositionsPlaceholder means positions are synthetic sequence numbers.
	PositionsPlaceholder
)

func (s PositionSource) String() string {
	switch s {
	case PositionsSkipped:
		return "skipped"
	case PositionsParsed:
		return "parsed"
	case PositionsPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Export is the migrated wallet.
type Export struct {
	ID             uuid.UUID
	Network        string
	CreatedAt      time.Time
	Accounts       *AccountMap
	Transactions   []*Transaction
	PositionSource PositionSource
	// Bip39Mnemonic is the wallet seed phrase, nil when the wallet has none.
	Bip39Mnemonic *Bip39Mnemonic
}

// NewExport ...
func NewExport(network string) *Export {
	return &Export{
		ID:        uuid.New(),
		Network:   network,
		CreatedAt: time.Now().UTC(),
		Accounts:  NewAccountMap(),
	}
}

// PlaceholderPositions tells whether note positions are synthetic and must
// be rebuilt by the receiving wallet.
func (e *Export) PlaceholderPositions() bool {
	return e.PositionSource == PositionsPlaceholder
}

// Transaction ...
func (e *Export) Transaction(txid TxID) (*Transaction, bool) {
	for _, tx := range e.Transactions {
		if tx.TxID == txid {
			return tx, true
		}
	}
	return nil, false
}

// ExportInfo summarizes an export.
type ExportInfo struct {
	ID             uuid.UUID
	Network        string
	CreatedAt      time.Time
	PositionSource PositionSource
	Accounts       int
	Transactions   int
	Bip39Mnemonic  *Bip39Mnemonic
}

// Info ...
func (e *Export) Info() ExportInfo {
	accounts := 0
	if e.Accounts != nil {
		accounts = e.Accounts.Len()
	}
	return ExportInfo{
		ID:             e.ID,
		Network:        e.Network,
		CreatedAt:      e.CreatedAt,
		PositionSource: e.PositionSource,
		Accounts:       accounts,
		Transactions:   len(e.Transactions),
		Bip39Mnemonic:  e.Bip39Mnemonic,
	}
}
