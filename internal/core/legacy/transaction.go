package legacy

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

// TxID ...
type TxID = domain.TxID

// SaplingOutPoint locates a sapling output within a transaction.
type SaplingOutPoint struct {
	TxID  TxID
	Index uint32
}

func (o SaplingOutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}

// SaplingNoteData is the per output metadata zcashd keeps for sapling
// notes it can decrypt.
type SaplingNoteData struct {
	IncomingViewingKey []byte
	// Nullifier is set once the wallet could compute it.
	Nullifier     *[32]byte
	Witnesses     [][]byte
	WitnessHeight int32
}

// OrchardTxMeta is the orchard metadata of a wallet transaction.
type OrchardTxMeta struct {
	// ReceivingKeys maps an action index to the incoming viewing key that
	// decrypted its output.
	ReceivingKeys map[uint32][]byte
	// ActionsSpendingMyNotes lists the actions whose spend belongs to the
	// wallet.
	ActionsSpendingMyNotes []uint32
}

// WalletTx is a decoded tx record.
type WalletTx struct {
	TxID         TxID
	BlockHash    *chainhash.Hash
	TimeReceived int64
	FromMe       bool

	Inputs          []*wire.TxIn
	Outputs         []*wire.TxOut
	SaplingSpends   []domain.SaplingSpend
	SaplingOutputs  []domain.SaplingOutput
	SaplingNoteData map[SaplingOutPoint]*SaplingNoteData
	JoinSplits      []domain.JoinSplit
	OrchardActions  []domain.OrchardAction
	OrchardMeta     *OrchardTxMeta

	Raw []byte
}

// NoteData returns the sapling note data of the output at index.
func (tx *WalletTx) NoteData(index uint32) (*SaplingNoteData, bool) {
	nd, ok := tx.SaplingNoteData[SaplingOutPoint{TxID: tx.TxID, Index: index}]
	return nd, ok
}

// TransactionMap holds the wallet transactions in the order they were
// decoded.
type TransactionMap struct {
	order []TxID
	byID  map[TxID]*WalletTx
}

// NewTransactionMap ...
func NewTransactionMap() *TransactionMap {
	return &TransactionMap{byID: make(map[TxID]*WalletTx)}
}

// Add appends tx. Transaction ids must be unique.
func (m *TransactionMap) Add(tx *WalletTx) error {
	if _, ok := m.byID[tx.TxID]; ok {
		return domain.NewStructuralError(
			"tx", tx.TxID.String(), fmt.Errorf("duplicate transaction id"),
		)
	}
	m.order = append(m.order, tx.TxID)
	m.byID[tx.TxID] = tx
	return nil
}

// Get ...
func (m *TransactionMap) Get(txid TxID) (*WalletTx, bool) {
	tx, ok := m.byID[txid]
	return tx, ok
}

// Len ...
func (m *TransactionMap) Len() int {
	return len(m.order)
}

// All returns the transactions in insertion order.
func (m *TransactionMap) All() []*WalletTx {
	txs := make([]*WalletTx, 0, len(m.order))
	for _, txid := range m.order {
		txs = append(txs, m.byID[txid])
	}
	return txs
}
