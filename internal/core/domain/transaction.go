package domain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// TxID is a transaction id, displayed in reversed byte order like zcashd
// does.
type TxID = chainhash.Hash

// Position is the 1-based position of a note commitment in its tree; 0
// means the position is unknown.
type Position uint32

// PositionUnknown ...
const PositionUnknown Position = 0

// SaplingSpend ...
type SaplingSpend struct {
	Index           int
	ValueCommitment [32]byte
	Anchor          [32]byte
	Nullifier       [32]byte
	Rk              [32]byte
	ZkProof         []byte
	SpendAuthSig    []byte
}

// SaplingOutput carries the latest witness the wallet held for the note,
// if any, and the note commitment tree position once known.
type SaplingOutput struct {
	Index           int
	ValueCommitment [32]byte
	Commitment      [32]byte
	EphemeralKey    [32]byte
	EncCiphertext   []byte
	OutCiphertext   []byte
	ZkProof         []byte
	Witness         []byte
	Position        Position
}

// OrchardAction ...
type OrchardAction struct {
	Index           int
	ValueCommitment [32]byte
	Nullifier       [32]byte
	Rk              [32]byte
	Commitment      [32]byte
	EphemeralKey    [32]byte
	EncCiphertext   []byte
	OutCiphertext   []byte
	Position        Position
}

// JoinSplit is a Sprout JoinSplit description.
type JoinSplit struct {
	VPubOld     uint64
	VPubNew     uint64
	Anchor      [32]byte
	Nullifiers  [2][32]byte
	Commitments [2][32]byte
}

// Transaction is the export form of a wallet transaction.
type Transaction struct {
	TxID             TxID
	BlockHash        *chainhash.Hash
	TimeReceived     int64
	Inputs           []*wire.TxIn
	Outputs          []*wire.TxOut
	SaplingSpends    []SaplingSpend
	SaplingOutputs   []SaplingOutput
	OrchardActions   []OrchardAction
	SproutJoinSplits []JoinSplit
	// Raw keeps the serialized transaction for lossless round trips.
	Raw []byte
}

// IsMined ...
func (t *Transaction) IsMined() bool {
	return t.BlockHash != nil
}

// Commitments returns the note commitments created by the transaction,
// Orchard actions first, then Sapling outputs.
func (t *Transaction) Commitments() [][32]byte {
	commitments := make([][32]byte, 0, len(t.OrchardActions)+len(t.SaplingOutputs))
	for _, a := range t.OrchardActions {
		commitments = append(commitments, a.Commitment)
	}
	for _, o := range t.SaplingOutputs {
		commitments = append(commitments, o.Commitment)
	}
	return commitments
}
