// Package notetree reads and writes the serialized Orchard note commitment
// tree state kept by zcashd wallets (NOTE_STATE records).
package notetree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	// Version is the only supported serialization version.
	Version = 1

	notePositionSize = 4 + 8
	txHeaderSize     = chainhash.HashSize + 4 + 1
)

var (
	// ErrEmpty ...
	ErrEmpty = errors.New("note state is empty")
	// ErrUnsupportedVersion ...
	ErrUnsupportedVersion = errors.New("unsupported note state version")
	// ErrTrailingBytes ...
	ErrTrailingBytes = errors.New("trailing bytes after note state")
	// ErrCountTooLarge is returned when a vector length exceeds what the
	// remaining bytes could hold.
	ErrCountTooLarge = errors.New("vector length exceeds remaining data")
)

// Leaf is a note commitment and its leaf index.
type Leaf struct {
	Position   uint64
	Commitment [32]byte
}

// NotePosition maps an action of a wallet transaction to its leaf index.
type NotePosition struct {
	ActionIndex uint32
	Position    uint64
}

// TxNotePositions ...
type TxNotePositions struct {
	TxID      chainhash.Hash
	Height    uint32
	Positions []NotePosition
}

// NoteState is the decoded form of the serialized tree.
type NoteState struct {
	LastCheckpoint *uint32
	Tree           *BridgeTree
	TxPositions    []TxNotePositions
}

// Leaves returns the commitments of the tree with a known leaf position.
func (s *NoteState) Leaves() []Leaf {
	return s.Tree.Leaves()
}

// Parse decodes a serialized note state: the version, the optional last
// checkpoint height, the bridge tree and the note positions of the wallet
// transactions. Every byte must be consumed.
func Parse(data []byte) (*NoteState, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	r := bytes.NewReader(data)

	version, err := readU8(r)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	state := &NoteState{}

	hasCheckpoint, err := readOptionalFlag(r)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	if hasCheckpoint {
		var height uint32
		if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
			return nil, fmt.Errorf("checkpoint: %w", err)
		}
		state.LastCheckpoint = &height
	}

	if state.Tree, err = readTree(r); err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}

	numTxs, err := readCount(r, txHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("note positions: %w", err)
	}
	state.TxPositions = make([]TxNotePositions, 0, numTxs)
	for i := uint64(0); i < numTxs; i++ {
		txPositions, err := readTxPositions(r)
		if err != nil {
			return nil, fmt.Errorf("note positions %d: %w", i, err)
		}
		state.TxPositions = append(state.TxPositions, *txPositions)
	}

	if r.Len() > 0 {
		return nil, fmt.Errorf("%w: %d", ErrTrailingBytes, r.Len())
	}
	return state, nil
}

// Serialize encodes the note state in the format read by Parse. A nil tree
// is written as an empty v3 tree.
func (s *NoteState) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(Version)

	if s.LastCheckpoint != nil {
		buf.WriteByte(1)
		binary.Write(&buf, binary.LittleEndian, *s.LastCheckpoint)
	} else {
		buf.WriteByte(0)
	}

	if err := writeTree(&buf, s.Tree); err != nil {
		return nil, err
	}

	if err := wire.WriteVarInt(&buf, 0, uint64(len(s.TxPositions))); err != nil {
		return nil, err
	}
	for _, tx := range s.TxPositions {
		buf.Write(tx.TxID[:])
		binary.Write(&buf, binary.LittleEndian, tx.Height)
		if err := wire.WriteVarInt(&buf, 0, uint64(len(tx.Positions))); err != nil {
			return nil, err
		}
		for _, p := range tx.Positions {
			binary.Write(&buf, binary.LittleEndian, p.ActionIndex)
			binary.Write(&buf, binary.LittleEndian, p.Position)
		}
	}

	return buf.Bytes(), nil
}

func readTxPositions(r *bytes.Reader) (*TxNotePositions, error) {
	tx := &TxNotePositions{}
	if _, err := io.ReadFull(r, tx.TxID[:]); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &tx.Height); err != nil {
		return nil, err
	}
	n, err := readCount(r, notePositionSize)
	if err != nil {
		return nil, err
	}
	tx.Positions = make([]NotePosition, 0, n)
	for j := uint64(0); j < n; j++ {
		var p NotePosition
		if err := binary.Read(r, binary.LittleEndian, &p.ActionIndex); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.Position); err != nil {
			return nil, err
		}
		tx.Positions = append(tx.Positions, p)
	}
	return tx, nil
}

func readCount(r *bytes.Reader, itemSize int) (uint64, error) {
	n, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Len()/itemSize) {
		return 0, ErrCountTooLarge
	}
	return n, nil
}
