package notetree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
)

// Serialization versions of the bridge tree, its bridges and checkpoints.
const (
	TreeV1 = 1
	TreeV2 = 2
	TreeV3 = 3

	BridgeV1 = 1
	BridgeV2 = 2

	hashSize     = 32
	positionSize = 8
	addressSize  = 1 + positionSize
)

var (
	// ErrUnsupportedTreeVersion ...
	ErrUnsupportedTreeVersion = errors.New("unsupported bridge tree version")
	// ErrUnsupportedBridgeVersion ...
	ErrUnsupportedBridgeVersion = errors.New("unsupported bridge version")
	// ErrInvalidOptionalFlag is returned when an optional value is prefixed
	// by anything else than 0 or 1.
	ErrInvalidOptionalFlag = errors.New("invalid optional flag")
)

// Hash is a node of the Orchard commitment tree. Leaves are note
// commitments.
type Hash [hashSize]byte

// Address locates a node of the tree by level and index within the level.
type Address struct {
	Level uint8
	Index uint64
}

// Ommer is the hash of the sibling of a node on an authentication path.
type Ommer struct {
	Address Address
	Hash    Hash
}

// IndexedPosition pairs a leaf position with the index of the bridge
// that ends at it.
type IndexedPosition struct {
	Position    uint64
	BridgeIndex uint64
}

// AuthFragment is the v1 form of the ommers tracked for a marked leaf.
type AuthFragment struct {
	Marked       uint64
	Position     uint64
	AltsObserved uint64
	Values       []Hash
}

// Frontier is the rightmost path of the tree at the time a bridge was
// closed. When Position is odd the leaf is Right and Left its sibling.
type Frontier struct {
	Position uint64
	Left     Hash
	Right    *Hash
	Ommers   []Hash
}

// Leaf returns the most recent leaf of the frontier.
func (f Frontier) Leaf() Hash {
	if f.Right != nil {
		return *f.Right
	}
	return f.Left
}

// Bridge links two consecutive frontiers of the tree.
type Bridge struct {
	Version       uint8
	PriorPosition *uint64
	// v1 only.
	AuthFragments []AuthFragment
	// v2 only.
	Tracking []Address
	Ommers   []Ommer
	Frontier Frontier
}

// Checkpoint records the tree state that a rewind goes back to.
type Checkpoint struct {
	// v3 only.
	ID         uint32
	BridgesLen uint64
	// v1 only.
	IsWitnessed     bool
	ForgottenLeaves []IndexedPosition
	// v2 and v3.
	Marked    []uint64
	Forgotten []uint64
}

// BridgeTree is the serialized wallet commitment tree. Saved maps every
// marked leaf to the prior bridge whose frontier ends at it.
type BridgeTree struct {
	Version        uint8
	PriorBridges   []Bridge
	CurrentBridge  *Bridge
	Saved          []IndexedPosition
	Checkpoints    []Checkpoint
	MaxCheckpoints uint64
}

// Leaves returns the commitments whose leaf position is recoverable: the
// marked leaves followed by the tip of the tree, without duplicates.
func (t *BridgeTree) Leaves() []Leaf {
	if t == nil {
		return nil
	}
	leaves := make([]Leaf, 0, len(t.Saved)+1)
	seen := make(map[uint64]struct{}, len(t.Saved)+1)

	for _, saved := range t.Saved {
		bridge := t.bridgeAt(saved.BridgeIndex)
		if bridge == nil || bridge.Frontier.Position != saved.Position {
			continue
		}
		if _, ok := seen[saved.Position]; ok {
			continue
		}
		seen[saved.Position] = struct{}{}
		leaves = append(leaves, Leaf{
			Position: saved.Position, Commitment: bridge.Frontier.Leaf(),
		})
	}

	if t.CurrentBridge != nil {
		tip := t.CurrentBridge.Frontier
		if _, ok := seen[tip.Position]; !ok {
			leaves = append(leaves, Leaf{Position: tip.Position, Commitment: tip.Leaf()})
		}
	}
	return leaves
}

// Size returns the number of leaves appended to the tree.
func (t *BridgeTree) Size() uint64 {
	if t == nil {
		return 0
	}
	if t.CurrentBridge != nil {
		return t.CurrentBridge.Frontier.Position + 1
	}
	if n := len(t.PriorBridges); n > 0 {
		return t.PriorBridges[n-1].Frontier.Position + 1
	}
	return 0
}

func (t *BridgeTree) bridgeAt(i uint64) *Bridge {
	if i < uint64(len(t.PriorBridges)) {
		return &t.PriorBridges[i]
	}
	if i == uint64(len(t.PriorBridges)) {
		return t.CurrentBridge
	}
	return nil
}

func readTree(r *bytes.Reader) (*BridgeTree, error) {
	version, err := readU8(r)
	if err != nil {
		return nil, err
	}
	if version < TreeV1 || version > TreeV3 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTreeVersion, version)
	}
	t := &BridgeTree{Version: version}

	n, err := readCount(r, 1)
	if err != nil {
		return nil, fmt.Errorf("prior bridges: %w", err)
	}
	t.PriorBridges = makeSlice[Bridge](n)
	for i := uint64(0); i < n; i++ {
		b, err := readBridge(r)
		if err != nil {
			return nil, fmt.Errorf("prior bridge %d: %w", i, err)
		}
		t.PriorBridges = append(t.PriorBridges, *b)
	}

	ok, err := readOptionalFlag(r)
	if err != nil {
		return nil, fmt.Errorf("current bridge: %w", err)
	}
	if ok {
		if t.CurrentBridge, err = readBridge(r); err != nil {
			return nil, fmt.Errorf("current bridge: %w", err)
		}
	}

	if t.Saved, err = readIndexedPositions(r); err != nil {
		return nil, fmt.Errorf("saved: %w", err)
	}

	if n, err = readCount(r, positionSize); err != nil {
		return nil, fmt.Errorf("checkpoints: %w", err)
	}
	t.Checkpoints = makeSlice[Checkpoint](n)
	for i := uint64(0); i < n; i++ {
		c, err := readCheckpoint(r, version)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", i, err)
		}
		t.Checkpoints = append(t.Checkpoints, *c)
	}

	if t.MaxCheckpoints, err = readU64(r); err != nil {
		return nil, fmt.Errorf("max checkpoints: %w", err)
	}
	return t, nil
}

func readBridge(r *bytes.Reader) (*Bridge, error) {
	version, err := readU8(r)
	if err != nil {
		return nil, err
	}
	b := &Bridge{Version: version}

	ok, err := readOptionalFlag(r)
	if err != nil {
		return nil, fmt.Errorf("prior position: %w", err)
	}
	if ok {
		pos, err := readU64(r)
		if err != nil {
			return nil, fmt.Errorf("prior position: %w", err)
		}
		b.PriorPosition = &pos
	}

	switch version {
	case BridgeV1:
		n, err := readCount(r, 3*positionSize+1)
		if err != nil {
			return nil, fmt.Errorf("auth fragments: %w", err)
		}
		b.AuthFragments = makeSlice[AuthFragment](n)
		for i := uint64(0); i < n; i++ {
			f, err := readAuthFragment(r)
			if err != nil {
				return nil, fmt.Errorf("auth fragment %d: %w", i, err)
			}
			b.AuthFragments = append(b.AuthFragments, *f)
		}
	case BridgeV2:
		n, err := readCount(r, addressSize)
		if err != nil {
			return nil, fmt.Errorf("tracking: %w", err)
		}
		b.Tracking = makeSlice[Address](n)
		for i := uint64(0); i < n; i++ {
			addr, err := readAddress(r)
			if err != nil {
				return nil, fmt.Errorf("tracking %d: %w", i, err)
			}
			b.Tracking = append(b.Tracking, addr)
		}

		if n, err = readCount(r, addressSize+hashSize); err != nil {
			return nil, fmt.Errorf("ommers: %w", err)
		}
		b.Ommers = makeSlice[Ommer](n)
		for i := uint64(0); i < n; i++ {
			var o Ommer
			if o.Address, err = readAddress(r); err != nil {
				return nil, fmt.Errorf("ommer %d: %w", i, err)
			}
			if err := readHash(r, &o.Hash); err != nil {
				return nil, fmt.Errorf("ommer %d: %w", i, err)
			}
			b.Ommers = append(b.Ommers, o)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBridgeVersion, version)
	}

	frontier, err := readFrontier(r)
	if err != nil {
		return nil, fmt.Errorf("frontier: %w", err)
	}
	b.Frontier = *frontier
	return b, nil
}

func readAuthFragment(r *bytes.Reader) (*AuthFragment, error) {
	f := &AuthFragment{}
	var err error
	if f.Marked, err = readU64(r); err != nil {
		return nil, err
	}
	if f.Position, err = readU64(r); err != nil {
		return nil, err
	}
	if f.AltsObserved, err = readU64(r); err != nil {
		return nil, err
	}
	if f.Values, err = readHashes(r); err != nil {
		return nil, err
	}
	return f, nil
}

func readFrontier(r *bytes.Reader) (*Frontier, error) {
	f := &Frontier{}
	var err error
	if f.Position, err = readU64(r); err != nil {
		return nil, err
	}
	if err := readHash(r, &f.Left); err != nil {
		return nil, err
	}
	ok, err := readOptionalFlag(r)
	if err != nil {
		return nil, err
	}
	if ok {
		var right Hash
		if err := readHash(r, &right); err != nil {
			return nil, err
		}
		f.Right = &right
	}
	if f.Ommers, err = readHashes(r); err != nil {
		return nil, err
	}
	return f, nil
}

func readCheckpoint(r *bytes.Reader, treeVersion uint8) (*Checkpoint, error) {
	c := &Checkpoint{}
	var err error
	if treeVersion == TreeV3 {
		if err := binary.Read(r, binary.LittleEndian, &c.ID); err != nil {
			return nil, err
		}
	}
	if c.BridgesLen, err = readU64(r); err != nil {
		return nil, err
	}

	if treeVersion == TreeV1 {
		witnessed, err := readU8(r)
		if err != nil {
			return nil, err
		}
		c.IsWitnessed = witnessed == 1
		if c.ForgottenLeaves, err = readIndexedPositions(r); err != nil {
			return nil, err
		}
		return c, nil
	}

	if c.Marked, err = readPositions(r); err != nil {
		return nil, err
	}
	if c.Forgotten, err = readPositions(r); err != nil {
		return nil, err
	}
	return c, nil
}

func readIndexedPositions(r *bytes.Reader) ([]IndexedPosition, error) {
	n, err := readCount(r, 2*positionSize)
	if err != nil {
		return nil, err
	}
	out := makeSlice[IndexedPosition](n)
	for i := uint64(0); i < n; i++ {
		var p IndexedPosition
		if p.Position, err = readU64(r); err != nil {
			return nil, err
		}
		if p.BridgeIndex, err = readU64(r); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func readPositions(r *bytes.Reader) ([]uint64, error) {
	n, err := readCount(r, positionSize)
	if err != nil {
		return nil, err
	}
	out := makeSlice[uint64](n)
	for i := uint64(0); i < n; i++ {
		pos, err := readU64(r)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

func readHashes(r *bytes.Reader) ([]Hash, error) {
	n, err := readCount(r, hashSize)
	if err != nil {
		return nil, err
	}
	out := makeSlice[Hash](n)
	for i := uint64(0); i < n; i++ {
		var h Hash
		if err := readHash(r, &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func readAddress(r *bytes.Reader) (Address, error) {
	var addr Address
	var err error
	if addr.Level, err = readU8(r); err != nil {
		return addr, err
	}
	addr.Index, err = readU64(r)
	return addr, err
}

// makeSlice keeps empty vectors nil.
func makeSlice[T any](n uint64) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

func readHash(r *bytes.Reader, h *Hash) error {
	_, err := io.ReadFull(r, h[:])
	return err
}

func readOptionalFlag(r *bytes.Reader) (bool, error) {
	flag, err := readU8(r)
	if err != nil {
		return false, err
	}
	switch flag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrInvalidOptionalFlag, flag)
	}
}

func readU8(r *bytes.Reader) (uint8, error) {
	return r.ReadByte()
}

func readU64(r *bytes.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeTree(w *bytes.Buffer, t *BridgeTree) error {
	if t == nil {
		t = &BridgeTree{Version: TreeV3}
	}
	if t.Version < TreeV1 || t.Version > TreeV3 {
		return fmt.Errorf("%w: %d", ErrUnsupportedTreeVersion, t.Version)
	}
	w.WriteByte(t.Version)

	if err := wire.WriteVarInt(w, 0, uint64(len(t.PriorBridges))); err != nil {
		return err
	}
	for i := range t.PriorBridges {
		if err := writeBridge(w, &t.PriorBridges[i]); err != nil {
			return err
		}
	}
	if t.CurrentBridge == nil {
		w.WriteByte(0)
	} else {
		w.WriteByte(1)
		if err := writeBridge(w, t.CurrentBridge); err != nil {
			return err
		}
	}

	if err := writeIndexedPositions(w, t.Saved); err != nil {
		return err
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(t.Checkpoints))); err != nil {
		return err
	}
	for _, c := range t.Checkpoints {
		if t.Version == TreeV3 {
			binary.Write(w, binary.LittleEndian, c.ID)
		}
		binary.Write(w, binary.LittleEndian, c.BridgesLen)
		if t.Version == TreeV1 {
			if c.IsWitnessed {
				w.WriteByte(1)
			} else {
				w.WriteByte(0)
			}
			if err := writeIndexedPositions(w, c.ForgottenLeaves); err != nil {
				return err
			}
			continue
		}
		if err := writePositions(w, c.Marked); err != nil {
			return err
		}
		if err := writePositions(w, c.Forgotten); err != nil {
			return err
		}
	}

	binary.Write(w, binary.LittleEndian, t.MaxCheckpoints)
	return nil
}

func writeBridge(w *bytes.Buffer, b *Bridge) error {
	w.WriteByte(b.Version)
	if b.PriorPosition == nil {
		w.WriteByte(0)
	} else {
		w.WriteByte(1)
		binary.Write(w, binary.LittleEndian, *b.PriorPosition)
	}

	switch b.Version {
	case BridgeV1:
		if err := wire.WriteVarInt(w, 0, uint64(len(b.AuthFragments))); err != nil {
			return err
		}
		for _, f := range b.AuthFragments {
			binary.Write(w, binary.LittleEndian, f.Marked)
			binary.Write(w, binary.LittleEndian, f.Position)
			binary.Write(w, binary.LittleEndian, f.AltsObserved)
			if err := writeHashes(w, f.Values); err != nil {
				return err
			}
		}
	case BridgeV2:
		if err := wire.WriteVarInt(w, 0, uint64(len(b.Tracking))); err != nil {
			return err
		}
		for _, addr := range b.Tracking {
			w.WriteByte(addr.Level)
			binary.Write(w, binary.LittleEndian, addr.Index)
		}
		if err := wire.WriteVarInt(w, 0, uint64(len(b.Ommers))); err != nil {
			return err
		}
		for _, o := range b.Ommers {
			w.WriteByte(o.Address.Level)
			binary.Write(w, binary.LittleEndian, o.Address.Index)
			w.Write(o.Hash[:])
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBridgeVersion, b.Version)
	}

	f := b.Frontier
	binary.Write(w, binary.LittleEndian, f.Position)
	w.Write(f.Left[:])
	if f.Right == nil {
		w.WriteByte(0)
	} else {
		w.WriteByte(1)
		w.Write(f.Right[:])
	}
	return writeHashes(w, f.Ommers)
}

func writeIndexedPositions(w *bytes.Buffer, positions []IndexedPosition) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(positions))); err != nil {
		return err
	}
	for _, p := range positions {
		binary.Write(w, binary.LittleEndian, p.Position)
		binary.Write(w, binary.LittleEndian, p.BridgeIndex)
	}
	return nil
}

func writePositions(w *bytes.Buffer, positions []uint64) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(positions))); err != nil {
		return err
	}
	for _, p := range positions {
		binary.Write(w, binary.LittleEndian, p)
	}
	return nil
}

func writeHashes(w *bytes.Buffer, hashes []Hash) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(hashes))); err != nil {
		return err
	}
	for _, h := range hashes {
		w.Write(h[:])
	}
	return nil
}
