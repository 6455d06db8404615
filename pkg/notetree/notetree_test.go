package notetree_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
	"github.com/zewif/zcashd-migrate/pkg/notetree"
)

func hash(b byte) notetree.Hash {
	return notetree.Hash{b}
}

func u64(v uint64) *uint64 {
	return &v
}

// testTree marks leaf 40 and has leaf 41 as its tip.
func testTree(version uint8) *notetree.BridgeTree {
	right := hash(2)
	tree := &notetree.BridgeTree{
		Version: version,
		PriorBridges: []notetree.Bridge{
			{
				Version: notetree.BridgeV2,
				Frontier: notetree.Frontier{
					Position: 40, Left: hash(1), Ommers: []notetree.Hash{hash(0xa0)},
				},
			},
		},
		CurrentBridge: &notetree.Bridge{
			Version:       notetree.BridgeV2,
			PriorPosition: u64(40),
			Tracking:      []notetree.Address{{Level: 0, Index: 41}},
			Ommers: []notetree.Ommer{
				{Address: notetree.Address{Level: 0, Index: 41}, Hash: hash(2)},
			},
			Frontier: notetree.Frontier{
				Position: 41, Left: hash(1), Right: &right, Ommers: []notetree.Hash{hash(0xa0)},
			},
		},
		Saved:          []notetree.IndexedPosition{{Position: 40, BridgeIndex: 0}},
		MaxCheckpoints: 100,
	}

	switch version {
	case notetree.TreeV1:
		tree.Checkpoints = []notetree.Checkpoint{
			{BridgesLen: 1, IsWitnessed: true, ForgottenLeaves: []notetree.IndexedPosition{{Position: 3, BridgeIndex: 0}}},
		}
	case notetree.TreeV2:
		tree.Checkpoints = []notetree.Checkpoint{
			{BridgesLen: 1, Marked: []uint64{40}},
		}
	default:
		tree.Checkpoints = []notetree.Checkpoint{
			{ID: 2_000_000, BridgesLen: 1, Marked: []uint64{40}, Forgotten: []uint64{3}},
		}
	}
	return tree
}

func testState(version uint8) *notetree.NoteState {
	checkpoint := uint32(2_000_000)
	return &notetree.NoteState{
		LastCheckpoint: &checkpoint,
		Tree:           testTree(version),
		TxPositions: []notetree.TxNotePositions{
			{
				TxID:   chainhash.Hash{0xaa},
				Height: 1_999_990,
				Positions: []notetree.NotePosition{
					{ActionIndex: 0, Position: 40},
					{ActionIndex: 1, Position: 41},
				},
			},
		},
	}
}

func TestParseSerialized(t *testing.T) {
	t.Parallel()

	for _, version := range []uint8{notetree.TreeV1, notetree.TreeV2, notetree.TreeV3} {
		state := testState(version)
		data, err := state.Serialize()
		require.NoError(t, err)

		parsed, err := notetree.Parse(data)
		require.NoError(t, err)
		require.Equal(t, state, parsed, "tree v%d", version)
	}

	empty := &notetree.NoteState{}
	data, err := empty.Serialize()
	require.NoError(t, err)

	parsed, err := notetree.Parse(data)
	require.NoError(t, err)
	require.Nil(t, parsed.LastCheckpoint)
	require.Equal(t, uint8(notetree.TreeV3), parsed.Tree.Version)
	require.Zero(t, parsed.Tree.Size())
	require.Empty(t, parsed.Leaves())
	require.Empty(t, parsed.TxPositions)
}

// TestParseWalletLayout decodes a note state assembled field by field in
// the layout zcashd writes.
func TestParseWalletLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	le := func(v interface{}) { require.NoError(t, binary.Write(&buf, binary.LittleEndian, v)) }
	cm1, cm2 := hash(1), hash(2)

	buf.WriteByte(1)      // note state version
	buf.WriteByte(1)      // last checkpoint present
	le(uint32(2_100_000)) // checkpoint height
	buf.WriteByte(2)      // tree version
	buf.WriteByte(1)      // one prior bridge
	buf.WriteByte(2)      //   bridge version
	buf.WriteByte(0)      //   no prior position
	buf.WriteByte(0)      //   no tracking
	buf.WriteByte(0)      //   no ommers
	le(uint64(6))         //   frontier position
	buf.Write(cm1[:])     //   left
	buf.WriteByte(0)      //   no right
	buf.WriteByte(0)      //   no frontier ommers
	buf.WriteByte(1)      // current bridge present
	buf.WriteByte(1)      //   bridge version 1
	buf.WriteByte(1)      //   prior position present
	le(uint64(6))         //   prior position
	buf.WriteByte(1)      //   one auth fragment
	le(uint64(6))         //     marked position
	le(uint64(6))         //     fragment position
	le(uint64(1))         //     alts observed
	buf.WriteByte(1)      //     one value
	buf.Write(cm2[:])     //     value
	le(uint64(7))         //   frontier position
	buf.Write(cm1[:])     //   left
	buf.WriteByte(1)      //   right present
	buf.Write(cm2[:])     //   right
	buf.WriteByte(0)      //   no frontier ommers
	buf.WriteByte(1)      // one saved leaf
	le(uint64(6))         //   position
	le(uint64(0))         //   bridge index
	buf.WriteByte(1)      // one checkpoint
	le(uint64(1))         //   bridges len
	buf.WriteByte(1)      //   one marked
	le(uint64(6))         //     position
	buf.WriteByte(0)      //   none forgotten
	le(uint64(100))       // max checkpoints
	buf.WriteByte(1)      // one wallet tx
	buf.Write(bytes.Repeat([]byte{0xbb}, 32))
	le(uint32(2_099_999)) //   tx height
	buf.WriteByte(1)      //   one note position
	le(uint32(1))         //     action index
	le(uint64(7))         //     position

	state, err := notetree.Parse(buf.Bytes())
	require.NoError(t, err)

	require.Equal(t, uint32(2_100_000), *state.LastCheckpoint)
	require.Equal(t, uint64(8), state.Tree.Size())
	require.Equal(t, []notetree.Leaf{
		{Position: 6, Commitment: cm1},
		{Position: 7, Commitment: cm2},
	}, state.Leaves())
	require.Equal(t, []notetree.AuthFragment{
		{Marked: 6, Position: 6, AltsObserved: 1, Values: []notetree.Hash{cm2}},
	}, state.Tree.CurrentBridge.AuthFragments)

	require.Len(t, state.TxPositions, 1)
	require.Equal(t, uint32(2_099_999), state.TxPositions[0].Height)
	require.Equal(t, []notetree.NotePosition{{ActionIndex: 1, Position: 7}}, state.TxPositions[0].Positions)

	// Writing back yields the same bytes.
	data, err := state.Serialize()
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), data)
}

func TestTreeLeaves(t *testing.T) {
	t.Parallel()

	tree := testTree(notetree.TreeV3)
	require.Equal(t, []notetree.Leaf{
		{Position: 40, Commitment: hash(1)},
		{Position: 41, Commitment: hash(2)},
	}, tree.Leaves())
	require.Equal(t, uint64(42), tree.Size())

	// A saved entry pointing at a bridge that does not end at its
	// position is ignored.
	tree.Saved = append(tree.Saved, notetree.IndexedPosition{Position: 12, BridgeIndex: 0})
	tree.Saved = append(tree.Saved, notetree.IndexedPosition{Position: 12, BridgeIndex: 9})
	require.Len(t, tree.Leaves(), 2)

	// A marked tip is not listed twice.
	tree.Saved = []notetree.IndexedPosition{{Position: 41, BridgeIndex: 1}}
	require.Equal(t, []notetree.Leaf{{Position: 41, Commitment: hash(2)}}, tree.Leaves())

	var missing *notetree.BridgeTree
	require.Empty(t, missing.Leaves())
	require.Zero(t, missing.Size())
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	valid, err := testState(notetree.TreeV3).Serialize()
	require.NoError(t, err)

	badBridge := testState(notetree.TreeV2)
	badBridge.Tree.PriorBridges[0].Version = 7
	_, err = badBridge.Serialize()
	require.ErrorIs(t, err, notetree.ErrUnsupportedBridgeVersion)

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, notetree.ErrEmpty},
		{"unknown version", []byte{2, 0, 3, 0, 0, 0, 0}, notetree.ErrUnsupportedVersion},
		{"unknown tree version", []byte{1, 0, 9, 0, 0, 0, 0}, notetree.ErrUnsupportedTreeVersion},
		{"unknown bridge version", []byte{1, 0, 2, 1, 5, 0}, notetree.ErrUnsupportedBridgeVersion},
		{"trailing bytes", append(append([]byte{}, valid...), 0xff), notetree.ErrTrailingBytes},
		{"oversized bridge count", []byte{1, 0, 3, 0xfd, 0xff, 0xff}, notetree.ErrCountTooLarge},
		{"truncated", valid[:len(valid)-3], nil},
		{"bad checkpoint flag", []byte{1, 7, 0, 0}, notetree.ErrInvalidOptionalFlag},
		{"bad current bridge flag", []byte{1, 0, 3, 0, 4}, notetree.ErrInvalidOptionalFlag},
		{"garbage", []byte{0xde, 0xad, 0xbe, 0xef}, notetree.ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		_, err := notetree.Parse(tt.data)
		require.Error(t, err, tt.name)
		if tt.err != nil {
			require.ErrorIs(t, err, tt.err, tt.name)
		}
	}
}
