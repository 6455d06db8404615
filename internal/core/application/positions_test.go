package application_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zewif/zcashd-migrate/internal/core/application"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/pkg/notetree"
)

// twoOrchardTxs returns two transactions with three distinct orchard
// commitments in total.
func twoOrchardTxs() []*domain.Transaction {
	return []*domain.Transaction{
		{
			TxID: txID("first"),
			OrchardActions: []domain.OrchardAction{
				{Commitment: commitment(1)}, {Commitment: commitment(2)},
			},
		},
		{
			TxID:           txID("second"),
			OrchardActions: []domain.OrchardAction{{Commitment: commitment(3)}},
		},
	}
}

func TestReconstructPositionsEmptyTree(t *testing.T) {
	t.Parallel()

	t.Run("placeholder policy", func(t *testing.T) {
		t.Parallel()

		txs := twoOrchardTxs()
		outcome := application.ReconstructPositions(nil, txs, application.EmptyTreePlaceholder)

		require.Equal(t, domain.PositionsPlaceholder, outcome.Source)
		require.True(t, outcome.PlaceholderUsed)
		require.NoError(t, outcome.ParseError)
		require.Equal(t, application.PositionMap{
			commitment(1): 1, commitment(2): 2, commitment(3): 3,
		}, outcome.Positions)

		require.Equal(t, 3, application.MergePositions(outcome.Positions, txs))
		require.Equal(t, domain.Position(1), txs[0].OrchardActions[0].Position)
		require.Equal(t, domain.Position(2), txs[0].OrchardActions[1].Position)
		require.Equal(t, domain.Position(3), txs[1].OrchardActions[0].Position)
	})

	t.Run("skip policy", func(t *testing.T) {
		t.Parallel()

		txs := twoOrchardTxs()
		outcome := application.ReconstructPositions([]byte{}, txs, application.EmptyTreeSkip)

		require.Equal(t, domain.PositionsSkipped, outcome.Source)
		require.False(t, outcome.PlaceholderUsed)
		require.Empty(t, outcome.Positions)
		require.Zero(t, application.MergePositions(outcome.Positions, txs))
		for _, tx := range txs {
			for _, a := range tx.OrchardActions {
				require.Equal(t, domain.PositionUnknown, a.Position)
			}
		}
	})
}

// markedTree builds a tree where each leaf is marked and closes a bridge.
func markedTree(leaves ...notetree.Leaf) *notetree.BridgeTree {
	tree := &notetree.BridgeTree{Version: notetree.TreeV3}
	for i, leaf := range leaves {
		tree.PriorBridges = append(tree.PriorBridges, notetree.Bridge{
			Version:  notetree.BridgeV2,
			Frontier: notetree.Frontier{Position: leaf.Position, Left: leaf.Commitment},
		})
		tree.Saved = append(tree.Saved, notetree.IndexedPosition{
			Position: leaf.Position, BridgeIndex: uint64(i),
		})
	}
	return tree
}

func TestReconstructPositionsParsed(t *testing.T) {
	t.Parallel()

	txs := twoOrchardTxs()
	txs[1].SaplingOutputs = []domain.SaplingOutput{{Commitment: commitment(9)}}

	state := &notetree.NoteState{
		Tree: markedTree(
			notetree.Leaf{Position: 41, Commitment: commitment(1)},
			notetree.Leaf{Position: 0, Commitment: commitment(9)},
		),
		TxPositions: []notetree.TxNotePositions{
			{
				TxID: txs[0].TxID,
				Positions: []notetree.NotePosition{
					{ActionIndex: 1, Position: 42},
					// Already known from the leaves.
					{ActionIndex: 0, Position: 7},
					// Out of range.
					{ActionIndex: 5, Position: 8},
				},
			},
			{TxID: txID("unknown"), Positions: []notetree.NotePosition{{Position: 3}}},
		},
	}
	tree, err := state.Serialize()
	require.NoError(t, err)

	outcome := application.ReconstructPositions(tree, txs, application.EmptyTreeSkip)
	require.Equal(t, domain.PositionsParsed, outcome.Source)
	require.False(t, outcome.PlaceholderUsed)
	require.Equal(t, application.PositionMap{
		commitment(1): 42, commitment(2): 43, commitment(9): 1,
	}, outcome.Positions)

	require.Equal(t, 3, application.MergePositions(outcome.Positions, txs))
	require.Equal(t, domain.PositionUnknown, txs[1].OrchardActions[0].Position)
	require.Equal(t, domain.Position(1), txs[1].SaplingOutputs[0].Position)
}

func TestReconstructPositionsFallsBackToPlaceholders(t *testing.T) {
	t.Parallel()

	noCommitments, err := (&notetree.NoteState{}).Serialize()
	require.NoError(t, err)
	trailing := append(append([]byte{}, noCommitments...), 0xff)

	tests := []struct {
		name     string
		tree     []byte
		parseErr error
	}{
		{"unsupported version", []byte{0x02, 0x00, 0x03, 0x00, 0x00}, notetree.ErrUnsupportedVersion},
		{"unsupported tree version", []byte{0x01, 0x00, 0x07}, notetree.ErrUnsupportedTreeVersion},
		{"trailing bytes", trailing, notetree.ErrTrailingBytes},
		{"truncated", []byte{0x01}, nil},
		{"no commitments", noCommitments, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			txs := twoOrchardTxs()
			outcome := application.ReconstructPositions(tt.tree, txs, application.EmptyTreeSkip)

			require.Equal(t, domain.PositionsPlaceholder, outcome.Source)
			require.True(t, outcome.PlaceholderUsed)
			require.Len(t, outcome.Positions, 3)
			if tt.parseErr != nil {
				require.ErrorIs(t, outcome.ParseError, tt.parseErr)
			}
			if tt.name == "no commitments" {
				require.NoError(t, outcome.ParseError)
			} else {
				require.Error(t, outcome.ParseError)
			}
		})
	}
}

func TestAssignPlaceholderPositionsIsMonotonic(t *testing.T) {
	t.Parallel()

	txs := []*domain.Transaction{
		{
			SaplingOutputs: []domain.SaplingOutput{{Commitment: commitment(5)}},
			OrchardActions: []domain.OrchardAction{{Commitment: commitment(6)}},
		},
		{
			OrchardActions: []domain.OrchardAction{
				{Commitment: commitment(5)}, {Commitment: commitment(7)},
			},
		},
		{
			SaplingOutputs: []domain.SaplingOutput{
				{Commitment: commitment(7)}, {Commitment: commitment(8)},
			},
		},
	}

	positions := application.AssignPlaceholderPositions(txs)
	require.Equal(t, application.PositionMap{
		commitment(6): 1, commitment(5): 2, commitment(7): 3, commitment(8): 4,
	}, positions)

	seen := make(map[domain.Position]bool)
	for _, p := range positions {
		require.False(t, seen[p])
		require.GreaterOrEqual(t, p, domain.Position(1))
		require.LessOrEqual(t, p, domain.Position(len(positions)))
		seen[p] = true
	}
}

func TestMergeEmptyPositionsIsNoop(t *testing.T) {
	t.Parallel()

	txs := twoOrchardTxs()
	require.Zero(t, application.MergePositions(application.PositionMap{}, txs))
	require.Zero(t, application.MergePositions(nil, txs))
	require.Equal(t, twoOrchardTxs(), txs)
}

func TestParseEmptyTreePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    application.EmptyTreePolicy
		wantErr bool
	}{
		{"", application.EmptyTreeSkip, false},
		{"skip", application.EmptyTreeSkip, false},
		{" Placeholder ", application.EmptyTreePlaceholder, false},
		{"guess", 0, true},
	}
	for _, tt := range tests {
		got, err := application.ParseEmptyTreePolicy(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, application.ErrUnknownEmptyTreePolicy)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}
