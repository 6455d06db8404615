package application

import (
	"fmt"
	"math"
	"strings"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/pkg/notetree"
)

// EmptyTreePolicy tells what to do when the wallet has no tree data.
type EmptyTreePolicy int

const (
	// EmptyTreeSkip leaves every position unknown.
	EmptyTreeSkip EmptyTreePolicy = iota
	// EmptyTreePlaceholder assigns placeholder positions.
	EmptyTreePlaceholder
)

// ParseEmptyTreePolicy ...
func ParseEmptyTreePolicy(s string) (EmptyTreePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return EmptyTreeSkip, nil
	case "placeholder":
		return EmptyTreePlaceholder, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEmptyTreePolicy, s)
	}
}

func (p EmptyTreePolicy) String() string {
	if p == EmptyTreePlaceholder {
		return "placeholder"
	}
	return "skip"
}

// PositionMap maps a note commitment to its position in the tree.
type PositionMap map[[32]byte]domain.Position

// PositionOutcome is the result of a position reconstruction.
type PositionOutcome struct {
	Source    domain.PositionSource
	Positions PositionMap
	// PlaceholderUsed is set whenever Positions are synthetic.
	PlaceholderUsed bool
	// ParseError is the reason the tree data was discarded, if any.
	ParseError error
	// Updated is the number of outputs and actions that got a position
	// once merged.
	Updated int
}

// ReconstructPositions builds the commitment position map of txs from the
// serialized tree. It never fails: unusable tree data falls back to
// placeholder positions.
func ReconstructPositions(
	tree []byte, txs []*domain.Transaction, policy EmptyTreePolicy,
) PositionOutcome {
	if len(tree) == 0 {
		if policy == EmptyTreePlaceholder {
			return placeholderOutcome(txs, nil)
		}
		return PositionOutcome{
			Source: domain.PositionsSkipped, Positions: PositionMap{},
		}
	}

	state, err := notetree.Parse(tree)
	if err != nil {
		return placeholderOutcome(txs, err)
	}

	positions := positionsFromState(state, txs)
	if len(positions) == 0 {
		return placeholderOutcome(txs, nil)
	}
	return PositionOutcome{Source: domain.PositionsParsed, Positions: positions}
}

// AssignPlaceholderPositions numbers the distinct commitments of txs from
// 1 in first seen order, walking transactions in order and, within each,
// Orchard actions before Sapling outputs.
func AssignPlaceholderPositions(txs []*domain.Transaction) PositionMap {
	positions := PositionMap{}
	next := domain.Position(1)
	for _, tx := range txs {
		for _, cm := range tx.Commitments() {
			if _, ok := positions[cm]; ok {
				continue
			}
			positions[cm] = next
			next++
		}
	}
	return positions
}

// MergePositions sets the position of every output and action whose
// commitment is in positions and returns how many were set. Others are
// left untouched.
func MergePositions(positions PositionMap, txs []*domain.Transaction) int {
	if len(positions) == 0 {
		return 0
	}
	updated := 0
	for _, tx := range txs {
		for i := range tx.OrchardActions {
			if p, ok := positions[tx.OrchardActions[i].Commitment]; ok {
				tx.OrchardActions[i].Position = p
				updated++
			}
		}
		for i := range tx.SaplingOutputs {
			if p, ok := positions[tx.SaplingOutputs[i].Commitment]; ok {
				tx.SaplingOutputs[i].Position = p
				updated++
			}
		}
	}
	return updated
}

func placeholderOutcome(txs []*domain.Transaction, parseErr error) PositionOutcome {
	return PositionOutcome{
		Source:          domain.PositionsPlaceholder,
		Positions:       AssignPlaceholderPositions(txs),
		PlaceholderUsed: true,
		ParseError:      parseErr,
	}
}

// positionsFromState maps the marked leaves to positions, then resolves the
// per transaction note positions against the orchard actions of txs.
// Leaf indexes are 0-based, positions 1-based.
func positionsFromState(state *notetree.NoteState, txs []*domain.Transaction) PositionMap {
	positions := PositionMap{}

	for _, leaf := range state.Leaves() {
		if p, ok := leafPosition(leaf.Position); ok {
			positions[leaf.Commitment] = p
		}
	}

	byID := make(map[domain.TxID]*domain.Transaction, len(txs))
	for _, tx := range txs {
		byID[tx.TxID] = tx
	}
	for _, txPositions := range state.TxPositions {
		tx, ok := byID[txPositions.TxID]
		if !ok {
			continue
		}
		for _, np := range txPositions.Positions {
			if int(np.ActionIndex) >= len(tx.OrchardActions) {
				continue
			}
			cm := tx.OrchardActions[np.ActionIndex].Commitment
			if _, ok := positions[cm]; ok {
				continue
			}
			if p, ok := leafPosition(np.Position); ok {
				positions[cm] = p
			}
		}
	}

	return positions
}

func leafPosition(index uint64) (domain.Position, bool) {
	if index >= math.MaxUint32 {
		return domain.PositionUnknown, false
	}
	return domain.Position(index + 1), true
}
