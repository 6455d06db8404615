package application

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
)

// ConvertTransaction builds the export form of a wallet transaction.
// Sapling outputs carry the most recent witness the wallet held for them;
// positions are left unknown.
func ConvertTransaction(tx *legacy.WalletTx) *domain.Transaction {
	out := &domain.Transaction{
		TxID:         tx.TxID,
		BlockHash:    tx.BlockHash,
		TimeReceived: tx.TimeReceived,
		Inputs:       copyInputs(tx.Inputs),
		Outputs:      copyOutputs(tx.Outputs),
		Raw:          copyBytes(tx.Raw),
	}

	out.SaplingSpends = append(out.SaplingSpends, tx.SaplingSpends...)

	out.SaplingOutputs = make([]domain.SaplingOutput, 0, len(tx.SaplingOutputs))
	for i, o := range tx.SaplingOutputs {
		o.Position = domain.PositionUnknown
		o.Witness = nil
		if nd, ok := tx.NoteData(uint32(i)); ok && len(nd.Witnesses) > 0 {
			// zcashd keeps the most recent witness at the front.
			o.Witness = nd.Witnesses[0]
		}
		out.SaplingOutputs = append(out.SaplingOutputs, o)
	}

	out.OrchardActions = make([]domain.OrchardAction, 0, len(tx.OrchardActions))
	for _, a := range tx.OrchardActions {
		a.Position = domain.PositionUnknown
		out.OrchardActions = append(out.OrchardActions, a)
	}

	out.SproutJoinSplits = append(out.SproutJoinSplits, tx.JoinSplits...)
	return out
}

// ConvertTransactions converts every wallet transaction, keeping the
// wallet order.
func ConvertTransactions(txs []*legacy.WalletTx) []*domain.Transaction {
	converted := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		converted = append(converted, ConvertTransaction(tx))
	}
	return converted
}

func copyInputs(ins []*wire.TxIn) []*wire.TxIn {
	copied := make([]*wire.TxIn, 0, len(ins))
	for _, in := range ins {
		c := *in
		c.SignatureScript = copyBytes(in.SignatureScript)
		if in.Witness != nil {
			c.Witness = make(wire.TxWitness, 0, len(in.Witness))
			for _, item := range in.Witness {
				c.Witness = append(c.Witness, copyBytes(item))
			}
		}
		copied = append(copied, &c)
	}
	return copied
}

func copyOutputs(outs []*wire.TxOut) []*wire.TxOut {
	copied := make([]*wire.TxOut, 0, len(outs))
	for _, out := range outs {
		copied = append(copied, wire.NewTxOut(out.Value, copyBytes(out.PkScript)))
	}
	return copied
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
