package application_test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"github.com/zewif/zcashd-migrate/internal/core/application"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

func TestExtractTransparentChange(t *testing.T) {
	t.Parallel()

	b := newWalletBuilder(t)
	changePub, changeAddr := b.key(1, "m/44'/133'/0'/1/4", seedFp)
	_, ourAddr := b.key(2, "m/44'/133'/0'/0/0", seedFp)
	external := p2pkhAddressForHash(t, 0x42)

	tx := &legacy.WalletTx{
		TxID:   txID("change"),
		FromMe: true,
		Inputs: []*wire.TxIn{spendInput(t, "prev", changePub)},
		Outputs: []*wire.TxOut{
			p2pkhOutput(t, external, 1000),
			p2pkhOutput(t, ourAddr, 500),
		},
	}
	b.tx(tx)

	facts, err := application.ExtractTransactionFacts(b.wallet(), tx)
	require.NoError(t, err)

	txid := tx.TxID.String()
	for _, item := range []string{
		"input:" + txID("prev").String() + ":0",
		changeAddr,
		"transparent_spend:" + changeAddr,
		"our_key:" + changeAddr,
		"change_key:" + changeAddr,
		external,
		"transparent_output:" + external,
		"transparent_output:" + ourAddr,
		"change_output:" + ourAddr,
		"output:" + txid + ":0",
		"output:" + txid + ":1",
		"transaction_type:change",
		"tx:" + txid,
	} {
		require.True(t, facts.Has(item), item)
	}
	require.False(t, facts.Has("change_output:"+external))
	require.False(t, facts.HasTag(application.TagPossibleSource))
	require.Equal(t, application.TxTypeChange, facts.TransactionType())
}

func TestExtractClassification(t *testing.T) {
	t.Parallel()

	b := newWalletBuilder(t)
	_, named := b.key(1, "m/44'/133'/0'/0/0", seedFp)
	b.w.AddressNames[named] = "savings"
	external := p2pkhAddressForHash(t, 0x42)

	tests := []struct {
		name         string
		fromMe       bool
		outputs      []string
		want         application.TransactionType
		possibleFrom bool
	}{
		{"receive", false, []string{named}, application.TxTypeReceive, false},
		{"named output is not change", true, []string{named}, application.TxTypeSend, true},
		{"send", true, []string{external}, application.TxTypeSend, true},
	}
	for i, tt := range tests {
		tt := tt
		tx := &legacy.WalletTx{TxID: txID(fmt.Sprintf("classify%d", i)), FromMe: tt.fromMe}
		for _, addr := range tt.outputs {
			tx.Outputs = append(tx.Outputs, p2pkhOutput(t, addr, 1))
		}

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			facts, err := application.ExtractTransactionFacts(b.wallet(), tx)
			require.NoError(t, err)
			require.Equal(t, tt.want, facts.TransactionType())
			require.Len(t, facts.Tagged(application.TagTransactionType), 1)
			require.Equal(t, tt.possibleFrom, facts.Has("possible_source:"+named))
		})
	}
}

func TestExtractP2SHSpend(t *testing.T) {
	t.Parallel()

	b := newWalletBuilder(t)
	redeemScript := append(bytes.Repeat([]byte{txscript.OP_1}, 40), txscript.OP_CHECKSIG)
	sigScript, err := txscript.NewScriptBuilder().
		AddData(bytes.Repeat([]byte{0x30}, 71)).
		AddData(redeemScript).
		Script()
	require.NoError(t, err)

	prev := txID("prev")
	tx := &legacy.WalletTx{
		TxID:   txID("p2sh"),
		Inputs: []*wire.TxIn{wire.NewTxIn(wire.NewOutPoint(&prev, 2), sigScript, nil)},
	}
	b.tx(tx)

	facts, err := application.ExtractTransactionFacts(b.wallet(), tx)
	require.NoError(t, err)

	want, err := zaddr.EncodeP2SH(zaddr.MainNet, btcutil.Hash160(redeemScript))
	require.NoError(t, err)
	require.Equal(t, []string{want}, facts.Tagged(application.TagTransparentScriptSpend))
	require.Empty(t, facts.Tagged(application.TagTransparentSpend))
}

func TestExtractMultisigSpend(t *testing.T) {
	t.Parallel()

	// The last redeem key has 0x02 as third byte, so the script tail reads
	// like a compressed key although the final push is the redeem script.
	pk1 := append([]byte{0x02}, bytes.Repeat([]byte{0x11}, 32)...)
	pk2 := append([]byte{0x03, 0x22, 0x02}, bytes.Repeat([]byte{0x33}, 30)...)
	redeemScript, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(pk1).
		AddData(pk2).
		AddOp(txscript.OP_2).
		AddOp(txscript.OP_CHECKMULTISIG).
		Script()
	require.NoError(t, err)

	tail := redeemScript[len(redeemScript)-33:]
	require.Equal(t, byte(0x02), tail[0])

	sigScript, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(bytes.Repeat([]byte{0x30}, 71)).
		AddData(redeemScript).
		Script()
	require.NoError(t, err)

	b := newWalletBuilder(t)
	prev := txID("prev")
	tx := &legacy.WalletTx{
		TxID:   txID("multisig"),
		Inputs: []*wire.TxIn{wire.NewTxIn(wire.NewOutPoint(&prev, 0), sigScript, nil)},
	}
	b.tx(tx)

	facts, err := application.ExtractTransactionFacts(b.wallet(), tx)
	require.NoError(t, err)

	want, err := zaddr.EncodeP2SH(zaddr.MainNet, btcutil.Hash160(redeemScript))
	require.NoError(t, err)
	require.Equal(t, []string{want}, facts.Tagged(application.TagTransparentScriptSpend))
	require.Empty(t, facts.Tagged(application.TagTransparentSpend))
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	b := newWalletBuilder(t)
	prev := txID("prev")

	malformed := &legacy.WalletTx{
		TxID: txID("malformed"),
		// Pushes 5 bytes but carries only one.
		Inputs: []*wire.TxIn{wire.NewTxIn(wire.NewOutPoint(&prev, 0), []byte{0x05, 0x01}, nil)},
	}
	badRecipient := &legacy.WalletTx{TxID: txID("bad recipient"), FromMe: true}
	b.tx(malformed).tx(badRecipient)
	b.w.SendRecipients[badRecipient.TxID] = []legacy.RecipientMapping{{
		Recipient: legacy.RecipientAddress{Kind: legacy.RecipientSapling, Data: []byte{1, 2, 3}},
	}}

	_, err := application.ExtractTransactionFacts(b.wallet(), malformed)
	require.ErrorIs(t, err, application.ErrMalformedScript)

	_, err = application.ExtractTransactionFacts(b.wallet(), badRecipient)
	require.ErrorIs(t, err, application.ErrInvalidRecipient)
}

func TestExtractSapling(t *testing.T) {
	t.Parallel()

	b := newWalletBuilder(t)
	addr := b.sapling(1, "c0ffee", true)
	ivk, _ := hex.DecodeString("c0ffee")
	nullifier := [32]byte{0x4e}

	receive := &legacy.WalletTx{
		TxID:           txID("sapling receive"),
		SaplingOutputs: []domain.SaplingOutput{{Commitment: commitment(1)}, {Commitment: commitment(2)}},
	}
	receive.SaplingNoteData = map[legacy.SaplingOutPoint]*legacy.SaplingNoteData{
		{TxID: receive.TxID, Index: 1}: {IncomingViewingKey: ivk, Nullifier: &nullifier},
	}
	spend := &legacy.WalletTx{
		TxID:          txID("sapling spend"),
		FromMe:        true,
		SaplingSpends: []domain.SaplingSpend{{Nullifier: nullifier}},
	}
	b.tx(receive).tx(spend)
	extractor := application.NewExtractor(b.wallet())

	facts, err := extractor.Extract(receive)
	require.NoError(t, err)
	cm2 := commitment(2)
	for _, item := range []string{
		"sapling_commitment:" + hex.EncodeToString(cm2[:]),
		"sapling_receive:" + addr,
		addr,
		fmt.Sprintf("sapling_note:%s:1", receive.TxID),
		fmt.Sprintf("sapling_spent_note:%s:1", receive.TxID),
	} {
		require.True(t, facts.Has(item), item)
	}
	require.Equal(t, application.TxTypeReceive, facts.TransactionType())

	facts, err = extractor.Extract(spend)
	require.NoError(t, err)
	require.True(t, facts.Has("sapling_nullifier:"+hex.EncodeToString(nullifier[:])))
	require.Equal(t, []string{addr}, facts.Tagged(application.TagSaplingSpend))
	require.Equal(t, application.TxTypeSend, facts.TransactionType())
	require.False(t, facts.HasTag(application.TagPossibleSource))
}

func TestExtractSproutAndOrchard(t *testing.T) {
	t.Parallel()

	b := newWalletBuilder(t)
	receiver := bytes.Repeat([]byte{0x0a}, 43)
	ua, err := zaddr.EncodeUnified(zaddr.MainNet, []zaddr.Receiver{
		{Typecode: zaddr.TypecodeOrchard, Data: receiver},
		{Typecode: zaddr.TypecodeSapling, Data: bytes.Repeat([]byte{0x0b}, 43)},
	})
	require.NoError(t, err)
	single, err := zaddr.EncodeUnified(zaddr.MainNet, []zaddr.Receiver{
		{Typecode: zaddr.TypecodeOrchard, Data: receiver},
	})
	require.NoError(t, err)

	tx := &legacy.WalletTx{
		TxID:   txID("orchard"),
		FromMe: true,
		JoinSplits: []domain.JoinSplit{{
			Nullifiers:  [2][32]byte{{0x11}, {0x12}},
			Commitments: [2][32]byte{{0x21}, {0x22}},
		}},
		OrchardActions: []domain.OrchardAction{
			{Nullifier: [32]byte{0x31}, Commitment: commitment(3)},
			{Nullifier: [32]byte{0x32}, Commitment: commitment(4)},
		},
		OrchardMeta: &legacy.OrchardTxMeta{
			ReceivingKeys:          map[uint32][]byte{1: {0xdd}},
			ActionsSpendingMyNotes: []uint32{0},
		},
	}
	b.tx(tx)
	b.w.SendRecipients[tx.TxID] = []legacy.RecipientMapping{{
		UnifiedAddress: ua,
		Recipient:      legacy.RecipientAddress{Kind: legacy.RecipientOrchard, Data: receiver},
	}}

	facts, err := application.ExtractTransactionFacts(b.wallet(), tx)
	require.NoError(t, err)

	sproutNf, sproutCm := [32]byte{0x12}, [32]byte{0x21}
	orchardNf, orchardCm := [32]byte{0x31}, commitment(4)
	txid := tx.TxID.String()
	for _, item := range []string{
		ua,
		"ua:" + ua,
		single,
		"orchard_addr:" + single,
		"sprout_nullifier:" + hex.EncodeToString(sproutNf[:]),
		"sprout_commitment:" + hex.EncodeToString(sproutCm[:]),
		"orchard_nullifier:" + hex.EncodeToString(orchardNf[:]),
		"orchard_commitment:" + hex.EncodeToString(orchardCm[:]),
		"orchard_action_idx:" + txid + ":0",
		"orchard_action_idx:" + txid + ":1",
		"orchard_action:" + txid + ":1",
		"orchard_spend_action:" + txid + ":0",
		"orchard_recipient:" + single,
		"orchard_recipient:" + ua,
		"transaction_type:send",
	} {
		require.True(t, facts.Has(item), item)
	}
	require.False(t, facts.Has("orchard_action:"+txid+":0"))
	// Orchard actions are spend evidence.
	require.False(t, facts.HasTag(application.TagPossibleSource))
	require.Equal(t, "tx:"+txid, facts.Items()[facts.Len()-1])
}
