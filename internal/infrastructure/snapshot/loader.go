// Package snapshot reads decoded zcashd wallets from their JSON dump.
package snapshot

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
	"github.com/zewif/zcashd-migrate/internal/core/ports"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

type fileLoader struct {
	path string
	net  zaddr.Network
}

// NewFileLoader returns a loader reading the snapshot at path. net is used
// when the snapshot does not name its network.
func NewFileLoader(path string, net zaddr.Network) ports.SnapshotLoader {
	return &fileLoader{path, net}
}

func (l *fileLoader) Load(ctx context.Context) (*legacy.Wallet, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, l.net)
}

// Decode reads a JSON snapshot. Records that contradict each other, like
// two keys with the same public key, are reported as structural errors.
func Decode(r io.Reader, defaultNet zaddr.Network) (*legacy.Wallet, error) {
	var dump walletJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dump); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	net := defaultNet
	if dump.Network != "" {
		var err error
		if net, err = zaddr.ParseNetwork(dump.Network); err != nil {
			return nil, err
		}
	}
	w := legacy.NewWallet(net)

	for _, e := range dump.AddressBook {
		w.AddressNames[e.Address] = e.Name
		if e.Purpose != "" {
			w.AddressPurposes[e.Address] = e.Purpose
		}
	}

	for _, k := range dump.Keys {
		pubkey := hex.EncodeToString(k.PubKey)
		if _, ok := w.Keys[pubkey]; ok {
			return nil, duplicate("key", pubkey)
		}
		key := &legacy.Key{PubKey: k.PubKey}
		if m := k.Metadata; m != nil {
			key.Metadata = &legacy.KeyMetadata{
				Version:         m.Version,
				CreateTime:      m.CreateTime,
				HDKeyPath:       m.HDKeyPath,
				SeedFingerprint: m.SeedFingerprint,
			}
		}
		w.Keys[pubkey] = key
	}

	for _, k := range dump.SaplingKeys {
		ivk := hex.EncodeToString(k.IncomingViewingKey)
		if _, ok := w.SaplingKeys[ivk]; ok {
			return nil, duplicate("sapzkey", ivk)
		}
		w.SaplingKeys[ivk] = k.SpendingKey
	}
	for _, a := range dump.SaplingAddresses {
		if _, ok := w.SaplingAddresses[a.Address]; ok {
			return nil, duplicate("sapzaddr", a.Address)
		}
		w.SaplingAddresses[a.Address] = hex.EncodeToString(a.IncomingViewingKey)
	}

	if err := decodeUnified(w, dump); err != nil {
		return nil, err
	}

	for _, t := range dump.Transactions {
		tx, err := decodeTransaction(t)
		if err != nil {
			return nil, fmt.Errorf("tx %s: %w", t.TxID, err)
		}
		if err := w.Transactions.Add(tx); err != nil {
			return nil, err
		}
	}

	for _, rcpt := range dump.Recipients {
		txid, err := chainhash.NewHashFromStr(rcpt.TxID)
		if err != nil {
			return nil, fmt.Errorf("recipient: %w", err)
		}
		kind, err := parseRecipientKind(rcpt.Kind)
		if err != nil {
			return nil, fmt.Errorf("recipient of %s: %w", rcpt.TxID, err)
		}
		w.SendRecipients[*txid] = append(w.SendRecipients[*txid], legacy.RecipientMapping{
			UnifiedAddress: rcpt.UnifiedAddress,
			Recipient:      legacy.RecipientAddress{Kind: kind, Data: rcpt.Receiver},
		})
	}

	w.OrchardNoteCommitmentTree = dump.OrchardNoteCommitmentTree
	if m := dump.Bip39Mnemonic; m != nil {
		w.Bip39Mnemonic = &legacy.Bip39Mnemonic{
			Language:        m.Language,
			Phrase:          m.Phrase,
			SeedFingerprint: m.SeedFingerprint,
		}
	}
	return w, nil
}

func decodeUnified(w *legacy.Wallet, dump walletJSON) error {
	u := w.UnifiedAccounts
	for _, a := range dump.UnifiedAccounts {
		fp := domain.AccountKey(a.UFVKFingerprint)
		if _, ok := u.AccountMetadata[fp]; ok {
			return duplicate("unifiedaccount", fp.String())
		}
		u.AccountMetadata[fp] = &legacy.UnifiedAccountMetadata{
			UFVKFingerprint: fp,
			SeedFingerprint: a.SeedFingerprint,
			CoinType:        a.CoinType,
			AccountID:       a.AccountID,
		}
		if a.UFVK != "" {
			u.FullViewingKeys[fp] = a.UFVK
		}
	}

	for _, m := range dump.UnifiedAddressMetadata {
		meta := &legacy.UnifiedAddressMetadata{
			UFVKFingerprint: domain.AccountKey(m.UFVKFingerprint),
		}
		if len(m.DiversifierIndex) != len(meta.DiversifierIndex) {
			return domain.NewStructuralError(
				"unifiedaddrmeta", meta.UFVKFingerprint.String(),
				fmt.Errorf("diversifier index must be 11 bytes, got %d", len(m.DiversifierIndex)),
			)
		}
		copy(meta.DiversifierIndex[:], m.DiversifierIndex)
		for _, name := range m.ReceiverTypes {
			t, err := parseReceiverType(name)
			if err != nil {
				return err
			}
			meta.ReceiverTypes |= domain.NewReceiverFlags(t)
		}
		u.AddressMetadata = append(u.AddressMetadata, meta)
	}
	return nil
}

func decodeTransaction(t transactionJSON) (*legacy.WalletTx, error) {
	txid, err := chainhash.NewHashFromStr(t.TxID)
	if err != nil {
		return nil, err
	}
	tx := &legacy.WalletTx{
		TxID:            *txid,
		TimeReceived:    t.TimeReceived,
		FromMe:          t.FromMe,
		SaplingNoteData: make(map[legacy.SaplingOutPoint]*legacy.SaplingNoteData),
		Raw:             t.Raw,
	}
	if t.BlockHash != "" {
		if tx.BlockHash, err = chainhash.NewHashFromStr(t.BlockHash); err != nil {
			return nil, err
		}
	}

	for _, in := range t.Inputs {
		prev, err := chainhash.NewHashFromStr(in.PrevTxID)
		if err != nil {
			return nil, err
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(prev, in.PrevIndex), in.ScriptSig, nil)
		txIn.Sequence = in.Sequence
		tx.Inputs = append(tx.Inputs, txIn)
	}
	for _, out := range t.Outputs {
		tx.Outputs = append(tx.Outputs, wire.NewTxOut(out.Value, out.ScriptPubKey))
	}

	for i, s := range t.SaplingSpends {
		tx.SaplingSpends = append(tx.SaplingSpends, domain.SaplingSpend{
			Index:           i,
			ValueCommitment: s.ValueCommitment,
			Anchor:          s.Anchor,
			Nullifier:       s.Nullifier,
			Rk:              s.Rk,
			ZkProof:         s.ZkProof,
			SpendAuthSig:    s.SpendAuthSig,
		})
	}
	for i, o := range t.SaplingOutputs {
		tx.SaplingOutputs = append(tx.SaplingOutputs, domain.SaplingOutput{
			Index:           i,
			ValueCommitment: o.ValueCommitment,
			Commitment:      o.Commitment,
			EphemeralKey:    o.EphemeralKey,
			EncCiphertext:   o.EncCiphertext,
			OutCiphertext:   o.OutCiphertext,
			ZkProof:         o.ZkProof,
		})
	}
	for _, n := range t.SaplingNotes {
		op := legacy.SaplingOutPoint{TxID: *txid, Index: n.Index}
		if _, ok := tx.SaplingNoteData[op]; ok {
			return nil, duplicate("tx", op.String())
		}
		nd := &legacy.SaplingNoteData{
			IncomingViewingKey: n.IncomingViewingKey,
			WitnessHeight:      n.WitnessHeight,
		}
		if n.Nullifier != nil {
			nf := [32]byte(*n.Nullifier)
			nd.Nullifier = &nf
		}
		for _, w := range n.Witnesses {
			nd.Witnesses = append(nd.Witnesses, w)
		}
		tx.SaplingNoteData[op] = nd
	}

	for _, js := range t.JoinSplits {
		tx.JoinSplits = append(tx.JoinSplits, domain.JoinSplit{
			VPubOld:     js.VPubOld,
			VPubNew:     js.VPubNew,
			Anchor:      js.Anchor,
			Nullifiers:  [2][32]byte{js.Nullifiers[0], js.Nullifiers[1]},
			Commitments: [2][32]byte{js.Commitments[0], js.Commitments[1]},
		})
	}

	for i, a := range t.OrchardActions {
		tx.OrchardActions = append(tx.OrchardActions, domain.OrchardAction{
			Index:           i,
			ValueCommitment: a.ValueCommitment,
			Nullifier:       a.Nullifier,
			Rk:              a.Rk,
			Commitment:      a.Commitment,
			EphemeralKey:    a.EphemeralKey,
			EncCiphertext:   a.EncCiphertext,
			OutCiphertext:   a.OutCiphertext,
		})
	}
	if m := t.OrchardMeta; m != nil {
		meta := &legacy.OrchardTxMeta{
			ReceivingKeys:          make(map[uint32][]byte, len(m.ReceivingKeys)),
			ActionsSpendingMyNotes: m.SpendingMyNotes,
		}
		for _, rk := range m.ReceivingKeys {
			meta.ReceivingKeys[rk.ActionIndex] = rk.IncomingViewingKey
		}
		tx.OrchardMeta = meta
	}

	return tx, nil
}

func parseRecipientKind(s string) (legacy.RecipientKind, error) {
	for _, k := range []legacy.RecipientKind{
		legacy.RecipientSapling, legacy.RecipientOrchard,
		legacy.RecipientP2PKH, legacy.RecipientP2SH,
	} {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown recipient kind %q", s)
}

func parseReceiverType(s string) (domain.ReceiverType, error) {
	for _, t := range []domain.ReceiverType{
		domain.ReceiverP2PKH, domain.ReceiverP2SH,
		domain.ReceiverSapling, domain.ReceiverOrchard,
	} {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown receiver type %q", s)
}

func duplicate(record, key string) error {
	return domain.NewStructuralError(record, key, fmt.Errorf("duplicate record"))
}
