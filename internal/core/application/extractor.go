package application

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
	"github.com/zewif/zcashd-migrate/pkg/keypath"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

const compressedPubKeyLen = 33

// Extractor derives the addresses and roles a transaction touches. It only
// reads the wallet and may be used from several goroutines.
type Extractor struct {
	view *walletView
}

// NewExtractor ...
func NewExtractor(w *legacy.Wallet) *Extractor {
	return &Extractor{newWalletView(w)}
}

// ExtractTransactionFacts is a shorthand for NewExtractor(w).Extract(tx).
func ExtractTransactionFacts(w *legacy.Wallet, tx *legacy.WalletTx) (*TxFacts, error) {
	return NewExtractor(w).Extract(tx)
}

// Extract returns the facts of tx. It fails on malformed scripts or
// recipient data; callers are expected to recover.
func (e *Extractor) Extract(tx *legacy.WalletTx) (*TxFacts, error) {
	facts := newTxFacts()
	txid := tx.TxID.String()
	recipients := e.view.wallet.SendRecipients[tx.TxID]

	if err := e.extractRecipients(facts, recipients); err != nil {
		return nil, fmt.Errorf("tx %s: %w", txid, err)
	}

	changeFromInputs, spentTransparent, err := e.extractInputs(facts, tx)
	if err != nil {
		return nil, fmt.Errorf("tx %s: %w", txid, err)
	}
	changeFromOutputs := e.extractOutputs(facts, tx)
	spentSapling := e.extractSapling(facts, tx)
	e.extractSprout(facts, tx)
	spentOrchard, err := e.extractOrchard(facts, tx, recipients)
	if err != nil {
		return nil, fmt.Errorf("tx %s: %w", txid, err)
	}

	txType := TxTypeReceive
	switch {
	case changeFromInputs || changeFromOutputs:
		txType = TxTypeChange
	case tx.FromMe:
		txType = TxTypeSend
	}
	facts.add(TagTransactionType + string(txType))

	if tx.FromMe && !spentTransparent && !spentSapling && !spentOrchard {
		for _, addr := range e.view.saplingAddrs {
			facts.add(TagPossibleSource + addr)
		}
		for _, addr := range e.view.addressBook {
			facts.add(TagPossibleSource + addr)
		}
	}

	facts.add(TagTx + txid)
	return facts, nil
}

func (e *Extractor) extractRecipients(
	facts *TxFacts, recipients []legacy.RecipientMapping,
) error {
	for _, m := range recipients {
		if m.UnifiedAddress != "" {
			facts.addTagged(TagUnifiedAddress, m.UnifiedAddress)
		}

		addr, err := m.Recipient.Encode(e.view.network())
		if err != nil {
			return fmt.Errorf(
				"%w: %s receiver: %s", ErrInvalidRecipient, m.Recipient.Kind, err,
			)
		}
		switch m.Recipient.Kind {
		case legacy.RecipientSapling:
			facts.addTagged(TagSaplingAddr, addr)
		case legacy.RecipientOrchard:
			facts.addTagged(TagOrchardAddr, addr)
		case legacy.RecipientP2PKH:
			facts.addTagged(TagTransparentAddr, addr)
		case legacy.RecipientP2SH:
			facts.addTagged(TagTransparentScriptAddr, addr)
		}
	}
	return nil
}

// extractInputs tags the previous outpoints and the addresses implied by
// the input scripts. It reports whether an input spends from an internal
// chain key and whether any spend address was recovered.
func (e *Extractor) extractInputs(
	facts *TxFacts, tx *legacy.WalletTx,
) (change, spent bool, err error) {
	for _, in := range tx.Inputs {
		prev := in.PreviousOutPoint
		facts.add(fmt.Sprintf("%s%s:%d", TagInput, prev.Hash, prev.Index))

		addr, tag, err := e.spendAddress(in.SignatureScript)
		if err != nil {
			return false, false, err
		}
		if addr == "" {
			continue
		}
		facts.addTagged(tag, addr)
		if tag == TagTransparentSpend {
			spent = true
		}

		if e.view.wallet.InAddressBook(addr) {
			facts.add(TagOurKey + addr)
		}
		if key, ok := e.view.ownerKey(addr); ok {
			if path, ok := key.HDKeyPath(); ok && keypath.IsInternalChainPath(path) {
				facts.add(TagChangeKey + addr)
				change = true
			}
		}
	}
	return change, spent, nil
}

// spendAddress recovers the address an input spends from. The final push
// of the script decides: a compressed public key makes it a P2PKH spend, a
// redeem script ending in a signature check a P2SH spend.
func (e *Extractor) spendAddress(sigScript []byte) (string, string, error) {
	if len(sigScript) == 0 {
		return "", "", nil
	}

	pushes, err := txscript.PushedData(sigScript)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrMalformedScript, err)
	}
	if len(pushes) < 2 {
		return "", "", nil
	}
	last := pushes[len(pushes)-1]

	if isCompressedPubKey(last) {
		addr, err := zaddr.EncodeP2PKH(e.view.network(), btcutil.Hash160(last))
		if err != nil {
			return "", "", err
		}
		return addr, TagTransparentSpend, nil
	}

	if len(last) == 0 {
		return "", "", nil
	}
	switch last[len(last)-1] {
	case txscript.OP_CHECKMULTISIG, txscript.OP_CHECKSIG:
	default:
		return "", "", nil
	}
	addr, err := zaddr.EncodeP2SH(e.view.network(), btcutil.Hash160(last))
	if err != nil {
		return "", "", err
	}
	return addr, TagTransparentScriptSpend, nil
}

func isCompressedPubKey(data []byte) bool {
	return len(data) == compressedPubKeyLen && (data[0] == 0x02 || data[0] == 0x03)
}

// extractOutputs tags the transparent outputs and reports whether one of
// them looks like change.
func (e *Extractor) extractOutputs(facts *TxFacts, tx *legacy.WalletTx) bool {
	change := false
	txid := tx.TxID.String()

	for i, out := range tx.Outputs {
		addr, tag := e.outputAddress(out.PkScript)
		if addr != "" {
			facts.addTagged(tag, addr)
			if tx.FromMe && e.view.ownsTransparent(addr) &&
				e.view.wallet.IsLikelyChange(addr) {
				facts.add(TagChangeOutput + addr)
				change = true
			}
		}
		facts.add(fmt.Sprintf("%s%s:%d", TagOutput, txid, i))
	}
	return change
}

// outputAddress matches the standard P2PKH and P2SH templates.
func (e *Extractor) outputAddress(script []byte) (string, string) {
	net := e.view.network()

	if len(script) >= 25 &&
		script[0] == txscript.OP_DUP &&
		script[1] == txscript.OP_HASH160 &&
		script[23] == txscript.OP_EQUALVERIFY &&
		script[24] == txscript.OP_CHECKSIG {
		addr, err := zaddr.EncodeP2PKH(net, script[3:23])
		if err == nil {
			return addr, TagTransparentOutput
		}
	}

	if len(script) >= 23 &&
		script[0] == txscript.OP_HASH160 &&
		script[22] == txscript.OP_EQUAL {
		addr, err := zaddr.EncodeP2SH(net, script[2:22])
		if err == nil {
			return addr, TagTransparentScriptOutput
		}
	}

	return "", ""
}

// extractSapling tags sapling spends, outputs and note data. It reports
// whether a spend could be tied to a wallet address.
func (e *Extractor) extractSapling(facts *TxFacts, tx *legacy.WalletTx) bool {
	spent := false

	for _, spend := range tx.SaplingSpends {
		facts.add(TagSaplingNullifier + hex.EncodeToString(spend.Nullifier[:]))
		if addr, ok := e.view.saplingAddressForNullifier(spend.Nullifier); ok {
			facts.addTagged(TagSaplingSpend, addr)
			spent = true
		}
	}

	for i, out := range tx.SaplingOutputs {
		facts.add(TagSaplingCommitment + hex.EncodeToString(out.Commitment[:]))
		if nd, ok := tx.NoteData(uint32(i)); ok {
			if addr, ok := e.view.saplingAddressForIVK(nd.IncomingViewingKey); ok {
				facts.addTagged(TagSaplingReceive, addr)
			}
		}
	}

	outpoints := make([]legacy.SaplingOutPoint, 0, len(tx.SaplingNoteData))
	for op := range tx.SaplingNoteData {
		outpoints = append(outpoints, op)
	}
	sort.Slice(outpoints, func(i, j int) bool {
		return outpoints[i].Index < outpoints[j].Index
	})
	for _, op := range outpoints {
		facts.add(TagSaplingNote + op.String())
		if tx.SaplingNoteData[op].Nullifier != nil {
			facts.add(TagSaplingSpentNote + op.String())
		} else {
			facts.add(TagSaplingUnspentNote + op.String())
		}
	}

	return spent
}

func (e *Extractor) extractSprout(facts *TxFacts, tx *legacy.WalletTx) {
	for _, js := range tx.JoinSplits {
		for _, nf := range js.Nullifiers {
			facts.add(TagSproutNullifier + hex.EncodeToString(nf[:]))
		}
		for _, cm := range js.Commitments {
			facts.add(TagSproutCommitment + hex.EncodeToString(cm[:]))
		}
	}
}

// extractOrchard tags orchard actions and their wallet metadata. Any
// orchard action counts as spend evidence since it reveals a nullifier.
func (e *Extractor) extractOrchard(
	facts *TxFacts, tx *legacy.WalletTx, recipients []legacy.RecipientMapping,
) (bool, error) {
	txid := tx.TxID.String()

	for i, action := range tx.OrchardActions {
		facts.add(TagOrchardNullifier + hex.EncodeToString(action.Nullifier[:]))
		facts.add(TagOrchardCommitment + hex.EncodeToString(action.Commitment[:]))
		facts.add(fmt.Sprintf("%s%s:%d", TagOrchardActionIdx, txid, i))
	}

	meta := tx.OrchardMeta
	if meta == nil {
		return len(tx.OrchardActions) > 0, nil
	}

	indexes := make([]uint32, 0, len(meta.ReceivingKeys))
	for idx := range meta.ReceivingKeys {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })
	for _, idx := range indexes {
		facts.add(fmt.Sprintf("%s%s:%d", TagOrchardAction, txid, idx))
	}
	for _, idx := range meta.ActionsSpendingMyNotes {
		facts.add(fmt.Sprintf("%s%s:%d", TagOrchardSpendAction, txid, idx))
	}

	for _, m := range recipients {
		if m.Recipient.Kind != legacy.RecipientOrchard {
			continue
		}
		addr, err := m.Recipient.Encode(e.view.network())
		if err != nil {
			return false, fmt.Errorf("%w: orchard receiver: %s", ErrInvalidRecipient, err)
		}
		facts.addTagged(TagOrchardRecipient, addr)
		if m.UnifiedAddress != "" {
			facts.addTagged(TagOrchardRecipient, m.UnifiedAddress)
		}
	}

	return len(tx.OrchardActions) > 0, nil
}
