package legacy

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

var (
	errMissingKeyMetadata     = errors.New("key has no metadata record")
	errFingerprintMismatch    = errors.New("record fingerprint differs from its key")
	errMissingAccountMetadata = errors.New("full viewing key has no account metadata")
	errForeignNoteData        = errors.New("note data belongs to another transaction")
	errNoteDataIndex          = errors.New("note data index out of range")
	errOrchardActionIndex     = errors.New("orchard metadata index out of range")
	errMnemonicLanguage       = errors.New("unknown mnemonic language")
)

// Validate checks the invariants the decoder guarantees for well formed
// wallets. A violation means the decoded data cannot be trusted; the
// returned error is a *domain.StructuralError.
func (w *Wallet) Validate() error {
	for pubkey, key := range w.Keys {
		if key == nil || key.Metadata == nil {
			return domain.NewStructuralError("key", pubkey, errMissingKeyMetadata)
		}
		if hex.EncodeToString(key.PubKey) != pubkey {
			return domain.NewStructuralError(
				"key", pubkey, fmt.Errorf("public key does not match record key"),
			)
		}
	}

	if m := w.Bip39Mnemonic; m != nil && !domain.MnemonicLanguage(m.Language).IsValid() {
		return domain.NewStructuralError(
			"mnemonicphrase", fmt.Sprint(m.Language), errMnemonicLanguage,
		)
	}

	if u := w.UnifiedAccounts; u != nil {
		for fp, meta := range u.AccountMetadata {
			if meta.UFVKFingerprint != fp {
				return domain.NewStructuralError(
					"unifiedaccount", fp.String(), errFingerprintMismatch,
				)
			}
		}
		for fp := range u.FullViewingKeys {
			if _, ok := u.AccountMetadata[fp]; !ok {
				return domain.NewStructuralError(
					"unifiedfvk", fp.String(), errMissingAccountMetadata,
				)
			}
		}
	}

	if w.Transactions == nil {
		return nil
	}
	for _, tx := range w.Transactions.All() {
		if err := validateTx(tx); err != nil {
			return err
		}
	}
	return nil
}

func validateTx(tx *WalletTx) error {
	for op := range tx.SaplingNoteData {
		if op.TxID != tx.TxID {
			return domain.NewStructuralError("tx", tx.TxID.String(), fmt.Errorf(
				"%w: %s", errForeignNoteData, op,
			))
		}
		if int(op.Index) >= len(tx.SaplingOutputs) {
			return domain.NewStructuralError("tx", tx.TxID.String(), fmt.Errorf(
				"%w: %s", errNoteDataIndex, op,
			))
		}
	}

	if tx.OrchardMeta == nil {
		return nil
	}
	numActions := uint32(len(tx.OrchardActions))
	for idx := range tx.OrchardMeta.ReceivingKeys {
		if idx >= numActions {
			return domain.NewStructuralError("tx", tx.TxID.String(), fmt.Errorf(
				"%w: %d", errOrchardActionIndex, idx,
			))
		}
	}
	for _, idx := range tx.OrchardMeta.ActionsSpendingMyNotes {
		if idx >= numActions {
			return domain.NewStructuralError("tx", tx.TxID.String(), fmt.Errorf(
				"%w: %d", errOrchardActionIndex, idx,
			))
		}
	}
	return nil
}
