package application

import (
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
)

// ConvertSeedMaterial returns the exported form of the wallet mnemonic, or
// nil when the wallet has no phrase.
func ConvertSeedMaterial(w *legacy.Wallet) *domain.Bip39Mnemonic {
	m := w.Bip39Mnemonic
	if m == nil || m.Phrase == "" {
		return nil
	}
	var fingerprint []byte
	if len(m.SeedFingerprint) > 0 {
		fingerprint = append([]byte{}, m.SeedFingerprint...)
	}
	return &domain.Bip39Mnemonic{
		Phrase:          m.Phrase,
		Language:        domain.MnemonicLanguage(m.Language),
		SeedFingerprint: fingerprint,
	}
}
