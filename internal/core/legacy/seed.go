package legacy

// Bip39Mnemonic is the mnemonicphrase record. The fingerprint comes from
// the mnemonichdchain record of the same seed.
type Bip39Mnemonic struct {
	Language        uint32
	Phrase          string
	SeedFingerprint []byte
}
