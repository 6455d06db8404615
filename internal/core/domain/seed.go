package domain

// MnemonicLanguage is the word list of a BIP-39 phrase, numbered the way
// zcashd stores it.
type MnemonicLanguage uint32

const (
	LanguageEnglish MnemonicLanguage = iota
	LanguageChineseSimplified
	LanguageChineseTraditional
	LanguageCzech
	LanguageFrench
	LanguageItalian
	LanguageJapanese
	LanguageKorean
	LanguagePortuguese
	LanguageSpanish
)

var mnemonicLanguages = [...]string{
	"english",
	"chinese_simplified",
	"chinese_traditional",
	"czech",
	"french",
	"italian",
	"japanese",
	"korean",
	"portuguese",
	"spanish",
}

func (l MnemonicLanguage) String() string {
	if !l.IsValid() {
		return "unknown"
	}
	return mnemonicLanguages[l]
}

// IsValid ...
func (l MnemonicLanguage) IsValid() bool {
	return l < MnemonicLanguage(len(mnemonicLanguages))
}

// Bip39Mnemonic is the seed phrase the wallet's HD accounts derive from.
type Bip39Mnemonic struct {
	Phrase          string
	Language        MnemonicLanguage
	SeedFingerprint []byte
}
