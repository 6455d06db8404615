package keypath

import (
	"strconv"
	"strings"
)

// UnifiedAccountID extracts the ZIP-32 account id from an HD path string
// recorded by zcashd for a transparent key. The path must have at least
// four segments, start with "m", have a "44'" purpose and a hardened
// account segment, e.g. m/44'/133'/2'/0/5 yields 2.
func UnifiedAccountID(hdKeyPath string) (uint32, bool) {
	parts := strings.Split(hdKeyPath, "/")
	if len(parts) < 4 || parts[0] != "m" || !strings.HasPrefix(parts[1], "44'") {
		return 0, false
	}

	account := strings.TrimSuffix(parts[3], "'")
	if account == parts[3] {
		return 0, false
	}
	id, err := strconv.ParseUint(account, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

// IsInternalChainPath tells whether an HD path string contains an
// internal (change) chain segment. BIP-44 shaped paths are judged on their
// chain element only, so the testnet coin type 1' is not mistaken for it.
func IsInternalChainPath(hdKeyPath string) bool {
	if path, err := ParseDerivationPath(hdKeyPath); err == nil {
		if _, ok := path.Account(); ok && len(path) >= 4 {
			return path.IsInternal()
		}
	}
	return strings.Contains(hdKeyPath, "/1'/") || strings.Contains(hdKeyPath, "/1/")
}
