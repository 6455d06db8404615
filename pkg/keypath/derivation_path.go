package keypath

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// PurposeBIP44 is the purpose field of zcashd transparent HD paths.
	PurposeBIP44 = 44
	// CoinTypeMainnet is the SLIP-44 coin type of zcash.
	CoinTypeMainnet = 133
	// CoinTypeTestnet is shared by every test network.
	CoinTypeTestnet = 1

	internalChain = 1
)

var (
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and must not contain empty elements",
	)
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
)

// DerivationPath is the binary form of a BIP-32 path as recorded in zcashd
// key metadata, e.g. m/44'/133'/0'/0/5.
type DerivationPath []uint32

// ParseDerivationPath converts a derivation path string to the
// internal binary representation
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	var path DerivationPath

	elems := strings.Split(strPath, "/")
	switch {
	case strPath == "":
		return nil, ErrNullDerivationPath

	case containsEmptyString(elems):
		return nil, ErrMalformedDerivationPath
	case len(elems) < 2:
		return nil, ErrMalformedDerivationPath

	case len(elems) > 1:
		if strings.TrimSpace(elems[0]) == "m" {
			elems = elems[1:]
		}

	default:
		return nil, ErrInvalidDerivationPath
	}

	for _, elem := range elems {
		value, err := parseElem(elem)
		if err != nil {
			return nil, err
		}
		path = append(path, value)
	}

	return path, nil
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	result := "m"
	for _, component := range path {
		var hardened bool
		if component >= hdkeychain.HardenedKeyStart {
			component -= hdkeychain.HardenedKeyStart
			hardened = true
		}
		result = fmt.Sprintf("%s/%d", result, component)
		if hardened {
			result += "'"
		}
	}
	return result
}

// Account returns the hardened account index of a BIP-44 path.
func (path DerivationPath) Account() (uint32, bool) {
	if len(path) < 3 || path[0] != hdkeychain.HardenedKeyStart+PurposeBIP44 {
		return 0, false
	}
	if path[2] < hdkeychain.HardenedKeyStart {
		return 0, false
	}
	return path[2] - hdkeychain.HardenedKeyStart, true
}

// IsInternal tells whether the path derives from the change chain of its
// account.
func (path DerivationPath) IsInternal() bool {
	if len(path) < 4 {
		return false
	}
	chain := path[3]
	if chain >= hdkeychain.HardenedKeyStart {
		chain -= hdkeychain.HardenedKeyStart
	}
	return chain == internalChain
}

func parseElem(elem string) (uint32, error) {
	elem = strings.TrimSpace(elem)
	var value uint32

	if strings.HasSuffix(elem, "'") {
		value = hdkeychain.HardenedKeyStart
		elem = strings.TrimSpace(strings.TrimSuffix(elem, "'"))
	}

	bigval, ok := new(big.Int).SetString(elem, 0)
	if !ok {
		return 0, fmt.Errorf("invalid elem '%s' in path", elem)
	}

	max := math.MaxUint32 - value
	if bigval.Sign() < 0 || bigval.Cmp(big.NewInt(int64(max))) > 0 {
		if value == 0 {
			return 0, fmt.Errorf("elem %v must be in range [0, %d]", bigval, max)
		}
		return 0, fmt.Errorf("elem %v must be in hardened range [0, %d]", bigval, max)
	}
	return value + uint32(bigval.Uint64()), nil
}

func containsEmptyString(composedPath []string) bool {
	for _, s := range composedPath {
		if s == "" {
			return true
		}
	}
	return false
}
