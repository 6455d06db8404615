package zaddr

import (
	"fmt"
	"strings"
)

// Network identifies the zcash chain an address is encoded for.
type Network int

const (
	MainNet Network = iota
	TestNet
	RegTest
)

func (n Network) String() string {
	switch n {
	case MainNet:
		return "main"
	case TestNet:
		return "test"
	case RegTest:
		return "regtest"
	default:
		return "unknown"
	}
}

// ParseNetwork accepts the network names used by zcashd (main, test,
// regtest) plus their long forms.
func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "main", "mainnet":
		return MainNet, nil
	case "test", "testnet":
		return TestNet, nil
	case "regtest":
		return RegTest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
}

// Params holds the encoding prefixes of a network.
type Params struct {
	Net          Network
	P2PKHPrefix  [2]byte
	P2SHPrefix   [2]byte
	SproutPrefix [2]byte
	SaplingHRP   string
	UnifiedHRP   string
	TexHRP       string
}

var (
	// MainNetParams ...
	MainNetParams = Params{
		Net:          MainNet,
		P2PKHPrefix:  [2]byte{0x1c, 0xb8},
		P2SHPrefix:   [2]byte{0x1c, 0xbd},
		SproutPrefix: [2]byte{0x16, 0x9a},
		SaplingHRP:   "zs",
		UnifiedHRP:   "u",
		TexHRP:       "tex",
	}
	// TestNetParams ...
	TestNetParams = Params{
		Net:          TestNet,
		P2PKHPrefix:  [2]byte{0x1d, 0x25},
		P2SHPrefix:   [2]byte{0x1c, 0xba},
		SproutPrefix: [2]byte{0x16, 0xb6},
		SaplingHRP:   "ztestsapling",
		UnifiedHRP:   "utest",
		TexHRP:       "textest",
	}
	// RegTestParams shares the base58 prefixes of testnet, only the human
	// readable parts differ.
	RegTestParams = Params{
		Net:          RegTest,
		P2PKHPrefix:  [2]byte{0x1d, 0x25},
		P2SHPrefix:   [2]byte{0x1c, 0xba},
		SproutPrefix: [2]byte{0x16, 0xb6},
		SaplingHRP:   "zregtestsapling",
		UnifiedHRP:   "uregtest",
		TexHRP:       "texregtest",
	}

	allParams = []*Params{&MainNetParams, &TestNetParams, &RegTestParams}
)

// Params returns the encoding parameters of the network. Unknown values
// fall back to mainnet.
func (n Network) Params() *Params {
	switch n {
	case TestNet:
		return &TestNetParams
	case RegTest:
		return &RegTestParams
	default:
		return &MainNetParams
	}
}
