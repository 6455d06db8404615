package zaddr

import (
	"bytes"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	hashLen           = 20
	sproutPayloadLen  = 64
	saplingPayloadLen = 43
)

// Kind is the protocol family of a decoded address.
type Kind int

const (
	KindP2PKH Kind = iota
	KindP2SH
	KindSprout
	KindSapling
	KindUnified
	KindTex
)

func (k Kind) String() string {
	switch k {
	case KindP2PKH:
		return "p2pkh"
	case KindP2SH:
		return "p2sh"
	case KindSprout:
		return "sprout"
	case KindSapling:
		return "sapling"
	case KindUnified:
		return "unified"
	case KindTex:
		return "tex"
	default:
		return "unknown"
	}
}

// IsTransparent ...
func (k Kind) IsTransparent() bool {
	return k == KindP2PKH || k == KindP2SH
}

// Address is the result of classifying an encoded address string.
// Payload holds the raw hash or key bytes; for unified addresses the
// individual receivers are in Receivers.
type Address struct {
	Kind      Kind
	Net       Network
	Payload   []byte
	Receivers []Receiver
	Encoded   string
}

// EncodeP2PKH encodes a 20-byte public key hash.
func EncodeP2PKH(net Network, pkHash []byte) (string, error) {
	if len(pkHash) != hashLen {
		return "", ErrInvalidPayloadLength
	}
	return encodeBase58(net.Params().P2PKHPrefix, pkHash), nil
}

// EncodeP2SH encodes a 20-byte script hash.
func EncodeP2SH(net Network, scriptHash []byte) (string, error) {
	if len(scriptHash) != hashLen {
		return "", ErrInvalidPayloadLength
	}
	return encodeBase58(net.Params().P2SHPrefix, scriptHash), nil
}

// EncodeSprout encodes the 64-byte (a_pk, pk_enc) payload of a Sprout
// payment address.
func EncodeSprout(net Network, payload []byte) (string, error) {
	if len(payload) != sproutPayloadLen {
		return "", ErrInvalidPayloadLength
	}
	return encodeBase58(net.Params().SproutPrefix, payload), nil
}

// EncodeSapling encodes the 43-byte (diversifier, pk_d) payload of a
// Sapling payment address.
func EncodeSapling(net Network, payload []byte) (string, error) {
	if len(payload) != saplingPayloadLen {
		return "", ErrInvalidPayloadLength
	}
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(net.Params().SaplingHRP, data)
}

// Decode classifies s as one of the known zcash address encodings of any
// network. Transparent and Sprout strings of testnet and regtest share their
// prefixes and are reported as TestNet.
func Decode(s string) (*Address, error) {
	if addr, err := decodeBech32(s); err == nil {
		return addr, nil
	} else if !errors.Is(err, ErrUnknownAddress) {
		return nil, err
	}
	return decodeBase58(s)
}

func encodeBase58(prefix [2]byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, prefix[1])
	buf = append(buf, payload...)
	return base58.CheckEncode(buf, prefix[0])
}

func decodeBase58(s string) (*Address, error) {
	decoded, version, err := base58.CheckDecode(s)
	if err != nil || len(decoded) < 1 {
		return nil, ErrUnknownAddress
	}
	prefix := [2]byte{version, decoded[0]}
	payload := decoded[1:]

	for _, p := range allParams {
		// Regtest shares testnet prefixes, the first match wins.
		if p.Net == RegTest {
			continue
		}
		var (
			kind    Kind
			wantLen int
		)
		switch prefix {
		case p.P2PKHPrefix:
			kind, wantLen = KindP2PKH, hashLen
		case p.P2SHPrefix:
			kind, wantLen = KindP2SH, hashLen
		case p.SproutPrefix:
			kind, wantLen = KindSprout, sproutPayloadLen
		default:
			continue
		}
		if len(payload) != wantLen {
			return nil, ErrInvalidPayloadLength
		}
		return &Address{
			Kind:    kind,
			Net:     p.Net,
			Payload: payload,
			Encoded: s,
		}, nil
	}

	return nil, ErrUnknownAddress
}

func decodeBech32(s string) (*Address, error) {
	hrp, data, isM, err := decodeBech32NoLimit(s)
	if err != nil {
		return nil, ErrUnknownAddress
	}

	for _, p := range allParams {
		switch hrp {
		case p.SaplingHRP:
			if isM {
				return nil, ErrWrongChecksumVariant
			}
			payload, err := bech32.ConvertBits(data, 5, 8, false)
			if err != nil {
				return nil, err
			}
			if len(payload) != saplingPayloadLen {
				return nil, ErrInvalidPayloadLength
			}
			return &Address{
				Kind: KindSapling, Net: p.Net, Payload: payload, Encoded: s,
			}, nil

		case p.TexHRP:
			if !isM {
				return nil, ErrWrongChecksumVariant
			}
			payload, err := bech32.ConvertBits(data, 5, 8, false)
			if err != nil {
				return nil, err
			}
			if len(payload) != hashLen {
				return nil, ErrInvalidPayloadLength
			}
			return &Address{
				Kind: KindTex, Net: p.Net, Payload: payload, Encoded: s,
			}, nil

		case p.UnifiedHRP:
			if !isM {
				return nil, ErrWrongChecksumVariant
			}
			receivers, err := decodeUnifiedPayload(p, data)
			if err != nil {
				return nil, err
			}
			return &Address{
				Kind: KindUnified, Net: p.Net, Receivers: receivers, Encoded: s,
			}, nil
		}
	}

	return nil, ErrUnknownAddress
}

// decodeBech32NoLimit decodes s without the 90 char limit of BIP 173 and
// tells whether the checksum is the bech32m variant.
func decodeBech32NoLimit(s string) (string, []byte, bool, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return "", nil, false, err
	}
	reencoded, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", nil, false, err
	}
	isM := !strings.EqualFold(reencoded, s)
	return hrp, data, isM, nil
}

func hrpPadding(hrp string) []byte {
	padding := make([]byte, 16)
	copy(padding, hrp)
	return padding
}

func hasPadding(msg []byte, hrp string) bool {
	if len(msg) < 16 {
		return false
	}
	return bytes.Equal(msg[len(msg)-16:], hrpPadding(hrp))
}
