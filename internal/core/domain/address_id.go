package domain

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

// AddressKind tells which variant an AddressID holds.
type AddressKind int

const (
	KindTransparent AddressKind = iota + 1
	KindSproutLegacy
	KindSapling
	KindUnified
	KindDerivationMeta
)

const (
	prefixTransparent = "t:"
	prefixSapling     = "zs:"
	prefixUnified     = "u:"
	prefixSprout      = "sprout:"
	metaTag           = "meta:"
)

// Protocol types reported by AddressID.ProtocolType.
const (
	ProtocolTransparent = "transparent"
	ProtocolSprout      = "sprout"
	ProtocolSapling     = "sapling"
	ProtocolUnified     = "unified"
)

// DerivationMeta identifies a unified address by how it was derived rather
// than by its encoding.
type DerivationMeta struct {
	UFVKFingerprint  AccountKey
	DiversifierIndex [11]byte
	ReceiverTypes    ReceiverFlags
}

// AddressID names an address of any supported protocol. It is comparable
// and is the only key used to relate addresses to accounts: ids holding an
// encoded address are equal iff kind and string are equal, derivation
// metadata ids iff all metadata fields are equal.
type AddressID struct {
	kind    AddressKind
	address string
	meta    DerivationMeta
}

// NewTransparentAddressID ...
func NewTransparentAddressID(addr string) AddressID {
	return AddressID{kind: KindTransparent, address: addr}
}

// NewSproutAddressID ...
func NewSproutAddressID(addr string) AddressID {
	return AddressID{kind: KindSproutLegacy, address: addr}
}

// NewSaplingAddressID ...
func NewSaplingAddressID(addr string) AddressID {
	return AddressID{kind: KindSapling, address: addr}
}

// NewUnifiedAddressID ...
func NewUnifiedAddressID(addr string) AddressID {
	return AddressID{kind: KindUnified, address: addr}
}

// NewDerivationMetaAddressID ...
func NewDerivationMetaAddressID(meta DerivationMeta) AddressID {
	return AddressID{kind: KindDerivationMeta, meta: meta}
}

// ParseAddressString classifies a bare encoded address by its protocol
// prefix. Addresses of every network are accepted.
func ParseAddressString(s string) (AddressID, error) {
	addr, err := zaddr.Decode(s)
	if err != nil {
		return AddressID{}, fmt.Errorf("%w: %s", ErrInvalidAddressID, err)
	}
	return AddressIDFromProtocolAddress(addr)
}

// AddressIDFromProtocolAddress builds the identity of a decoded address,
// keyed by its encoded form. TEX addresses have no identity.
func AddressIDFromProtocolAddress(addr *zaddr.Address) (AddressID, error) {
	if addr == nil || addr.Encoded == "" {
		return AddressID{}, fmt.Errorf("%w: empty address", ErrInvalidAddressID)
	}

	switch addr.Kind {
	case zaddr.KindP2PKH, zaddr.KindP2SH:
		return NewTransparentAddressID(addr.Encoded), nil
	case zaddr.KindSprout:
		return NewSproutAddressID(addr.Encoded), nil
	case zaddr.KindSapling:
		return NewSaplingAddressID(addr.Encoded), nil
	case zaddr.KindUnified:
		return NewUnifiedAddressID(addr.Encoded), nil
	default:
		return AddressID{}, fmt.Errorf(
			"%w: %s address %s", ErrUnsupportedAddressKind, addr.Kind, addr.Encoded,
		)
	}
}

// ParseAddressID is the inverse of AddressID.String.
func ParseAddressID(s string) (AddressID, error) {
	switch {
	case strings.HasPrefix(s, prefixTransparent):
		return nonEmpty(NewTransparentAddressID(strings.TrimPrefix(s, prefixTransparent)))
	case strings.HasPrefix(s, prefixSapling):
		return nonEmpty(NewSaplingAddressID(strings.TrimPrefix(s, prefixSapling)))
	case strings.HasPrefix(s, prefixSprout):
		return nonEmpty(NewSproutAddressID(strings.TrimPrefix(s, prefixSprout)))
	case strings.HasPrefix(s, prefixUnified+metaTag):
		return parseDerivationMeta(strings.TrimPrefix(s, prefixUnified+metaTag))
	case strings.HasPrefix(s, prefixUnified):
		return nonEmpty(NewUnifiedAddressID(strings.TrimPrefix(s, prefixUnified)))
	default:
		return AddressID{}, fmt.Errorf("%w: %q", ErrInvalidAddressID, s)
	}
}

// Kind ...
func (id AddressID) Kind() AddressKind {
	return id.kind
}

// IsZero tells whether id was never initialized.
func (id AddressID) IsZero() bool {
	return id.kind == 0
}

// Address returns the encoded address, if the id holds one.
func (id AddressID) Address() (string, bool) {
	if id.kind == KindDerivationMeta || id.kind == 0 {
		return "", false
	}
	return id.address, true
}

// DerivationMeta returns the derivation metadata, if the id holds it.
func (id AddressID) DerivationMeta() (DerivationMeta, bool) {
	if id.kind != KindDerivationMeta {
		return DerivationMeta{}, false
	}
	return id.meta, true
}

// ProtocolType ...
func (id AddressID) ProtocolType() string {
	switch id.kind {
	case KindTransparent:
		return ProtocolTransparent
	case KindSproutLegacy:
		return ProtocolSprout
	case KindSapling:
		return ProtocolSapling
	case KindUnified, KindDerivationMeta:
		return ProtocolUnified
	default:
		return ""
	}
}

func (id AddressID) String() string {
	switch id.kind {
	case KindTransparent:
		return prefixTransparent + id.address
	case KindSapling:
		return prefixSapling + id.address
	case KindUnified:
		return prefixUnified + id.address
	case KindSproutLegacy:
		return prefixSprout + id.address
	case KindDerivationMeta:
		return fmt.Sprintf(
			"%s%s%s:%s:%d", prefixUnified, metaTag,
			id.meta.UFVKFingerprint, hex.EncodeToString(id.meta.DiversifierIndex[:]),
			id.meta.ReceiverTypes,
		)
	default:
		return ""
	}
}

// MarshalText lets ids be used as JSON values and map keys.
func (id AddressID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText ...
func (id *AddressID) UnmarshalText(text []byte) error {
	parsed, err := ParseAddressID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func nonEmpty(id AddressID) (AddressID, error) {
	if id.address == "" {
		return AddressID{}, fmt.Errorf("%w: empty address", ErrInvalidAddressID)
	}
	return id, nil
}

func parseDerivationMeta(s string) (AddressID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return AddressID{}, fmt.Errorf("%w: malformed derivation metadata", ErrInvalidAddressID)
	}

	fingerprint, err := ParseAccountKey(parts[0])
	if err != nil {
		return AddressID{}, fmt.Errorf("%w: %s", ErrInvalidAddressID, err)
	}

	var meta DerivationMeta
	meta.UFVKFingerprint = fingerprint

	diversifier, err := hex.DecodeString(parts[1])
	if err != nil || len(diversifier) != len(meta.DiversifierIndex) {
		return AddressID{}, fmt.Errorf("%w: invalid diversifier index", ErrInvalidAddressID)
	}
	copy(meta.DiversifierIndex[:], diversifier)

	flags, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return AddressID{}, fmt.Errorf("%w: invalid receiver types", ErrInvalidAddressID)
	}
	meta.ReceiverTypes = ReceiverFlags(flags)

	return NewDerivationMetaAddressID(meta), nil
}
