package legacy

import (
	"fmt"

	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

// RecipientKind ...
type RecipientKind int

const (
	RecipientSapling RecipientKind = iota
	RecipientOrchard
	RecipientP2PKH
	RecipientP2SH
)

func (k RecipientKind) String() string {
	switch k {
	case RecipientSapling:
		return "sapling"
	case RecipientOrchard:
		return "orchard"
	case RecipientP2PKH:
		return "p2pkh"
	case RecipientP2SH:
		return "p2sh"
	default:
		return "unknown"
	}
}

// RecipientAddress is the typed receiver a payment was sent to.
type RecipientAddress struct {
	Kind RecipientKind
	// Data is the raw receiver: 43 bytes for shielded kinds, a 20-byte hash
	// for transparent ones.
	Data []byte
}

// Encode renders the receiver as an address string. Orchard receivers have
// no standalone encoding and are wrapped in a single receiver unified
// address.
func (r RecipientAddress) Encode(net zaddr.Network) (string, error) {
	switch r.Kind {
	case RecipientSapling:
		return zaddr.EncodeSapling(net, r.Data)
	case RecipientOrchard:
		return zaddr.EncodeUnified(net, []zaddr.Receiver{
			{Typecode: zaddr.TypecodeOrchard, Data: r.Data},
		})
	case RecipientP2PKH:
		return zaddr.EncodeP2PKH(net, r.Data)
	case RecipientP2SH:
		return zaddr.EncodeP2SH(net, r.Data)
	default:
		return "", fmt.Errorf("unknown recipient kind %d", r.Kind)
	}
}

// RecipientMapping is a recipientmapping record: the unified address the
// user paid and the receiver actually used.
type RecipientMapping struct {
	UnifiedAddress string
	Recipient      RecipientAddress
}
