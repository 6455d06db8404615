package domain

import "strings"

// ReceiverType is a receiver kind a unified address can carry.
type ReceiverType int

const (
	ReceiverP2PKH ReceiverType = iota
	ReceiverP2SH
	ReceiverSapling
	ReceiverOrchard
)

func (r ReceiverType) String() string {
	switch r {
	case ReceiverP2PKH:
		return "p2pkh"
	case ReceiverP2SH:
		return "p2sh"
	case ReceiverSapling:
		return "sapling"
	case ReceiverOrchard:
		return "orchard"
	default:
		return "unknown"
	}
}

// ReceiverFlags is the set of receiver types of a derived unified address.
type ReceiverFlags uint8

const (
	FlagP2PKH   ReceiverFlags = 1 << ReceiverP2PKH
	FlagP2SH    ReceiverFlags = 1 << ReceiverP2SH
	FlagSapling ReceiverFlags = 1 << ReceiverSapling
	FlagOrchard ReceiverFlags = 1 << ReceiverOrchard
)

// NewReceiverFlags ...
func NewReceiverFlags(types ...ReceiverType) ReceiverFlags {
	var flags ReceiverFlags
	for _, t := range types {
		flags |= 1 << t
	}
	return flags
}

// Has ...
func (f ReceiverFlags) Has(t ReceiverType) bool {
	return f&(1<<t) != 0
}

// Types returns the receiver types in the set, ascending.
func (f ReceiverFlags) Types() []ReceiverType {
	types := make([]ReceiverType, 0, 4)
	for t := ReceiverP2PKH; t <= ReceiverOrchard; t++ {
		if f.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

func (f ReceiverFlags) String() string {
	types := f.Types()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	return strings.Join(names, "|")
}
