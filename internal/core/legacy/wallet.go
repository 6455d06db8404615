// Package legacy models a zcashd wallet.dat after its records have been
// decoded into typed values. It is the input of a migration.
package legacy

import (
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

// Wallet is a fully decoded zcashd wallet.
type Wallet struct {
	Network zaddr.Network

	// AddressNames and AddressPurposes are the address book, keyed by
	// encoded address.
	AddressNames    map[string]string
	AddressPurposes map[string]string

	// Keys holds the transparent keys keyed by hex encoded public key.
	Keys map[string]*Key

	// SaplingKeys maps a hex encoded incoming viewing key to the extended
	// spending key bytes (sapzkey records).
	SaplingKeys map[string][]byte
	// SaplingAddresses maps an encoded sapling address to the hex encoded
	// incoming viewing key it was derived from (sapzaddr records).
	SaplingAddresses map[string]string

	// Bip39Mnemonic is nil for wallets created before mnemonic seeds.
	Bip39Mnemonic *Bip39Mnemonic

	UnifiedAccounts *UnifiedAccounts

	Transactions *TransactionMap
	// SendRecipients holds the recipient mappings of sent transactions.
	SendRecipients map[TxID][]RecipientMapping

	// OrchardNoteCommitmentTree is the raw orchard note state, possibly
	// empty.
	OrchardNoteCommitmentTree []byte
}

// NewWallet returns an empty wallet for the given network.
func NewWallet(net zaddr.Network) *Wallet {
	return &Wallet{
		Network:          net,
		AddressNames:     make(map[string]string),
		AddressPurposes:  make(map[string]string),
		Keys:             make(map[string]*Key),
		SaplingKeys:      make(map[string][]byte),
		SaplingAddresses: make(map[string]string),
		UnifiedAccounts:  NewUnifiedAccounts(),
		Transactions:     NewTransactionMap(),
		SendRecipients:   make(map[TxID][]RecipientMapping),
	}
}

// InAddressBook tells whether addr has an address book entry, named or not.
func (w *Wallet) InAddressBook(addr string) bool {
	_, ok := w.AddressNames[addr]
	return ok
}

// HasUnifiedAccounts ...
func (w *Wallet) HasUnifiedAccounts() bool {
	return w.UnifiedAccounts != nil && len(w.UnifiedAccounts.AccountMetadata) > 0
}

// IsLikelyChange tells whether an address the wallet owns looks like a
// change address: the user never gave it a name or a purpose.
func (w *Wallet) IsLikelyChange(addr string) bool {
	return w.AddressNames[addr] == "" && w.AddressPurposes[addr] == ""
}
