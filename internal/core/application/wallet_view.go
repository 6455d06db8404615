package application

import (
	"encoding/hex"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

// walletView indexes a wallet for the lookups done while migrating. It is
// built once and never modified, so it can be shared by concurrent
// extractors.
type walletView struct {
	wallet *legacy.Wallet

	keysByHash     map[[20]byte]*legacy.Key
	addressesByIVK map[string][]string
	ivkByNullifier map[[32]byte][]byte
	addressBook    []string
	saplingAddrs   []string
}

func newWalletView(w *legacy.Wallet) *walletView {
	v := &walletView{
		wallet:         w,
		keysByHash:     make(map[[20]byte]*legacy.Key, len(w.Keys)),
		addressesByIVK: make(map[string][]string, len(w.SaplingAddresses)),
		ivkByNullifier: make(map[[32]byte][]byte),
		addressBook:    sortedStrings(w.AddressNames),
		saplingAddrs:   sortedStrings(w.SaplingAddresses),
	}

	for _, key := range w.Keys {
		var hash [20]byte
		copy(hash[:], btcutil.Hash160(key.PubKey))
		v.keysByHash[hash] = key
	}

	for _, addr := range v.saplingAddrs {
		ivk := w.SaplingAddresses[addr]
		v.addressesByIVK[ivk] = append(v.addressesByIVK[ivk], addr)
	}

	if w.Transactions != nil {
		for _, tx := range w.Transactions.All() {
			for _, nd := range tx.SaplingNoteData {
				if nd.Nullifier != nil {
					v.ivkByNullifier[*nd.Nullifier] = nd.IncomingViewingKey
				}
			}
		}
	}

	return v
}

func (v *walletView) network() zaddr.Network {
	return v.wallet.Network
}

// ownerKey returns the wallet key controlling a P2PKH address.
func (v *walletView) ownerKey(addr string) (*legacy.Key, bool) {
	decoded, err := zaddr.Decode(addr)
	if err != nil || decoded.Kind != zaddr.KindP2PKH {
		return nil, false
	}
	var hash [20]byte
	copy(hash[:], decoded.Payload)
	key, ok := v.keysByHash[hash]
	return key, ok
}

// ownsTransparent tells whether the wallet knows addr, either from its
// address book or because one of its keys controls it.
func (v *walletView) ownsTransparent(addr string) bool {
	if v.wallet.InAddressBook(addr) {
		return true
	}
	_, ok := v.ownerKey(addr)
	return ok
}

// saplingAddressForIVK returns the first address, in sorted order, derived
// from the given incoming viewing key.
func (v *walletView) saplingAddressForIVK(ivk []byte) (string, bool) {
	addrs := v.addressesByIVK[hex.EncodeToString(ivk)]
	if len(addrs) == 0 {
		return "", false
	}
	return addrs[0], true
}

// saplingAddressForNullifier resolves the address that received the note
// a sapling spend consumes.
func (v *walletView) saplingAddressForNullifier(nf [32]byte) (string, bool) {
	ivk, ok := v.ivkByNullifier[nf]
	if !ok {
		return "", false
	}
	return v.saplingAddressForIVK(ivk)
}

func sortedStrings(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
