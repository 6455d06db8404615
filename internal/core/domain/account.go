package domain

import (
	"encoding/hex"
	"fmt"
	"sort"
)

// DefaultAccountName is the name of the synthetic account collecting the
// addresses and transactions no other account claims.
const DefaultAccountName = "Default Account"

// AccountKey identifies an account by its unified full viewing key
// fingerprint. The zero value is the key of the default account.
type AccountKey [32]byte

// DefaultAccountKey ...
var DefaultAccountKey = AccountKey{}

// ParseAccountKey parses a hex encoded account key.
func ParseAccountKey(s string) (AccountKey, error) {
	var key AccountKey
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(key) {
		return key, ErrInvalidAccountKey
	}
	copy(key[:], b)
	return key, nil
}

// IsZero ...
func (k AccountKey) IsZero() bool {
	return k == AccountKey{}
}

func (k AccountKey) String() string {
	return hex.EncodeToString(k[:])
}

// MarshalText ...
func (k AccountKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText ...
func (k *AccountKey) UnmarshalText(text []byte) error {
	key, err := ParseAccountKey(string(text))
	if err != nil {
		return err
	}
	*k = key
	return nil
}

// Address is an address exported as part of an account. Sapling addresses
// carry their incoming viewing key and, when the wallet held it, the
// extended spending key.
type Address struct {
	ID                 AddressID
	Name               string
	Purpose            string
	IncomingViewingKey []byte
	SpendingKey        []byte
}

// Account is the export form of a wallet account.
type Account struct {
	Key             AccountKey
	Name            string
	ZIP32AccountID  *uint32
	SeedFingerprint []byte
	FullViewingKey  string
	Addresses       []Address

	addressIndex map[AddressID]int
	relevantTxs  map[TxID]struct{}
}

// NewAccount ...
func NewAccount(key AccountKey, name string, zip32AccountID *uint32) *Account {
	return &Account{
		Key:            key,
		Name:           name,
		ZIP32AccountID: zip32AccountID,
		addressIndex:   make(map[AddressID]int),
		relevantTxs:    make(map[TxID]struct{}),
	}
}

// NewDefaultAccount returns the synthetic default account.
func NewDefaultAccount() *Account {
	return NewAccount(DefaultAccountKey, DefaultAccountName, nil)
}

// UnifiedAccountName is the name given to the account with the given
// ZIP-32 id.
func UnifiedAccountName(zip32AccountID uint32) string {
	return fmt.Sprintf("Account #%d", zip32AccountID)
}

// AddAddress adds addr to the account, replacing a previous address with
// the same id.
func (a *Account) AddAddress(addr Address) {
	a.init()
	if i, ok := a.addressIndex[addr.ID]; ok {
		a.Addresses[i] = addr
		return
	}
	a.addressIndex[addr.ID] = len(a.Addresses)
	a.Addresses = append(a.Addresses, addr)
}

// HasAddress ...
func (a *Account) HasAddress(id AddressID) bool {
	a.init()
	_, ok := a.addressIndex[id]
	return ok
}

// AddRelevantTransaction marks txid as relevant to the account.
func (a *Account) AddRelevantTransaction(txid TxID) {
	a.init()
	a.relevantTxs[txid] = struct{}{}
}

// IsRelevant ...
func (a *Account) IsRelevant(txid TxID) bool {
	_, ok := a.relevantTxs[txid]
	return ok
}

// RelevantTransactions returns the relevant transaction ids sorted by their
// display form.
func (a *Account) RelevantTransactions() []TxID {
	txids := make([]TxID, 0, len(a.relevantTxs))
	for txid := range a.relevantTxs {
		txids = append(txids, txid)
	}
	sort.Slice(txids, func(i, j int) bool {
		return txids[i].String() < txids[j].String()
	})
	return txids
}

func (a *Account) init() {
	if a.addressIndex == nil {
		a.addressIndex = make(map[AddressID]int, len(a.Addresses))
		for i, addr := range a.Addresses {
			a.addressIndex[addr.ID] = i
		}
	}
	if a.relevantTxs == nil {
		a.relevantTxs = make(map[TxID]struct{})
	}
}

// AccountMap holds accounts by key and remembers their insertion order.
type AccountMap struct {
	keys  []AccountKey
	byKey map[AccountKey]*Account
}

// NewAccountMap ...
func NewAccountMap() *AccountMap {
	return &AccountMap{byKey: make(map[AccountKey]*Account)}
}

// Add inserts the account, replacing any account with the same key in
// place.
func (m *AccountMap) Add(account *Account) {
	if _, ok := m.byKey[account.Key]; !ok {
		m.keys = append(m.keys, account.Key)
	}
	m.byKey[account.Key] = account
}

// Get ...
func (m *AccountMap) Get(key AccountKey) (*Account, bool) {
	account, ok := m.byKey[key]
	return account, ok
}

// Has ...
func (m *AccountMap) Has(key AccountKey) bool {
	_, ok := m.byKey[key]
	return ok
}

// Len ...
func (m *AccountMap) Len() int {
	return len(m.keys)
}

// Keys returns the account keys in insertion order.
func (m *AccountMap) Keys() []AccountKey {
	keys := make([]AccountKey, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Accounts returns the accounts in insertion order.
func (m *AccountMap) Accounts() []*Account {
	accounts := make([]*Account, 0, len(m.keys))
	for _, k := range m.keys {
		accounts = append(accounts, m.byKey[k])
	}
	return accounts
}

// DefaultAccountKey picks the account that receives whatever cannot be
// attributed: the one named DefaultAccountName, else the one with ZIP-32
// id 0, else the first inserted one.
func (m *AccountMap) DefaultAccountKey() (AccountKey, bool) {
	for _, k := range m.keys {
		if m.byKey[k].Name == DefaultAccountName {
			return k, true
		}
	}
	for _, k := range m.keys {
		if id := m.byKey[k].ZIP32AccountID; id != nil && *id == 0 {
			return k, true
		}
	}
	if len(m.keys) > 0 {
		return m.keys[0], true
	}
	return AccountKey{}, false
}
