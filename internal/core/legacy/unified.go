package legacy

import (
	"sort"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

// UnifiedAccountMetadata is the unifiedaccount record of a ZIP-32 account.
type UnifiedAccountMetadata struct {
	UFVKFingerprint domain.AccountKey
	SeedFingerprint []byte
	CoinType        uint32
	AccountID       uint32
}

// UnifiedAddressMetadata is the unifiedaddrmeta record of a derived
// unified address.
type UnifiedAddressMetadata struct {
	UFVKFingerprint  domain.AccountKey
	DiversifierIndex [11]byte
	ReceiverTypes    domain.ReceiverFlags
}

// UnifiedAccounts groups the unified account records of the wallet.
type UnifiedAccounts struct {
	AccountMetadata map[domain.AccountKey]*UnifiedAccountMetadata
	// FullViewingKeys holds the encoded UFVK of each account.
	FullViewingKeys map[domain.AccountKey]string
	AddressMetadata []*UnifiedAddressMetadata
}

// NewUnifiedAccounts ...
func NewUnifiedAccounts() *UnifiedAccounts {
	return &UnifiedAccounts{
		AccountMetadata: make(map[domain.AccountKey]*UnifiedAccountMetadata),
		FullViewingKeys: make(map[domain.AccountKey]string),
	}
}

// SortedAccounts returns the account metadata ordered by ZIP-32 account id,
// then by fingerprint.
func (u *UnifiedAccounts) SortedAccounts() []*UnifiedAccountMetadata {
	if u == nil {
		return nil
	}
	accounts := make([]*UnifiedAccountMetadata, 0, len(u.AccountMetadata))
	for _, m := range u.AccountMetadata {
		accounts = append(accounts, m)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].AccountID != accounts[j].AccountID {
			return accounts[i].AccountID < accounts[j].AccountID
		}
		return accounts[i].UFVKFingerprint.String() < accounts[j].UFVKFingerprint.String()
	})
	return accounts
}

// SortedFingerprints returns the keys of FullViewingKeys in hex order.
func (u *UnifiedAccounts) SortedFingerprints() []domain.AccountKey {
	if u == nil {
		return nil
	}
	keys := make([]domain.AccountKey, 0, len(u.FullViewingKeys))
	for k := range u.FullViewingKeys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
