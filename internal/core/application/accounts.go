package application

import (
	"encoding/hex"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
)

// BuildAccounts creates one account per unified account, ordered by ZIP-32
// id, followed by the default account, and places every wallet address in
// the account the registry maps it to, or in the default account.
func BuildAccounts(
	w *legacy.Wallet, registry *domain.AddressRegistry, sink DiagnosticSink,
) *domain.AccountMap {
	if sink == nil {
		sink = &Diagnostics{}
	}
	return buildAccounts(newWalletView(w), registry, sink)
}

func buildAccounts(
	v *walletView, registry *domain.AddressRegistry, sink DiagnosticSink,
) *domain.AccountMap {
	accounts := domain.NewAccountMap()
	u := v.wallet.UnifiedAccounts

	for _, meta := range u.SortedAccounts() {
		accountID := meta.AccountID
		account := domain.NewAccount(
			meta.UFVKFingerprint, domain.UnifiedAccountName(accountID), &accountID,
		)
		account.SeedFingerprint = meta.SeedFingerprint
		account.FullViewingKey = u.FullViewingKeys[meta.UFVKFingerprint]
		accounts.Add(account)
	}
	defaultAccount := domain.NewDefaultAccount()
	accounts.Add(defaultAccount)

	owner := func(id domain.AddressID) *domain.Account {
		if key, ok := registry.FindAccount(id); ok {
			if account, ok := accounts.Get(key); ok {
				return account
			}
		}
		return defaultAccount
	}

	placed := 0
	for _, addr := range walletAddresses(v) {
		id, err := domain.ParseAddressString(addr)
		if err != nil {
			warnf(sink, StageAccounts, "", "skipping address %s: %s", addr, err)
			continue
		}
		exported := domain.Address{
			ID:      id,
			Name:    v.wallet.AddressNames[addr],
			Purpose: v.wallet.AddressPurposes[addr],
		}
		if ivk, ok := v.wallet.SaplingAddresses[addr]; ok {
			exported.IncomingViewingKey, _ = hex.DecodeString(ivk)
			if sk, ok := v.wallet.SaplingKeys[ivk]; ok {
				exported.SpendingKey = sk
			}
		}
		account := owner(id)
		account.AddAddress(exported)
		if account != defaultAccount {
			placed++
		}
	}

	for _, entry := range registry.Entries() {
		if entry.Address.Kind() != domain.KindDerivationMeta {
			continue
		}
		owner(entry.Address).AddAddress(domain.Address{ID: entry.Address})
	}

	infof(
		sink, StageAccounts, "built %d accounts, %d addresses placed in unified accounts",
		accounts.Len(), placed,
	)
	return accounts
}

// walletAddresses returns the address book entries followed by the
// sapling addresses missing from it, each group sorted.
func walletAddresses(v *walletView) []string {
	addrs := make([]string, 0, len(v.addressBook)+len(v.saplingAddrs))
	addrs = append(addrs, v.addressBook...)
	for _, addr := range v.saplingAddrs {
		if !v.wallet.InAddressBook(addr) {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
