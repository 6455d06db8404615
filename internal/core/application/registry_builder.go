package application

import (
	"bytes"
	"strings"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
	"github.com/zewif/zcashd-migrate/pkg/keypath"
)

// BuildAddressRegistry maps every wallet address it can place to the
// unified account owning it. Addresses that cannot be placed are simply
// left out.
func BuildAddressRegistry(w *legacy.Wallet, sink DiagnosticSink) *domain.AddressRegistry {
	if sink == nil {
		sink = &Diagnostics{}
	}
	return buildAddressRegistry(newWalletView(w), sink)
}

func buildAddressRegistry(v *walletView, sink DiagnosticSink) *domain.AddressRegistry {
	registry := domain.NewAddressRegistry()

	derived := registerDerivedAddresses(v, registry)
	transparent := registerTransparentAddresses(v, registry)
	sapling := registerSaplingAddresses(v, registry)

	infof(
		sink, StageRegistry,
		"placed %d derived, %d transparent and %d sapling addresses",
		derived, transparent, sapling,
	)
	return registry
}

func registerDerivedAddresses(v *walletView, registry *domain.AddressRegistry) int {
	u := v.wallet.UnifiedAccounts
	if u == nil {
		return 0
	}
	for _, meta := range u.AddressMetadata {
		id := domain.NewDerivationMetaAddressID(domain.DerivationMeta{
			UFVKFingerprint:  meta.UFVKFingerprint,
			DiversifierIndex: meta.DiversifierIndex,
			ReceiverTypes:    meta.ReceiverTypes,
		})
		registry.Register(id, meta.UFVKFingerprint)
	}
	return len(u.AddressMetadata)
}

func registerTransparentAddresses(v *walletView, registry *domain.AddressRegistry) int {
	if !v.wallet.HasUnifiedAccounts() {
		return 0
	}

	count := 0
	for _, addr := range v.addressBook {
		id, err := domain.ParseAddressString(addr)
		if err != nil || id.Kind() != domain.KindTransparent {
			continue
		}
		key, ok := v.ownerKey(addr)
		if !ok {
			continue
		}
		account, ok := accountForKey(v.wallet.UnifiedAccounts, key)
		if !ok {
			continue
		}
		registry.Register(id, account)
		count++
	}
	return count
}

// accountForKey infers the unified account a transparent key belongs to,
// first from its HD path, then from its seed fingerprint.
func accountForKey(u *legacy.UnifiedAccounts, key *legacy.Key) (domain.AccountKey, bool) {
	accounts := u.SortedAccounts()
	seedFp, hasSeedFp := key.SeedFingerprint()

	if path, ok := key.HDKeyPath(); ok {
		if accountID, ok := keypath.UnifiedAccountID(path); ok {
			var candidate *legacy.UnifiedAccountMetadata
			for _, meta := range accounts {
				if meta.AccountID != accountID {
					continue
				}
				if hasSeedFp && bytes.Equal(meta.SeedFingerprint, seedFp) {
					return meta.UFVKFingerprint, true
				}
				if candidate == nil {
					candidate = meta
				}
			}
			if candidate != nil {
				return candidate.UFVKFingerprint, true
			}
		}
	}

	if hasSeedFp {
		for _, meta := range accounts {
			if bytes.Equal(meta.SeedFingerprint, seedFp) {
				return meta.UFVKFingerprint, true
			}
		}
	}
	return domain.AccountKey{}, false
}

// registerSaplingAddresses correlates legacy sapling addresses to unified
// accounts by looking for their incoming viewing key inside the recorded
// full viewing key strings, or the other way round. This is an
// approximation of a real IVK-from-FVK derivation check.
func registerSaplingAddresses(v *walletView, registry *domain.AddressRegistry) int {
	u := v.wallet.UnifiedAccounts
	if u == nil || len(u.FullViewingKeys) == 0 {
		return 0
	}
	fingerprints := u.SortedFingerprints()

	count := 0
	for _, addr := range v.saplingAddrs {
		ivk := v.wallet.SaplingAddresses[addr]
		if ivk == "" {
			continue
		}
		if _, ok := v.wallet.SaplingKeys[ivk]; !ok {
			continue
		}
		for _, fp := range fingerprints {
			fvk := u.FullViewingKeys[fp]
			if fvk == "" {
				continue
			}
			if strings.Contains(fvk, ivk) || strings.Contains(ivk, fvk) {
				registry.Register(domain.NewSaplingAddressID(addr), fp)
				count++
				break
			}
		}
	}
	return count
}
