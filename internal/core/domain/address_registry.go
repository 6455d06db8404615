package domain

import "sort"

// RegistryEntry ...
type RegistryEntry struct {
	Address AddressID
	Account AccountKey
}

// AddressRegistry maps addresses to the account owning them. Lookups never
// fail: an unknown address is reported as not found and callers decide the
// fallback.
type AddressRegistry struct {
	entries map[AddressID]AccountKey
}

// NewAddressRegistry ...
func NewAddressRegistry() *AddressRegistry {
	return &AddressRegistry{entries: make(map[AddressID]AccountKey)}
}

// Register maps id to key. A later registration of the same id replaces
// the earlier one.
func (r *AddressRegistry) Register(id AddressID, key AccountKey) {
	r.entries[id] = key
}

// FindAccount ...
func (r *AddressRegistry) FindAccount(id AddressID) (AccountKey, bool) {
	key, ok := r.entries[id]
	return key, ok
}

// FindAddressesForAccount returns the addresses mapped to key, sorted by
// their display form.
func (r *AddressRegistry) FindAddressesForAccount(key AccountKey) []AddressID {
	ids := make([]AddressID, 0)
	for id, k := range r.entries {
		if k == key {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// AddressCount ...
func (r *AddressRegistry) AddressCount() int {
	return len(r.entries)
}

// AccountCount returns the number of distinct accounts with at least one
// address.
func (r *AddressRegistry) AccountCount() int {
	keys := make(map[AccountKey]struct{})
	for _, k := range r.entries {
		keys[k] = struct{}{}
	}
	return len(keys)
}

// Entries returns every mapping sorted by address display form.
func (r *AddressRegistry) Entries() []RegistryEntry {
	entries := make([]RegistryEntry, 0, len(r.entries))
	for id, k := range r.entries {
		entries = append(entries, RegistryEntry{Address: id, Account: k})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Address.String() < entries[j].Address.String()
	})
	return entries
}
