package application

import (
	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

// AttributionPass is the step of the attribution that decided which
// accounts a transaction belongs to.
type AttributionPass int

const (
	PassChange AttributionPass = iota
	PassDirect
	PassTagged
	PassFallback
	PassLastResort
	PassError
)

func (p AttributionPass) String() string {
	switch p {
	case PassChange:
		return "change"
	case PassDirect:
		return "direct"
	case PassTagged:
		return "tagged"
	case PassFallback:
		return "fallback"
	case PassLastResort:
		return "last_resort"
	case PassError:
		return "error"
	default:
		return "unknown"
	}
}

// Attribution is the outcome of attributing one transaction.
type Attribution struct {
	Keys []domain.AccountKey
	Pass AttributionPass
}

// AttributionEngine decides which accounts a transaction is relevant to
// from its extracted facts. It only reads the registry and the account
// map; Apply is the one method mutating accounts.
type AttributionEngine struct {
	registry *domain.AddressRegistry
	accounts *domain.AccountMap
}

// NewAttributionEngine ...
func NewAttributionEngine(
	registry *domain.AddressRegistry, accounts *domain.AccountMap,
) *AttributionEngine {
	return &AttributionEngine{registry, accounts}
}

// Attribute runs the attribution passes in order and stops at the first
// one producing at least one account:
//   - change: the first change tagged address resolving to an account is
//     the only owner of the transaction.
//   - direct: every bare address resolving to an account.
//   - tagged: spend and receive tagged addresses.
//   - fallback: the source account of change and send transactions, the
//     default account of receives.
//   - last resort: the default account, else the first account.
func (e *AttributionEngine) Attribute(facts *TxFacts) Attribution {
	items := facts.Items()

	for _, item := range items {
		addr, ok := stripTag(item, changeTags)
		if !ok {
			continue
		}
		if key, ok := e.resolve(addr); ok {
			return Attribution{Keys: []domain.AccountKey{key}, Pass: PassChange}
		}
	}

	if keys := e.resolveAll(items, nil); len(keys) > 0 {
		return Attribution{Keys: keys, Pass: PassDirect}
	}

	taggedSources := append(append([]string{}, spendTags...), receiveTags...)
	if keys := e.resolveAll(items, taggedSources); len(keys) > 0 {
		return Attribution{Keys: keys, Pass: PassTagged}
	}

	switch facts.TransactionType() {
	case TxTypeChange, TxTypeSend:
		if key, ok := e.findSourceAccount(items); ok {
			return Attribution{Keys: []domain.AccountKey{key}, Pass: PassFallback}
		}
	case TxTypeReceive:
		if key, ok := e.accounts.DefaultAccountKey(); ok {
			return Attribution{Keys: []domain.AccountKey{key}, Pass: PassFallback}
		}
	}

	return e.lastResort(PassLastResort)
}

// AttributeFailure returns the attribution of a transaction whose facts
// could not be extracted.
func (e *AttributionEngine) AttributeFailure() Attribution {
	return e.lastResort(PassError)
}

// Apply marks txid as relevant to every account of the attribution.
func (e *AttributionEngine) Apply(txid domain.TxID, a Attribution) {
	for _, key := range a.Keys {
		if account, ok := e.accounts.Get(key); ok {
			account.AddRelevantTransaction(txid)
		}
	}
}

// findSourceAccount looks for the account that funded a transaction among
// its spend and change addresses.
func (e *AttributionEngine) findSourceAccount(items []string) (domain.AccountKey, bool) {
	for _, item := range items {
		addr, ok := stripTag(item, sourceTags)
		if !ok {
			continue
		}
		if key, ok := e.resolve(addr); ok {
			return key, true
		}
	}
	return domain.AccountKey{}, false
}

func (e *AttributionEngine) lastResort(pass AttributionPass) Attribution {
	key, ok := e.accounts.DefaultAccountKey()
	if !ok {
		return Attribution{Pass: pass}
	}
	return Attribution{Keys: []domain.AccountKey{key}, Pass: pass}
}

// resolveAll resolves the items starting with one of tags, or the bare
// items when tags is nil. Keys are returned once, in first hit order.
func (e *AttributionEngine) resolveAll(items, tags []string) []domain.AccountKey {
	keys := make([]domain.AccountKey, 0)
	seen := make(map[domain.AccountKey]struct{})

	for _, item := range items {
		addr := item
		if tags != nil {
			stripped, ok := stripTag(item, tags)
			if !ok {
				continue
			}
			addr = stripped
		}
		key, ok := e.resolve(addr)
		if !ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// resolve maps an encoded address to an account present in the account
// map.
func (e *AttributionEngine) resolve(addr string) (domain.AccountKey, bool) {
	id, err := domain.ParseAddressString(addr)
	if err != nil {
		return domain.AccountKey{}, false
	}
	key, ok := e.registry.FindAccount(id)
	if !ok || !e.accounts.Has(key) {
		return domain.AccountKey{}, false
	}
	return key, true
}
