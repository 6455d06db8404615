package application

import "strings"

// Tags prefixing the strings of TxFacts. A tag followed by an address
// marks the role the address plays in the transaction.
const (
	TagUnifiedAddress          = "ua:"
	TagSaplingAddr             = "sapling_addr:"
	TagOrchardAddr             = "orchard_addr:"
	TagTransparentAddr         = "transparent_addr:"
	TagTransparentScriptAddr   = "transparent_script_addr:"
	TagInput                   = "input:"
	TagTransparentSpend        = "transparent_spend:"
	TagTransparentScriptSpend  = "transparent_script_spend:"
	TagOurKey                  = "our_key:"
	TagChange                  = "change:"
	TagChangeKey               = "change_key:"
	TagTransparentOutput       = "transparent_output:"
	TagTransparentScriptOutput = "transparent_script_output:"
	TagChangeOutput            = "change_output:"
	TagOutput                  = "output:"
	TagSaplingNullifier        = "sapling_nullifier:"
	TagSaplingSpend            = "sapling_spend:"
	TagSaplingCommitment       = "sapling_commitment:"
	TagSaplingReceive          = "sapling_receive:"
	TagSaplingNote             = "sapling_note:"
	TagSaplingSpentNote        = "sapling_spent_note:"
	TagSaplingUnspentNote      = "sapling_unspent_note:"
	TagSproutNullifier         = "sprout_nullifier:"
	TagSproutCommitment        = "sprout_commitment:"
	TagOrchardNullifier        = "orchard_nullifier:"
	TagOrchardCommitment       = "orchard_commitment:"
	TagOrchardActionIdx        = "orchard_action_idx:"
	TagOrchardAction           = "orchard_action:"
	TagOrchardSpend            = "orchard_spend:"
	TagOrchardSpendAction      = "orchard_spend_action:"
	TagOrchardRecipient        = "orchard_recipient:"
	TagPossibleSource          = "possible_source:"
	TagTransactionType         = "transaction_type:"
	TagTx                      = "tx:"
)

// TransactionType is the provenance class of a transaction.
type TransactionType string

const (
	TxTypeChange  TransactionType = "change"
	TxTypeSend    TransactionType = "send"
	TxTypeReceive TransactionType = "receive"
)

var (
	changeTags = []string{TagChange, TagChangeKey, TagChangeOutput}
	spendTags  = []string{TagTransparentSpend, TagSaplingSpend, TagOrchardSpend}
	// receiveTags covers every *_output:, *_receive: and *_recipient: tag
	// carrying an address.
	receiveTags = []string{
		TagTransparentOutput, TagTransparentScriptOutput,
		TagSaplingReceive, TagOrchardRecipient,
	}
	sourceTags = []string{
		TagTransparentSpend, TagSaplingSpend, TagOrchardNullifier,
		TagChange, TagChangeKey, TagChangeOutput,
	}
)

// TxFacts is the set of role tagged strings extracted from one
// transaction. It keeps insertion order so that every consumer walks it
// deterministically.
type TxFacts struct {
	items []string
	set   map[string]struct{}
}

func newTxFacts() *TxFacts {
	return &TxFacts{set: make(map[string]struct{})}
}

// NewTxFacts builds a fact set from the given strings.
func NewTxFacts(items ...string) *TxFacts {
	f := newTxFacts()
	for _, item := range items {
		f.add(item)
	}
	return f
}

func (f *TxFacts) add(item string) {
	if _, ok := f.set[item]; ok {
		return
	}
	f.set[item] = struct{}{}
	f.items = append(f.items, item)
}

// addTagged records the bare address and its tagged form.
func (f *TxFacts) addTagged(tag, addr string) {
	f.add(addr)
	f.add(tag + addr)
}

// Has ...
func (f *TxFacts) Has(item string) bool {
	_, ok := f.set[item]
	return ok
}

// HasTag tells whether any string starts with tag.
func (f *TxFacts) HasTag(tag string) bool {
	for _, item := range f.items {
		if strings.HasPrefix(item, tag) {
			return true
		}
	}
	return false
}

// Tagged returns the values of the strings starting with tag, with the tag
// stripped.
func (f *TxFacts) Tagged(tag string) []string {
	values := make([]string, 0)
	for _, item := range f.items {
		if strings.HasPrefix(item, tag) {
			values = append(values, strings.TrimPrefix(item, tag))
		}
	}
	return values
}

// Items returns the strings in insertion order.
func (f *TxFacts) Items() []string {
	items := make([]string, len(f.items))
	copy(items, f.items)
	return items
}

// Len ...
func (f *TxFacts) Len() int {
	return len(f.items)
}

// TransactionType returns the classification recorded in the facts. Facts
// without one are treated as a receive.
func (f *TxFacts) TransactionType() TransactionType {
	for _, t := range []TransactionType{TxTypeChange, TxTypeSend, TxTypeReceive} {
		if f.Has(TagTransactionType + string(t)) {
			return t
		}
	}
	return TxTypeReceive
}

// stripTag returns item without the first of tags it starts with.
func stripTag(item string, tags []string) (string, bool) {
	for _, tag := range tags {
		if strings.HasPrefix(item, tag) {
			return strings.TrimPrefix(item, tag), true
		}
	}
	return "", false
}
