package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hexBytes is a byte slice encoded as a hex JSON string.
type hexBytes []byte

func (h *hexBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

func (h hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// hash32 is a 32 byte value encoded as a hex JSON string.
type hash32 [32]byte

func (h *hash32) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var b hexBytes
	if err := b.UnmarshalJSON(data); err != nil {
		return err
	}
	if len(b) != len(h) {
		return fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return nil
}

func (h hash32) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h[:]))
}

type walletJSON struct {
	Network                   string                `json:"network"`
	AddressBook               []addressBookEntry    `json:"address_book"`
	Keys                      []keyJSON             `json:"keys"`
	SaplingKeys               []saplingKeyJSON      `json:"sapling_keys"`
	SaplingAddresses          []saplingAddressJSON  `json:"sapling_addresses"`
	UnifiedAccounts           []unifiedAccountJSON  `json:"unified_accounts"`
	UnifiedAddressMetadata    []unifiedAddrMetaJSON `json:"unified_address_metadata"`
	Transactions              []transactionJSON     `json:"transactions"`
	Recipients                []recipientJSON       `json:"recipients"`
	OrchardNoteCommitmentTree hexBytes              `json:"orchard_note_commitment_tree"`
	Bip39Mnemonic             *mnemonicJSON         `json:"mnemonic_phrase"`
}

type mnemonicJSON struct {
	Language        uint32   `json:"language"`
	Phrase          string   `json:"mnemonic"`
	SeedFingerprint hexBytes `json:"seed_fp"`
}

type addressBookEntry struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

type keyJSON struct {
	PubKey   hexBytes     `json:"pubkey"`
	Metadata *keyMetaJSON `json:"metadata"`
}

type keyMetaJSON struct {
	Version         int32    `json:"version"`
	CreateTime      int64    `json:"create_time"`
	HDKeyPath       string   `json:"hd_keypath"`
	SeedFingerprint hexBytes `json:"seed_fp"`
}

type saplingKeyJSON struct {
	IncomingViewingKey hexBytes `json:"ivk"`
	SpendingKey        hexBytes `json:"extsk"`
}

type saplingAddressJSON struct {
	Address            string   `json:"address"`
	IncomingViewingKey hexBytes `json:"ivk"`
}

type unifiedAccountJSON struct {
	UFVKFingerprint hash32   `json:"ufvk_fingerprint"`
	SeedFingerprint hexBytes `json:"seed_fingerprint"`
	CoinType        uint32   `json:"coin_type"`
	AccountID       uint32   `json:"account_id"`
	UFVK            string   `json:"ufvk"`
}

type unifiedAddrMetaJSON struct {
	UFVKFingerprint  hash32   `json:"ufvk_fingerprint"`
	DiversifierIndex hexBytes `json:"diversifier_index"`
	ReceiverTypes    []string `json:"receiver_types"`
}

type transactionJSON struct {
	TxID           string              `json:"txid"`
	BlockHash      string              `json:"block_hash"`
	TimeReceived   int64               `json:"time_received"`
	FromMe         bool                `json:"from_me"`
	Inputs         []txInputJSON       `json:"inputs"`
	Outputs        []txOutputJSON      `json:"outputs"`
	SaplingSpends  []saplingSpendJSON  `json:"sapling_spends"`
	SaplingOutputs []saplingOutputJSON `json:"sapling_outputs"`
	SaplingNotes   []saplingNoteJSON   `json:"sapling_note_data"`
	JoinSplits     []joinSplitJSON     `json:"joinsplits"`
	OrchardActions []orchardActionJSON `json:"orchard_actions"`
	OrchardMeta    *orchardMetaJSON    `json:"orchard_meta"`
	Raw            hexBytes            `json:"raw"`
}

type txInputJSON struct {
	PrevTxID  string   `json:"prev_txid"`
	PrevIndex uint32   `json:"prev_index"`
	ScriptSig hexBytes `json:"script_sig"`
	Sequence  uint32   `json:"sequence"`
}

type txOutputJSON struct {
	Value        int64    `json:"value"`
	ScriptPubKey hexBytes `json:"script_pubkey"`
}

type saplingSpendJSON struct {
	ValueCommitment hash32   `json:"cv"`
	Anchor          hash32   `json:"anchor"`
	Nullifier       hash32   `json:"nullifier"`
	Rk              hash32   `json:"rk"`
	ZkProof         hexBytes `json:"zkproof"`
	SpendAuthSig    hexBytes `json:"spend_auth_sig"`
}

type saplingOutputJSON struct {
	ValueCommitment hash32   `json:"cv"`
	Commitment      hash32   `json:"cmu"`
	EphemeralKey    hash32   `json:"ephemeral_key"`
	EncCiphertext   hexBytes `json:"enc_ciphertext"`
	OutCiphertext   hexBytes `json:"out_ciphertext"`
	ZkProof         hexBytes `json:"zkproof"`
}

type saplingNoteJSON struct {
	Index              uint32     `json:"index"`
	IncomingViewingKey hexBytes   `json:"ivk"`
	Nullifier          *hash32    `json:"nullifier"`
	Witnesses          []hexBytes `json:"witnesses"`
	WitnessHeight      int32      `json:"witness_height"`
}

type joinSplitJSON struct {
	VPubOld     uint64    `json:"vpub_old"`
	VPubNew     uint64    `json:"vpub_new"`
	Anchor      hash32    `json:"anchor"`
	Nullifiers  [2]hash32 `json:"nullifiers"`
	Commitments [2]hash32 `json:"commitments"`
}

type orchardActionJSON struct {
	ValueCommitment hash32   `json:"cv"`
	Nullifier       hash32   `json:"nullifier"`
	Rk              hash32   `json:"rk"`
	Commitment      hash32   `json:"cmx"`
	EphemeralKey    hash32   `json:"ephemeral_key"`
	EncCiphertext   hexBytes `json:"enc_ciphertext"`
	OutCiphertext   hexBytes `json:"out_ciphertext"`
}

type orchardMetaJSON struct {
	ReceivingKeys   []orchardReceivingKeyJSON `json:"receiving_keys"`
	SpendingMyNotes []uint32                  `json:"spending_my_notes"`
}

type orchardReceivingKeyJSON struct {
	ActionIndex        uint32   `json:"action_index"`
	IncomingViewingKey hexBytes `json:"ivk"`
}

type recipientJSON struct {
	TxID           string   `json:"txid"`
	UnifiedAddress string   `json:"unified_address"`
	Kind           string   `json:"kind"`
	Receiver       hexBytes `json:"receiver"`
}
