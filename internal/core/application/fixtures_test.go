package application_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

var (
	fpAccount0 = domain.AccountKey{0xa0}
	fpAccount1 = domain.AccountKey{0xa1}
	fpAccount2 = domain.AccountKey{0xa2}
	seedFp     = []byte{0x5e, 0xed}
)

type walletBuilder struct {
	t *testing.T
	w *legacy.Wallet
}

func newWalletBuilder(t *testing.T) *walletBuilder {
	t.Helper()
	return &walletBuilder{t, legacy.NewWallet(zaddr.MainNet)}
}

func (b *walletBuilder) unifiedAccount(
	fp domain.AccountKey, id uint32, seed []byte, ufvk string,
) *walletBuilder {
	b.w.UnifiedAccounts.AccountMetadata[fp] = &legacy.UnifiedAccountMetadata{
		UFVKFingerprint: fp,
		SeedFingerprint: seed,
		CoinType:        133,
		AccountID:       id,
	}
	if ufvk != "" {
		b.w.UnifiedAccounts.FullViewingKeys[fp] = ufvk
	}
	return b
}

// key adds a transparent key derived from seed with the given metadata and
// records its address in the address book. It returns the public key and
// the address.
func (b *walletBuilder) key(seed byte, path string, seedFp []byte) ([]byte, string) {
	b.t.Helper()

	pubkey := newPubKey(seed)
	b.w.Keys[hex.EncodeToString(pubkey)] = &legacy.Key{
		PubKey: pubkey,
		Metadata: &legacy.KeyMetadata{
			Version:         legacy.KeyMetadataHDVersion,
			HDKeyPath:       path,
			SeedFingerprint: seedFp,
		},
	}
	addr := p2pkhAddress(b.t, pubkey)
	b.w.AddressNames[addr] = ""
	return pubkey, addr
}

// sapling adds a sapling address derived from ivk. The spending key is
// recorded only when withKey is set.
func (b *walletBuilder) sapling(seed byte, ivk string, withKey bool) string {
	b.t.Helper()

	addr := saplingAddress(b.t, seed)
	b.w.SaplingAddresses[addr] = ivk
	if withKey {
		b.w.SaplingKeys[ivk] = []byte{0x5c, seed}
	}
	return addr
}

func (b *walletBuilder) tx(tx *legacy.WalletTx) *walletBuilder {
	b.t.Helper()
	if tx.SaplingNoteData == nil {
		tx.SaplingNoteData = make(map[legacy.SaplingOutPoint]*legacy.SaplingNoteData)
	}
	require.NoError(b.t, b.w.Transactions.Add(tx))
	return b
}

func (b *walletBuilder) wallet() *legacy.Wallet {
	return b.w
}

func newPubKey(seed byte) []byte {
	priv, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	return priv.PubKey().SerializeCompressed()
}

func p2pkhAddress(t *testing.T, pubkey []byte) string {
	t.Helper()
	addr, err := zaddr.EncodeP2PKH(zaddr.MainNet, btcutil.Hash160(pubkey))
	require.NoError(t, err)
	return addr
}

func p2pkhAddressForHash(t *testing.T, seed byte) string {
	t.Helper()
	addr, err := zaddr.EncodeP2PKH(zaddr.MainNet, bytes.Repeat([]byte{seed}, 20))
	require.NoError(t, err)
	return addr
}

func saplingAddress(t *testing.T, seed byte) string {
	t.Helper()
	addr, err := zaddr.EncodeSapling(zaddr.MainNet, bytes.Repeat([]byte{seed}, 43))
	require.NoError(t, err)
	return addr
}

func txID(name string) chainhash.Hash {
	return chainhash.DoubleHashH([]byte(name))
}

func commitment(b byte) [32]byte {
	return [32]byte{b, 0xcc}
}

// spendInput spends a P2PKH output with a signature followed by pubkey.
func spendInput(t *testing.T, prev string, pubkey []byte) *wire.TxIn {
	t.Helper()
	prevHash := txID(prev)
	sigScript, err := txscript.NewScriptBuilder().
		AddData(bytes.Repeat([]byte{0x30}, 71)).
		AddData(pubkey).
		Script()
	require.NoError(t, err)
	return wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), sigScript, nil)
}

func p2pkhOutput(t *testing.T, addr string, value int64) *wire.TxOut {
	t.Helper()
	decoded, err := zaddr.Decode(addr)
	require.NoError(t, err)
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(decoded.Payload).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	return wire.NewTxOut(value, script)
}
