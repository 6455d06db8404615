package zaddr_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

func TestTransparentEncoding(t *testing.T) {
	t.Parallel()

	hash := bytes.Repeat([]byte{0x42}, 20)

	tests := []struct {
		name     string
		net      zaddr.Network
		encode   func(zaddr.Network, []byte) (string, error)
		prefix   string
		kind     zaddr.Kind
		expected zaddr.Network
	}{
		{"mainnet p2pkh", zaddr.MainNet, zaddr.EncodeP2PKH, "t1", zaddr.KindP2PKH, zaddr.MainNet},
		{"mainnet p2sh", zaddr.MainNet, zaddr.EncodeP2SH, "t3", zaddr.KindP2SH, zaddr.MainNet},
		{"testnet p2pkh", zaddr.TestNet, zaddr.EncodeP2PKH, "tm", zaddr.KindP2PKH, zaddr.TestNet},
		{"testnet p2sh", zaddr.TestNet, zaddr.EncodeP2SH, "t2", zaddr.KindP2SH, zaddr.TestNet},
		{"regtest p2pkh", zaddr.RegTest, zaddr.EncodeP2PKH, "tm", zaddr.KindP2PKH, zaddr.TestNet},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := tt.encode(tt.net, hash)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(encoded, tt.prefix), encoded)

			addr, err := zaddr.Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, tt.kind, addr.Kind)
			require.Equal(t, tt.expected, addr.Net)
			require.Equal(t, hash, addr.Payload)
			require.Equal(t, encoded, addr.Encoded)
		})
	}
}

func TestSproutEncoding(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0x07}, 64)

	main, err := zaddr.EncodeSprout(zaddr.MainNet, payload)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(main, "zc"))

	test, err := zaddr.EncodeSprout(zaddr.TestNet, payload)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(test, "zt"))

	addr, err := zaddr.Decode(main)
	require.NoError(t, err)
	require.Equal(t, zaddr.KindSprout, addr.Kind)
	require.Equal(t, payload, addr.Payload)

	_, err = zaddr.EncodeSprout(zaddr.MainNet, payload[:10])
	require.ErrorIs(t, err, zaddr.ErrInvalidPayloadLength)
}

func TestSaplingEncoding(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0xab}, 43)

	for _, net := range []zaddr.Network{zaddr.MainNet, zaddr.TestNet, zaddr.RegTest} {
		encoded, err := zaddr.EncodeSapling(net, payload)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(encoded, net.Params().SaplingHRP+"1"))

		addr, err := zaddr.Decode(encoded)
		require.NoError(t, err)
		require.Equal(t, zaddr.KindSapling, addr.Kind)
		require.Equal(t, net, addr.Net)
		require.Equal(t, payload, addr.Payload)
	}

	_, err := zaddr.EncodeSapling(zaddr.MainNet, payload[:42])
	require.ErrorIs(t, err, zaddr.ErrInvalidPayloadLength)
}

func TestSaplingRejectsBech32m(t *testing.T) {
	t.Parallel()

	data, err := bech32.ConvertBits(bytes.Repeat([]byte{0x01}, 43), 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.EncodeM("zs", data)
	require.NoError(t, err)

	_, err = zaddr.Decode(encoded)
	require.ErrorIs(t, err, zaddr.ErrWrongChecksumVariant)
}

func TestTexClassification(t *testing.T) {
	t.Parallel()

	data, err := bech32.ConvertBits(bytes.Repeat([]byte{0x09}, 20), 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.EncodeM("tex", data)
	require.NoError(t, err)

	addr, err := zaddr.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, zaddr.KindTex, addr.Kind)
	require.Equal(t, zaddr.MainNet, addr.Net)
}

func TestUnifiedEncoding(t *testing.T) {
	t.Parallel()

	orchard := bytes.Repeat([]byte{0x03}, 43)
	sapling := bytes.Repeat([]byte{0x02}, 43)
	p2pkh := bytes.Repeat([]byte{0x00}, 20)

	tests := []struct {
		name      string
		net       zaddr.Network
		receivers []zaddr.Receiver
	}{
		{
			name: "orchard only",
			net:  zaddr.MainNet,
			receivers: []zaddr.Receiver{
				{Typecode: zaddr.TypecodeOrchard, Data: orchard},
			},
		},
		{
			name: "transparent only",
			net:  zaddr.TestNet,
			receivers: []zaddr.Receiver{
				{Typecode: zaddr.TypecodeP2PKH, Data: p2pkh},
			},
		},
		{
			name: "all pools unsorted",
			net:  zaddr.RegTest,
			receivers: []zaddr.Receiver{
				{Typecode: zaddr.TypecodeOrchard, Data: orchard},
				{Typecode: zaddr.TypecodeP2PKH, Data: p2pkh},
				{Typecode: zaddr.TypecodeSapling, Data: sapling},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := zaddr.EncodeUnified(tt.net, tt.receivers)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(encoded, tt.net.Params().UnifiedHRP+"1"))

			net, receivers, err := zaddr.DecodeUnified(encoded)
			require.NoError(t, err)
			require.Equal(t, tt.net, net)
			require.Len(t, receivers, len(tt.receivers))
			for i := 1; i < len(receivers); i++ {
				require.Less(t, receivers[i-1].Typecode, receivers[i].Typecode)
			}
			for _, want := range tt.receivers {
				addr, err := zaddr.Decode(encoded)
				require.NoError(t, err)
				got, ok := addr.ReceiverOf(want.Typecode)
				require.True(t, ok)
				require.Equal(t, want.Data, got)
			}
		})
	}
}

func TestUnifiedInvalidReceivers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		receivers []zaddr.Receiver
	}{
		{"empty", nil},
		{"bad length", []zaddr.Receiver{
			{Typecode: zaddr.TypecodeSapling, Data: make([]byte, 42)},
		}},
		{"duplicate", []zaddr.Receiver{
			{Typecode: zaddr.TypecodeOrchard, Data: make([]byte, 43)},
			{Typecode: zaddr.TypecodeOrchard, Data: make([]byte, 43)},
		}},
		{"p2pkh and p2sh", []zaddr.Receiver{
			{Typecode: zaddr.TypecodeP2PKH, Data: make([]byte, 20)},
			{Typecode: zaddr.TypecodeP2SH, Data: make([]byte, 20)},
		}},
	}

	for _, tt := range tests {
		_, err := zaddr.EncodeUnified(zaddr.MainNet, tt.receivers)
		require.ErrorIs(t, err, zaddr.ErrInvalidReceivers, tt.name)
	}
}

func TestUnifiedChecksumMustBeBech32m(t *testing.T) {
	t.Parallel()

	data, err := bech32.ConvertBits(bytes.Repeat([]byte{0x05}, 60), 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.Encode("u", data)
	require.NoError(t, err)

	_, err = zaddr.Decode(encoded)
	require.ErrorIs(t, err, zaddr.ErrWrongChecksumVariant)
}

func TestUnifiedRejectsForeignPadding(t *testing.T) {
	t.Parallel()

	// A bech32m string under the unified HRP whose payload was never
	// jumbled cannot carry the HRP padding.
	data, err := bech32.ConvertBits(bytes.Repeat([]byte{0x05}, 60), 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.EncodeM("u", data)
	require.NoError(t, err)

	_, err = zaddr.Decode(encoded)
	require.ErrorIs(t, err, zaddr.ErrInvalidPadding)
}

func TestF4Jumble(t *testing.T) {
	t.Parallel()

	for _, size := range []int{38, 48, 128, 129, 200, 1000} {
		msg := make([]byte, size)
		for i := range msg {
			msg[i] = byte(i * 7)
		}

		jumbled, err := zaddr.F4Jumble(msg)
		require.NoError(t, err)
		require.Len(t, jumbled, size)
		require.NotEqual(t, msg, jumbled)

		restored, err := zaddr.F4JumbleInv(jumbled)
		require.NoError(t, err)
		require.Equal(t, msg, restored)
	}

	_, err := zaddr.F4Jumble(make([]byte, 37))
	require.ErrorIs(t, err, zaddr.ErrF4JumbleLength)
}

func TestKnownAddresses(t *testing.T) {
	t.Parallel()

	t.Run("zero p2pkh", func(t *testing.T) {
		t.Parallel()

		encoded, err := zaddr.EncodeP2PKH(zaddr.MainNet, make([]byte, 20))
		require.NoError(t, err)
		require.Equal(t, "t1Hsc1LR8yKnbbe3twRp88p6vFfC5t7DLbs", encoded)
	})

	t.Run("mainnet unified", func(t *testing.T) {
		t.Parallel()

		addr, err := zaddr.Decode(mainnetUA)
		require.NoError(t, err)
		require.Equal(t, zaddr.KindUnified, addr.Kind)
		require.Equal(t, zaddr.MainNet, addr.Net)
		require.Len(t, addr.Receivers, 3)

		p2pkh, ok := addr.ReceiverOf(zaddr.TypecodeP2PKH)
		require.True(t, ok)
		require.Equal(t, mustHex(t, "8d653347a0fd3cd0842a790a5eaf89d8e3854659"), p2pkh)

		sapling, ok := addr.ReceiverOf(zaddr.TypecodeSapling)
		require.True(t, ok)
		require.Equal(t, mustHex(t,
			"e1adf156a07d56bcac91bdb2f7bb3ea7c44569dcfee54273c09e8065807b6823faa94a77219554d0f6e017",
		), sapling)

		orchard, ok := addr.ReceiverOf(zaddr.TypecodeOrchard)
		require.True(t, ok)
		require.Equal(t, mustHex(t,
			"24f8a60cbd97e012618d56054ad39241411a28fdd50ee35efa91152f60d5fa21172e5d458ddbcb6b709896",
		), orchard)

		encoded, err := zaddr.EncodeUnified(zaddr.MainNet, addr.Receivers)
		require.NoError(t, err)
		require.Equal(t, mainnetUA, encoded)

		// The transparent receiver is the same key as this t-address.
		taddr, err := zaddr.EncodeP2PKH(zaddr.MainNet, p2pkh)
		require.NoError(t, err)
		require.Equal(t, "t1WmEWuRKGcfi8iG3HxGNg3okswsdB54EXn", taddr)
	})

	t.Run("f4jumble", func(t *testing.T) {
		t.Parallel()

		msg := make([]byte, 48)
		for i := range msg {
			msg[i] = byte(i)
		}
		want := mustHex(t, "ad89bfac63c78b1cc325661c40cc56b291cf50be748dba7b"+
			"c0b74851fc87ac797da311647be438dcd8df735a3361a8d1")

		jumbled, err := zaddr.F4Jumble(msg)
		require.NoError(t, err)
		require.Equal(t, want, jumbled)
	})
}

const mainnetUA = "u19mzuf4l37ny393m59v4mxx4t3uyxkh7qpqjdfvlfk9f504cv9w4fpl7cql0kqvssz8jay8mgl8l" +
	"nrtvg6yzh9pranjj963acc3h2z2qt7007du0lsmdf862dyy40c3wmt0kq35k5z836tfljgzsqtdsccchayfjpygq" +
	"zkx24l77ga3ngfgskqddyepz8we7ny4ggmt7q48cgvgu57mz"

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecodeUnknown(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "hello", "t1notanaddress", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"} {
		_, err := zaddr.Decode(s)
		require.Error(t, err, s)
	}
}

func TestParseNetwork(t *testing.T) {
	t.Parallel()

	net, err := zaddr.ParseNetwork("MainNet")
	require.NoError(t, err)
	require.Equal(t, zaddr.MainNet, net)

	net, err = zaddr.ParseNetwork("regtest")
	require.NoError(t, err)
	require.Equal(t, zaddr.RegTest, net)

	_, err = zaddr.ParseNetwork("signet")
	require.ErrorIs(t, err, zaddr.ErrUnknownNetwork)
}
