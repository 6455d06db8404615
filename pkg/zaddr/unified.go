package zaddr

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/wire"
)

// Receiver typecodes of ZIP 316.
const (
	TypecodeP2PKH   uint64 = 0x00
	TypecodeP2SH    uint64 = 0x01
	TypecodeSapling uint64 = 0x02
	TypecodeOrchard uint64 = 0x03
)

// Receiver is one typed item of a unified address.
type Receiver struct {
	Typecode uint64
	Data     []byte
}

var receiverLengths = map[uint64]int{
	TypecodeP2PKH:   hashLen,
	TypecodeP2SH:    hashLen,
	TypecodeSapling: saplingPayloadLen,
	TypecodeOrchard: saplingPayloadLen,
}

// EncodeUnified encodes the given receivers as a unified address. The
// receivers are serialized in ascending typecode order.
func EncodeUnified(net Network, receivers []Receiver) (string, error) {
	if err := validateReceivers(receivers); err != nil {
		return "", err
	}
	sorted := make([]Receiver, len(receivers))
	copy(sorted, receivers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Typecode < sorted[j].Typecode
	})

	hrp := net.Params().UnifiedHRP
	var buf bytes.Buffer
	for _, r := range sorted {
		if err := wire.WriteVarInt(&buf, 0, r.Typecode); err != nil {
			return "", err
		}
		if err := wire.WriteVarInt(&buf, 0, uint64(len(r.Data))); err != nil {
			return "", err
		}
		buf.Write(r.Data)
	}
	buf.Write(hrpPadding(hrp))

	jumbled, err := F4Jumble(buf.Bytes())
	if err != nil {
		return "", err
	}
	data, err := bech32.ConvertBits(jumbled, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(hrp, data)
}

// DecodeUnified decodes a unified address string into its network and
// receivers.
func DecodeUnified(s string) (Network, []Receiver, error) {
	addr, err := Decode(s)
	if err != nil {
		return 0, nil, err
	}
	if addr.Kind != KindUnified {
		return 0, nil, fmt.Errorf("%w: not a unified address", ErrUnknownAddress)
	}
	return addr.Net, addr.Receivers, nil
}

// ReceiverOf returns the data of the receiver with the given typecode.
func (a *Address) ReceiverOf(typecode uint64) ([]byte, bool) {
	for _, r := range a.Receivers {
		if r.Typecode == typecode {
			return r.Data, true
		}
	}
	return nil, false
}

func decodeUnifiedPayload(p *Params, data []byte) ([]Receiver, error) {
	jumbled, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, err
	}
	msg, err := F4JumbleInv(jumbled)
	if err != nil {
		return nil, err
	}
	if !hasPadding(msg, p.UnifiedHRP) {
		return nil, ErrInvalidPadding
	}

	r := bytes.NewReader(msg[:len(msg)-16])
	receivers := make([]Receiver, 0)
	for r.Len() > 0 {
		typecode, err := wire.ReadVarInt(r, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidReceivers, err)
		}
		length, err := wire.ReadVarInt(r, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidReceivers, err)
		}
		if length > uint64(r.Len()) {
			return nil, fmt.Errorf("%w: truncated receiver", ErrInvalidReceivers)
		}
		item := make([]byte, length)
		if _, err := io.ReadFull(r, item); err != nil {
			return nil, err
		}
		receivers = append(receivers, Receiver{Typecode: typecode, Data: item})
	}

	if err := validateReceivers(receivers); err != nil {
		return nil, err
	}
	return receivers, nil
}

func validateReceivers(receivers []Receiver) error {
	if len(receivers) == 0 {
		return fmt.Errorf("%w: no receivers", ErrInvalidReceivers)
	}
	seen := make(map[uint64]struct{}, len(receivers))
	for _, r := range receivers {
		if _, ok := seen[r.Typecode]; ok {
			return fmt.Errorf(
				"%w: duplicate typecode %d", ErrInvalidReceivers, r.Typecode,
			)
		}
		seen[r.Typecode] = struct{}{}

		if want, ok := receiverLengths[r.Typecode]; ok && len(r.Data) != want {
			return fmt.Errorf(
				"%w: typecode %d has length %d", ErrInvalidReceivers,
				r.Typecode, len(r.Data),
			)
		}
	}
	_, hasP2PKH := seen[TypecodeP2PKH]
	_, hasP2SH := seen[TypecodeP2SH]
	if hasP2PKH && hasP2SH {
		return fmt.Errorf("%w: both p2pkh and p2sh receivers", ErrInvalidReceivers)
	}
	return nil
}
