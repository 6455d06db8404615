package zaddr

import (
	"encoding/binary"

	blake2b "github.com/minio/blake2b-simd"
)

const (
	minF4JumbleLen = 38
	maxF4JumbleLen = 4194368
	f4HashLen      = 64
)

var (
	f4PersonH = []byte("UA_F4Jumble_H")
	f4PersonG = []byte("UA_F4Jumble_G")
)

// F4Jumble applies the unkeyed 4-round Feistel permutation of ZIP 316 to m.
func F4Jumble(m []byte) ([]byte, error) {
	if err := checkF4JumbleLen(m); err != nil {
		return nil, err
	}
	lenL := leftLen(len(m))
	a, b := clone(m[:lenL]), clone(m[lenL:])

	if err := xorG(b, 0, a); err != nil {
		return nil, err
	}
	if err := xorH(a, 0, b); err != nil {
		return nil, err
	}
	if err := xorG(b, 1, a); err != nil {
		return nil, err
	}
	if err := xorH(a, 1, b); err != nil {
		return nil, err
	}

	return append(a, b...), nil
}

// F4JumbleInv reverts F4Jumble.
func F4JumbleInv(m []byte) ([]byte, error) {
	if err := checkF4JumbleLen(m); err != nil {
		return nil, err
	}
	lenL := leftLen(len(m))
	c, d := clone(m[:lenL]), clone(m[lenL:])

	if err := xorH(c, 1, d); err != nil {
		return nil, err
	}
	if err := xorG(d, 1, c); err != nil {
		return nil, err
	}
	if err := xorH(c, 0, d); err != nil {
		return nil, err
	}
	if err := xorG(d, 0, c); err != nil {
		return nil, err
	}

	return append(c, d...), nil
}

func checkF4JumbleLen(m []byte) error {
	if len(m) < minF4JumbleLen || len(m) > maxF4JumbleLen {
		return ErrF4JumbleLength
	}
	return nil
}

func leftLen(n int) int {
	if n/2 < f4HashLen {
		return n / 2
	}
	return f4HashLen
}

// xorH xors dst (the left half) with H_i(u).
func xorH(dst []byte, i byte, u []byte) error {
	person := append(clone(f4PersonH), i, 0, 0)
	h, err := blake2b.New(&blake2b.Config{
		Size:   uint8(len(dst)),
		Person: person,
	})
	if err != nil {
		return err
	}
	h.Write(u)
	xorInto(dst, h.Sum(nil))
	return nil
}

// xorG xors dst (the right half) with G_i(u), the concatenation of as many
// 64-byte blocks as needed truncated to len(dst).
func xorG(dst []byte, i byte, u []byte) error {
	for j := 0; j*f4HashLen < len(dst); j++ {
		person := append(clone(f4PersonG), i, 0, 0)
		binary.LittleEndian.PutUint16(person[len(person)-2:], uint16(j))

		h, err := blake2b.New(&blake2b.Config{
			Size:   f4HashLen,
			Person: person,
		})
		if err != nil {
			return err
		}
		h.Write(u)

		end := (j + 1) * f4HashLen
		if end > len(dst) {
			end = len(dst)
		}
		xorInto(dst[j*f4HashLen:end], h.Sum(nil))
	}
	return nil
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
