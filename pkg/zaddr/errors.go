package zaddr

import "errors"

var (
	// ErrUnknownNetwork ...
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrUnknownAddress is returned when a string does not match any known
	// zcash address encoding.
	ErrUnknownAddress = errors.New("unrecognized address encoding")
	// ErrInvalidPayloadLength ...
	ErrInvalidPayloadLength = errors.New("invalid address payload length")
	// ErrWrongChecksumVariant is returned when a bech32 string uses bech32m
	// where bech32 is expected, or the other way round.
	ErrWrongChecksumVariant = errors.New("wrong bech32 checksum variant")
	// ErrInvalidReceivers ...
	ErrInvalidReceivers = errors.New("invalid unified address receivers")
	// ErrInvalidPadding ...
	ErrInvalidPadding = errors.New("invalid unified address padding")
	// ErrF4JumbleLength ...
	ErrF4JumbleLength = errors.New("f4jumble message length out of range")
)
