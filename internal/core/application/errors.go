package application

import "errors"

var (
	// ErrMalformedScript is returned when a transparent input script cannot
	// be tokenized.
	ErrMalformedScript = errors.New("malformed transparent script")
	// ErrInvalidRecipient ...
	ErrInvalidRecipient = errors.New("invalid recipient address")
	// ErrNilWallet ...
	ErrNilWallet = errors.New("wallet must not be nil")
	// ErrUnknownEmptyTreePolicy ...
	ErrUnknownEmptyTreePolicy = errors.New("unknown empty tree policy")
)
