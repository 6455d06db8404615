package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedAddressKind is returned for address encodings that have
	// no identity in the export, like TEX addresses.
	ErrUnsupportedAddressKind = errors.New("unsupported address kind")
	// ErrInvalidAddressID ...
	ErrInvalidAddressID = errors.New("invalid address identity")
	// ErrInvalidAccountKey ...
	ErrInvalidAccountKey = errors.New("account key must be 32 bytes hex encoded")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound ...
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrExportNotFound is returned by stores that hold no export yet.
	ErrExportNotFound = errors.New("export not found")
	// ErrStructuralMismatch is the root of every StructuralError.
	ErrStructuralMismatch = errors.New("structural mismatch in wallet data")
)

// StructuralError reports decoded wallet data that violates an invariant
// the decoder is expected to guarantee. It always aborts a migration.
type StructuralError struct {
	// Record is the kind of record involved, e.g. "key" or "tx".
	Record string
	// Key identifies the offending record.
	Key string
	Err error
}

// NewStructuralError ...
func NewStructuralError(record, key string, err error) *StructuralError {
	return &StructuralError{Record: record, Key: key, Err: err}
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s record %s: %s", e.Record, e.Key, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// Is makes every StructuralError match ErrStructuralMismatch.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructuralMismatch
}
