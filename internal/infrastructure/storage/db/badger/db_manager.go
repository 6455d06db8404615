package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"
	"github.com/zewif/zcashd-migrate/internal/core/ports"
)

// DbManager holds the badgerhold store of the export.
type DbManager struct {
	Store *badgerhold.Store
}

// NewDbManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. An empty dir opens an
// in-memory store.
func NewDbManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	dir := ""
	if baseDbDir != "" {
		dir = filepath.Join(baseDbDir, "export")
	}
	store, err := createDb(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening export db: %w", err)
	}
	return &DbManager{store}, nil
}

// ExportRepository ...
func (d *DbManager) ExportRepository() ports.ExportRepository {
	return NewExportRepositoryImpl(d)
}

// Close ...
func (d *DbManager) Close() {
	d.Store.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	var opts badger.Options
	if dbDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dbDir)
		opts.Compression = options.ZSTD
	}
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
