// internal/store/badger.go
//
// cache.Storage backed by an embedded BadgerDB, for deployments that keep
// cache snapshots outside the main SQLite file. Keys are "cache/<name>".

package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/robalobadob/linkdle/internal/cache"
)

const badgerKeyPrefix = "cache/"

// OpenBadger opens a BadgerDB at path, or an in-memory one when path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// BadgerSnapshots stores cache snapshots in BadgerDB.
type BadgerSnapshots struct {
	db *badger.DB
}

// NewBadgerSnapshots wraps an open BadgerDB.
func NewBadgerSnapshots(db *badger.DB) *BadgerSnapshots {
	return &BadgerSnapshots{db: db}
}

// Load returns the snapshot stored under name, or cache.ErrNoSnapshot.
func (b *BadgerSnapshots) Load(_ context.Context, name string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, cache.ErrNoSnapshot
	}
	return data, err
}

// Save replaces the snapshot for name.
func (b *BadgerSnapshots) Save(_ context.Context, name string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+name), data)
	})
}
