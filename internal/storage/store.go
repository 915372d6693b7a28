// Package storage provides the small key-value slots the journal persists
// its history into.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by Get when a slot has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is a synchronous key-value store with a single writer.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const sqliteFileName = "souljournal.db"

// Open builds the store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(dir), nil
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, sqliteFileName))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Location describes where backend keeps its data, for status lines.
func Location(backend, dir string) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(dir, sqliteFileName)
	case BackendMemory:
		return "memory"
	default:
		return dir
	}
}
