package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
)

// Backend names accepted by Open.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// Store persists daily records keyed by date ("YYYY-MM-DD") and the active range.
// Saving the same records twice leaves the store unchanged.
type Store interface {
	// LoadDay returns the stored record for date, or nil if none exists.
	LoadDay(date string) (*model.Record, error)
	// SaveRecords upserts every non-empty record. An empty record only
	// overwrites a day that is already stored.
	SaveRecords(records []model.Record) error
	// LoadRange returns the stored records in [from, to] ordered by date.
	LoadRange(from, to string) ([]model.Record, error)
	// LoadAll returns every stored record ordered by date.
	LoadAll() ([]model.Record, error)
	// DeleteBefore removes every day strictly before date and reports how many.
	DeleteBefore(date string) (int, error)
	LoadActiveRange() (*model.ActiveRange, error)
	SaveActiveRange(r model.ActiveRange) error
	Close() error
}

// BaseDir returns the root data directory (~/.atc, or $ATC_HOME).
func BaseDir() (string, error) {
	if dir := os.Getenv("ATC_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".atc"), nil
}

// Open returns the store for backend. sqlitePath defaults to base/atc.db.
func Open(backend, base, sqlitePath string) (Store, error) {
	switch backend {
	case "", BackendFiles:
		return NewFileStore(base), nil
	case BackendSQLite:
		if sqlitePath == "" {
			sqlitePath = filepath.Join(base, "atc.db")
		}
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
		return NewSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
