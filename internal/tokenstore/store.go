// Package tokenstore keeps the client's single session token in a persistent
// key/value store. The presence of a token is the only "logged in" signal.
package tokenstore

import (
	"fmt"
	"log"

	"github.com/mrlokans/authclient/internal/config"
)

// Key is the fixed name the session token is stored under.
const Key = "token"

// Store holds at most one session token.
type Store interface {
	// Get returns the stored token; ok is false when none is stored.
	Get() (token string, ok bool, err error)
	// Set persists token, overwriting any prior value.
	Set(token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear() error
}

// IsLoggedIn reports whether s currently holds a token.
// A store that cannot be read counts as logged out.
func IsLoggedIn(s Store) bool {
	_, ok, err := s.Get()
	if err != nil {
		log.Printf("tokenstore: failed to read token: %v", err)
		return false
	}
	return ok
}

// New creates the Store selected by cfg.Backend.
func New(cfg config.TokenStore) (Store, error) {
	switch cfg.Backend {
	case config.TokenBackendMemory:
		return NewMemoryStore(), nil
	case config.TokenBackendFile, "":
		return NewFileStore(cfg.FilePath), nil
	case config.TokenBackendSQLite:
		store, err := NewSQLiteStore(SQLiteConfig{
			DatabasePath:  cfg.DatabasePath,
			EncryptionKey: cfg.EncryptionKey,
			KeyFilePath:   cfg.KeyFilePath,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown token store backend %q", cfg.Backend)
	}
}
