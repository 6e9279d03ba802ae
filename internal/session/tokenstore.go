package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// TokenStore persists the bearer token across process restarts. The token
// is the only client state that survives a restart.
type TokenStore interface {
	Get() (string, error)
	Put(token string) error
	Clear() error
	Close() error
}

var (
	sessionBucket = []byte("session")
	tokenKey      = []byte("token")
)

// BoltTokenStore keeps the token in a local BoltDB file under a single
// well-known key.
type BoltTokenStore struct {
	db *bolt.DB
}

// OpenBolt initializes the BoltDB file and ensures the session bucket exists.
func OpenBolt(path string) (*BoltTokenStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltTokenStore{db: db}, nil
}

// Get returns the persisted token, or "" when none is stored.
func (s *BoltTokenStore) Get() (string, error) {
	if s == nil || s.db == nil {
		return "", bolt.ErrDatabaseNotOpen
	}
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		if value := tx.Bucket(sessionBucket).Get(tokenKey); value != nil {
			token = string(value)
		}
		return nil
	})
	return token, err
}

// Put stores the token.
func (s *BoltTokenStore) Put(token string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(tokenKey, []byte(token))
	})
}

// Clear removes the token.
func (s *BoltTokenStore) Clear() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(tokenKey)
	})
}

// Close closes the underlying database.
func (s *BoltTokenStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MemoryTokenStore is an in-memory TokenStore for tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

// Get returns the stored token.
func (m *MemoryTokenStore) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Put stores the token.
func (m *MemoryTokenStore) Put(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear removes the token.
func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Close is a no-op.
func (m *MemoryTokenStore) Close() error { return nil }
