// Package authflag persists the last known shopper authentication state so a
// freshly started widget can decide whether to issue its lookups before the
// session source has answered.
package authflag

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// DefaultNamespace prefixes the storage key.
const DefaultNamespace = "b2b-organizations"

const keySuffix = "_isAuthenticated"

// Storage is a string key/value persistence medium, modelled on browser
// localStorage. GetItem reports ok=false when the key is absent.
type Storage interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
}

// Store holds the authentication flag in memory and mirrors every write to a
// Storage. Storage failures never surface to callers.
type Store struct {
	storage Storage
	key     string
	logger  *slog.Logger

	mu    sync.RWMutex
	value bool
}

// New returns a Store seeded from storage. A missing key, an unreadable
// storage, or a value that is not a JSON boolean seeds false.
func New(storage Storage, namespace string, logger *slog.Logger) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage: storage,
		key:     Key(namespace),
		logger:  logger,
	}
	s.value = s.load()
	return s
}

// Key returns the storage key for a namespace.
func Key(namespace string) string {
	return namespace + keySuffix
}

// Key returns the storage key this store reads and writes.
func (s *Store) Key() string {
	return s.key
}

// Read returns the current flag.
func (s *Store) Read() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Write sets the flag and persists it. The in-memory value is updated even
// when persisting fails.
func (s *Store) Write(value bool) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()

	if s.storage == nil {
		return
	}
	data, _ := json.Marshal(value)
	if err := s.storage.SetItem(s.key, string(data)); err != nil {
		s.logger.Debug("auth flag not persisted", "key", s.key, "err", err)
	}
}

// Reload re-reads the flag from storage, replacing the in-memory value.
func (s *Store) Reload() bool {
	v := s.load()
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	return v
}

func (s *Store) load() bool {
	if s.storage == nil {
		return false
	}
	raw, ok, err := s.storage.GetItem(s.key)
	if err != nil {
		s.logger.Debug("auth flag storage unavailable", "key", s.key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	return Parse(raw)
}

// Parse decodes a persisted flag. Anything other than a JSON boolean is false.
func Parse(raw string) bool {
	var v *bool
	if err := json.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return false
	}
	return *v
}
