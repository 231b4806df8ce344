package sessionx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists session tokens under string keys. Implementations
// treat a missing key as ("", nil), not an error: an absent session is a
// normal state.
type TokenStore interface {
	Load(key string) (string, error)
	Save(key, token string) error
	Clear(key string) error
}

// ============================================================================
// MemoryStore
// ============================================================================

// MemoryStore keeps tokens in process memory. Useful for tests and for
// applications that do not want sessions to survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Load(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[key], nil
}

func (s *MemoryStore) Save(key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *MemoryStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}

// ============================================================================
// FileStore
// ============================================================================

// FileStore persists each key as a 0600 file inside a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory (0700) if needed and returns a store
// over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(key, token string) error {
	return os.WriteFile(s.path(key), []byte(token), 0o600)
}

func (s *FileStore) Clear(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// path maps a key to a file name, replacing separators so keys cannot
// escape the store directory.
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe)
}
