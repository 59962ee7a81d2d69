package authstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// FileStore persists the token pair as JSON ({"access": ..., "refresh": ...})
// with owner-only permissions.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed token store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Tokens() (models.TokenPair, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return models.TokenPair{}, false
	}
	var pair models.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return models.TokenPair{}, false
	}
	if pair.Access == "" && pair.Refresh == "" {
		return models.TokenPair{}, false
	}
	return pair, true
}

func (f *FileStore) Save(pair models.TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
