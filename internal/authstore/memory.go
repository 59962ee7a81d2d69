package authstore

import (
	"sync"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// MemoryStore keeps the token pair in memory. Used by tests and demo mode.
type MemoryStore struct {
	mu   sync.Mutex
	pair models.TokenPair
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Tokens() (models.TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair, m.set
}

func (m *MemoryStore) Save(pair models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	m.set = true
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = models.TokenPair{}
	m.set = false
	return nil
}
