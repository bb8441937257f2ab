// Package cart holds the per-user draft cart: an advisory, session-scoped
// item list with no inventory effect. It is never validated against the
// catalog or stock and is cleared only by its owner or a successful checkout.
package cart

import (
	"sync"
	"time"
)

// Item is one draft line: a product reference plus requested quantity.
type Item struct {
	ProductID int64 `json:"product_id,string"`
	Quantity  int   `json:"quantity"`
}

// Store is a key-value store of draft carts keyed by user id. Put replaces
// the stored list wholesale.
type Store interface {
	Get(userID int64) []Item
	Put(userID int64, items []Item)
	Clear(userID int64)
}

type entry struct {
	items     []Item
	expiresAt time.Time
}

// MemoryStore keeps drafts in process memory with a session-lifetime TTL.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[int64]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{ttl: ttl, m: make(map[int64]entry)}
}

func (s *MemoryStore) Get(userID int64) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[userID]
	if !ok || time.Now().After(e.expiresAt) {
		return []Item{}
	}
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

func (s *MemoryStore) Put(userID int64, items []Item) {
	cp := make([]Item, len(items))
	copy(cp, items)
	s.mu.Lock()
	s.m[userID] = entry{items: cp, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *MemoryStore) Clear(userID int64) {
	s.mu.Lock()
	delete(s.m, userID)
	s.mu.Unlock()
}

// Purge drops expired drafts. Run periodically from the scheduler.
func (s *MemoryStore) Purge() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for uid, e := range s.m {
		if now.After(e.expiresAt) {
			delete(s.m, uid)
			n++
		}
	}
	return n
}
