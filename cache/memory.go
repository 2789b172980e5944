package cache

import (
	"bytes"
	"sync"
	"time"
)

// entry is a stored payload. Entries are replaced, never mutated in place.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a Store backed by a single map guarded by one RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &MemoryStore{
		entries: make(map[string]entry),
		now:     o.now,
	}
}

// Get returns a copy of the value stored under key if it has not expired.
// An expired entry is deleted before returning.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if s.now().Before(e.expiresAt) {
		return bytes.Clone(e.value), true
	}

	s.mu.Lock()
	// A concurrent Put may have replaced the entry since the read lock was released.
	if cur, ok := s.entries[key]; ok && !s.now().Before(cur.expiresAt) {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	return nil, false
}

// Put stores a copy of value under key with an expiry of now+ttl.
func (s *MemoryStore) Put(key string, value []byte, ttl time.Duration) {
	e := entry{
		value:     bytes.Clone(value),
		expiresAt: s.now().Add(ttl),
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	clear(s.entries)
	s.mu.Unlock()
}

// Len returns the number of entries held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
