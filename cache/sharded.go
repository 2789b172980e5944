package cache

import (
	"hash/fnv"
	"time"
)

// ShardedStore spreads keys over several independent MemoryStores so that
// concurrent writers to different keys rarely contend on the same lock.
type ShardedStore struct {
	shards []*MemoryStore
}

// NewShardedStore creates a store with n shards. Values of n below 1 are
// treated as 1.
func NewShardedStore(n int, opts ...Option) *ShardedStore {
	if n < 1 {
		n = 1
	}

	shards := make([]*MemoryStore, n)
	for i := range shards {
		shards[i] = NewMemoryStore(opts...)
	}
	return &ShardedStore{shards: shards}
}

// shard returns the MemoryStore responsible for key.
func (s *ShardedStore) shard(key string) *MemoryStore {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Get returns a copy of the value stored under key if it has not expired.
func (s *ShardedStore) Get(key string) ([]byte, bool) {
	return s.shard(key).Get(key)
}

// Put stores a copy of value under key with an expiry of now+ttl.
func (s *ShardedStore) Put(key string, value []byte, ttl time.Duration) {
	s.shard(key).Put(key, value, ttl)
}

// Clear removes every entry from every shard.
func (s *ShardedStore) Clear() {
	for _, sh := range s.shards {
		sh.Clear()
	}
}

// Len returns the number of entries held across all shards.
func (s *ShardedStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.Len()
	}
	return total
}

var _ Store = (*ShardedStore)(nil)
