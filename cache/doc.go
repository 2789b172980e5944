// Package cache provides the in-process response cache used by the fetch layer.
//
// Entries are opaque JSON payloads stored under a key derived from the request
// identity (URL plus query parameters). Every entry carries an absolute expiry;
// an expired entry is treated exactly like a missing one and is removed the next
// time it is read.
//
// Two Store implementations are provided:
//
//   - MemoryStore guards a single map with one RWMutex.
//   - ShardedStore spreads keys across several MemoryStores by FNV-1a hash,
//     reducing lock contention under many concurrent analyses.
//
// Both are safe for concurrent use and return copies of stored payloads, so
// callers can never mutate cached state.
//
// Example:
//
//	store := cache.NewMemoryStore()
//	key := cache.Key("https://api.github.com/repos/o/r/issues", map[string]string{
//	    "state":    "all",
//	    "per_page": "100",
//	})
//	store.Put(key, payload, time.Hour)
//	if v, ok := store.Get(key); ok {
//	    // use v
//	}
package cache
