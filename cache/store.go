package cache

import "time"

// Store is a concurrency-safe key/value store with per-entry expiry.
type Store interface {
	// Get returns a copy of the value stored under key.
	// Returns false if the key was never stored or its entry has expired.
	Get(key string) ([]byte, bool)

	// Put stores a copy of value under key, expiring ttl from now.
	// Any existing entry for key is replaced.
	Put(key string, value []byte, ttl time.Duration)

	// Clear removes every entry.
	Clear()

	// Len returns the number of entries physically held, including expired
	// entries that have not been read since they expired.
	Len() int
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

func defaultOptions() *options {
	return &options{now: time.Now}
}

// WithClock sets the time source used to compute and check expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
