// Package interner deduplicates frequently repeated strings such as command
// names and argument keys.
package interner

import (
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultSize is the number of strings kept when no size is given.
const DefaultSize = 4096

// Stats reports interner activity.
type Stats struct {
	Hits      uint64 `json:"hits" yaml:"hits"`
	Misses    uint64 `json:"misses" yaml:"misses"`
	Evictions uint64 `json:"evictions" yaml:"evictions"`
	Size      int    `json:"size" yaml:"size"`
}

// StringInterner maps strings to a canonical copy. The least recently used
// strings are evicted once the bound is reached. It is safe for concurrent
// use.
type StringInterner struct {
	mu    sync.Mutex
	cache *lru.Cache
	stats Stats
}

// New creates an interner holding at most size strings. A size <= 0 selects
// DefaultSize.
func New(size int) *StringInterner {
	if size <= 0 {
		size = DefaultSize
	}
	in := &StringInterner{cache: lru.New(size)}
	in.cache.OnEvicted = func(lru.Key, interface{}) {
		in.stats.Evictions++
	}
	return in
}

// Intern returns the canonical copy of s. A nil interner returns s.
func (in *StringInterner) Intern(s string) string {
	if in == nil {
		return s
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if v, ok := in.cache.Get(s); ok {
		in.stats.Hits++
		return v.(string)
	}
	in.stats.Misses++
	canonical := strings.Clone(s)
	in.cache.Add(canonical, canonical)
	return canonical
}

// Len returns the number of strings currently held.
func (in *StringInterner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.cache.Len()
}

// Stats returns a snapshot of the counters.
func (in *StringInterner) Stats() Stats {
	in.mu.Lock()
	defer in.mu.Unlock()
	s := in.stats
	s.Size = in.cache.Len()
	return s
}

// Clear drops every interned string.
func (in *StringInterner) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cache.Clear()
}
