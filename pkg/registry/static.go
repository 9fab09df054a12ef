package registry

import (
	"fmt"
	"sort"

	"github.com/unilang/unilang/pkg/command"
)

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211

	// maxSeed bounds the displacement search for one bucket.
	maxSeed = 1 << 24
)

// StaticMap is an immutable minimal perfect hash from fully qualified command
// names and aliases to definitions. It is built once at process start and is
// safe for concurrent use without locking.
type StaticMap struct {
	// seeds holds the displacement seed of each bucket.
	seeds []uint32
	// keys and entries are indexed by perfect-hash slot.
	keys    []string
	entries []*command.CommandDefinition
	// names are the canonical names in sorted order.
	names []string
}

func hashKey(seed uint32, key string) uint64 {
	h := uint64(fnvOffset64) ^ uint64(seed)*fnvPrime64
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= fnvPrime64
	}
	return mix64(h)
}

// mix64 is the murmur3 fmix64 finalizer. FNV-1a reduced modulo a power of two
// only sees the low bits of each byte, so the slot must come from mixed bits.
func mix64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// NewStaticMap validates the definitions and builds the perfect hash over
// their canonical names and aliases.
func NewStaticMap(defs []*command.CommandDefinition) (*StaticMap, error) {
	index := make(map[string]*command.CommandDefinition)
	var names []string
	for _, def := range defs {
		if def == nil {
			return nil, fmt.Errorf("static command definition cannot be nil")
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("invalid static command '%s': %w", def.Name, err)
		}
		def = def.Clone()
		full := def.FullName()
		for _, key := range append([]string{full}, def.AliasNames()...) {
			if _, exists := index[key]; exists {
				return nil, &Error{Name: key, Reason: "name is defined twice in the static manifest", Err: ErrAlreadyRegistered}
			}
			index[key] = def
		}
		names = append(names, full)
	}
	sort.Strings(names)

	m := &StaticMap{names: names}
	if len(index) == 0 {
		return m, nil
	}
	if err := m.build(index); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNewStaticMap is like NewStaticMap but panics on error.
func MustNewStaticMap(defs []*command.CommandDefinition) *StaticMap {
	m, err := NewStaticMap(defs)
	if err != nil {
		panic(err)
	}
	return m
}

// build runs hash-and-displace: keys are grouped into buckets by a first
// hash, then each bucket, largest first, searches for a seed that places all
// of its keys into free slots.
func (m *StaticMap) build(index map[string]*command.CommandDefinition) error {
	n := len(index)
	numBuckets := (n + 1) / 2
	if numBuckets == 0 {
		numBuckets = 1
	}

	buckets := make([][]string, numBuckets)
	for key := range index {
		b := hashKey(0, key) % uint64(numBuckets)
		buckets[b] = append(buckets[b], key)
	}

	order := make([]int, numBuckets)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(buckets[order[i]]) > len(buckets[order[j]])
	})

	m.seeds = make([]uint32, numBuckets)
	m.keys = make([]string, n)
	m.entries = make([]*command.CommandDefinition, n)
	used := make([]bool, n)

	for _, b := range order {
		bucket := buckets[b]
		if len(bucket) == 0 {
			continue
		}
		// Deterministic placement regardless of map iteration order.
		sort.Strings(bucket)

		placed := false
		slots := make([]uint64, len(bucket))
		for seed := uint32(1); seed < maxSeed; seed++ {
			ok := true
			for i, key := range bucket {
				slot := hashKey(seed, key) % uint64(n)
				if used[slot] {
					ok = false
					break
				}
				for _, prev := range slots[:i] {
					if prev == slot {
						ok = false
						break
					}
				}
				if !ok {
					break
				}
				slots[i] = slot
			}
			if !ok {
				continue
			}
			for i, key := range bucket {
				used[slots[i]] = true
				m.keys[slots[i]] = key
				m.entries[slots[i]] = index[key]
			}
			m.seeds[b] = seed
			placed = true
			break
		}
		if !placed {
			return fmt.Errorf("failed to build static command map: no seed found for bucket of %d keys", len(bucket))
		}
	}
	return nil
}

// Get returns the definition registered under name or one of its aliases.
func (m *StaticMap) Get(name string) (*command.CommandDefinition, bool) {
	if m == nil || len(m.keys) == 0 {
		return nil, false
	}
	b := hashKey(0, name) % uint64(len(m.seeds))
	slot := hashKey(m.seeds[b], name) % uint64(len(m.keys))
	if m.keys[slot] != name {
		return nil, false
	}
	return m.entries[slot], true
}

// Len returns the number of commands, not counting aliases.
func (m *StaticMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Names returns the canonical command names in sorted order.
func (m *StaticMap) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.names...)
}
