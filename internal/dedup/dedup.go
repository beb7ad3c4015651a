package dedup

import (
	"hash/maphash"

	"github.com/cockroachdb/swiss"
)

// Lookup maps string content to the id it was first stored under.
//
// Only the content hash is kept in the map; the bytes themselves live in the
// caller's buffer and are compared through the equal callback. Hash collisions
// are resolved by probing consecutive hash values.
//
// Lookup is not safe for concurrent use.
type Lookup struct {
	m    *swiss.Map[uint64, uint32]
	seed maphash.Seed
}

// New creates a lookup sized for about hint distinct strings.
func New(hint int) *Lookup {
	return &Lookup{
		m:    swiss.New[uint64, uint32](max(hint, 8)),
		seed: maphash.MakeSeed(),
	}
}

// Find returns the id stored for s, if any. equal reports whether the string
// stored under id has the same bytes as s.
func (l *Lookup) Find(s string, equal func(id uint32) bool) (uint32, bool) {
	key := maphash.String(l.seed, s)
	for {
		id, ok := l.m.Get(key)
		if !ok {
			return 0, false
		}
		if equal(id) {
			return id, true
		}
		key++
	}
}

// Add records id for s. The caller must have checked with Find that s is not
// yet present.
func (l *Lookup) Add(s string, id uint32) {
	key := maphash.String(l.seed, s)
	for {
		if _, ok := l.m.Get(key); !ok {
			l.m.Put(key, id)
			return
		}
		key++
	}
}

// Len returns the number of distinct strings recorded.
func (l *Lookup) Len() int {
	return l.m.Len()
}
