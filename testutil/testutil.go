package testutil

import (
	"math/rand"
	"strings"
	"sync"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

// Runes outside ASCII, from two to four UTF-8 bytes each.
var wideRunes = []rune("äöüßéñçøåλπΩжд中文字日本語한국🙂🚀")

// RNG wraps a seeded generator. It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset restarts the sequence from the initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes returns n random bytes, not necessarily valid UTF-8.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// String returns an ASCII string with a length in [minLen, maxLen].
func (r *RNG) String(minLen, maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.asciiLocked(minLen, maxLen)
}

func (r *RNG) asciiLocked(minLen, maxLen int) string {
	n := minLen
	if maxLen > minLen {
		n += r.rand.Intn(maxLen - minLen + 1)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// UnicodeString returns a valid UTF-8 string of n runes mixing ASCII and
// multi-byte runes.
func (r *RNG) UnicodeString(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for range n {
		if r.rand.Intn(2) == 0 {
			sb.WriteByte(alphabet[r.rand.Intn(len(alphabet))])
		} else {
			sb.WriteRune(wideRunes[r.rand.Intn(len(wideRunes))])
		}
	}
	return sb.String()
}

// Strings returns n ASCII strings with lengths in [minLen, maxLen].
func (r *RNG) Strings(n, minLen, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = r.asciiLocked(minLen, maxLen)
	}
	return out
}

// StringsWithDuplicates returns n strings drawn from a pool of distinct
// values. Every pool value appears at least once when n >= distinct.
func (r *RNG) StringsWithDuplicates(n, distinct int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if distinct <= 0 {
		return make([]string, n)
	}

	seen := make(map[string]struct{}, distinct)
	pool := make([]string, 0, distinct)
	for len(pool) < distinct {
		s := r.asciiLocked(4, 24)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		pool = append(pool, s)
	}

	out := make([]string, n)
	for i := range out {
		if i < distinct {
			out[i] = pool[i]
		} else {
			out[i] = pool[r.rand.Intn(distinct)]
		}
	}
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
