// Package symbol provides interned identifiers.
//
// A Symbol is a small value type: comparable with ==, hashable via Hash,
// and resolvable back to its source text with String. All symbols for a
// given spelling are identical, so symbol equality is identity equality.
//
// Symbols are the keys of method tables; their hash is stable for the
// lifetime of the process and is computed once, at intern time.
package symbol

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Symbol is an interned identifier.
//
// The zero Symbol is the empty string and is valid.
type Symbol struct {
	id   uint32
	hash uint64
}

// Hash returns the symbol's 64-bit hash.
func (s Symbol) Hash() uint64 { return s.hash }

// String returns the source text the symbol was interned from.
func (s Symbol) String() string {
	return defaultInterner.name(s)
}

// Interner deduplicates identifier spellings into Symbols.
//
// Safe for concurrent use. Symbols from distinct interners must not be
// mixed; Symbol.String resolves against the process-wide interner only.
type Interner struct {
	mu    sync.RWMutex
	ids   map[string]uint32
	names []string
}

// NewInterner returns an empty interner whose first symbol is "".
func NewInterner() *Interner {
	return &Interner{
		ids:   map[string]uint32{"": 0},
		names: []string{""},
	}
}

// Intern returns the canonical Symbol for name.
func (in *Interner) Intern(name string) Symbol {
	if name == "" {
		return Symbol{}
	}

	in.mu.RLock()
	id, ok := in.ids[name]
	in.mu.RUnlock()

	if ok {
		return Symbol{id: id, hash: xxhash.Sum64String(name)}
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	// Re-check: another goroutine may have interned name in between.
	if id, ok := in.ids[name]; ok {
		return Symbol{id: id, hash: xxhash.Sum64String(name)}
	}

	id = uint32(len(in.names))
	in.ids[name] = id
	in.names = append(in.names, name)

	return Symbol{id: id, hash: xxhash.Sum64String(name)}
}

// name resolves a symbol back to its text.
func (in *Interner) name(s Symbol) string {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if int(s.id) >= len(in.names) {
		return ""
	}

	return in.names[s.id]
}

// defaultInterner is the process-wide interner used by Intern.
var defaultInterner = NewInterner()

// Intern returns the canonical Symbol for name from the process-wide interner.
func Intern(name string) Symbol {
	return defaultInterner.Intern(name)
}
