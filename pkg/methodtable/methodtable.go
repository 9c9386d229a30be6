// Package methodtable implements the per-class method table: a hash table
// from name symbols to entry buckets that is concurrently readable and
// serially mutated.
//
// # Concurrency
//
// The table uses a multi-reader, single-writer model:
//   - Lookup, FindEntry, HasName and Entries never block and may be called
//     from any goroutine.
//   - Store, Alias, Remove and Duplicate serialize on the table's mutex.
//
// Readers walk the current bin array without the lock. Writers prepend new
// buckets to their chain, so older buckets stay reachable through next
// links for the lifetime of any given bin array; a resize builds a doubled
// array and publishes it with a release store that pairs with the readers'
// acquire load. A lookup concurrent with a mutation may observe the old or
// the new state, never a torn one.
package methodtable

import (
	"sync"
	"sync/atomic"

	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

// MinBins is the smallest bin count a table is created with.
const MinBins = 16

// bins is one published generation of the hash table: a power-of-two
// array of chain heads. Slot heads are atomic so a reader racing a
// prepend sees either the old head or the new one.
type bins struct {
	slots []atomic.Pointer[Bucket]
}

func newBins(n int) *bins {
	return &bins{slots: make([]atomic.Pointer[Bucket], n)}
}

func (b *bins) index(name symbol.Symbol) int {
	return int(name.Hash() & uint64(len(b.slots)-1))
}

// Table is a concurrently readable, serially mutated method table.
//
// The zero value is not usable; construct with New.
type Table struct {
	mu      sync.Mutex
	values  atomic.Pointer[bins]
	entries atomic.Int64
}

// New creates a table with max(size, MinBins) bins, rounded up to a power
// of two.
func New(size int) *Table {
	n := MinBins
	for n < size {
		n <<= 1
	}

	t := &Table{}
	t.values.Store(newBins(n))
	return t
}

// Bins returns the current bin count.
func (t *Table) Bins() int { return len(t.values.Load().slots) }

// Entries returns the number of live buckets.
func (t *Table) Entries() int { return int(t.entries.Load()) }

// Store binds name to method under the given metadata.
//
// An existing bucket with the same name is overwritten in place, keeping
// its chain position. Otherwise a fresh bucket is prepended to its chain.
// Reaching a load factor of 1.0 (entries equal to bins) doubles the table.
func (t *Table) Store(name symbol.Symbol, methodID symbol.Symbol, method object.Method, scope *object.Scope, serial uint64, vis Visibility) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := t.values.Load()
	idx := v.index(name)

	for b := v.slots[idx].Load(); b != nil; b = b.Next() {
		if b.name == name {
			b.set(methodID, method, scope, serial, vis)
			return
		}
	}

	nb := newBucket(name, methodID, method, scope, serial, vis)
	nb.next.Store(v.slots[idx].Load())
	v.slots[idx].Store(nb)

	if n := t.entries.Add(1); int(n) >= len(v.slots) {
		t.resize(v)
	}
}

// Resolver resolves a name along a module's inheritance chain to the
// first bucket holding an installable method. It is external to the
// table; the object model provides it.
type Resolver interface {
	ResolveMethod(name symbol.Symbol) (*Bucket, bool)
}

// Alias installs newName as an alias for origName, resolved through the
// originating module's table chain.
//
// The new bucket references the resolved method id and method with the
// supplied visibility; scope and serial are carried over from the
// resolved bucket. Returns false when origName does not resolve to an
// installable method.
func (t *Table) Alias(newName symbol.Symbol, vis Visibility, origName symbol.Symbol, origModule Resolver) bool {
	orig, ok := origModule.ResolveMethod(origName)
	if !ok || !orig.Installable() {
		return false
	}

	t.Store(newName, orig.MethodID(), orig.Method(), orig.Scope(), orig.Serial(), vis)
	return true
}

// Lookup returns the bucket bound to name.
//
// Lock-free; safe from any goroutine.
func (t *Table) Lookup(name symbol.Symbol) (*Bucket, bool) {
	v := t.values.Load()

	for b := v.slots[v.index(name)].Load(); b != nil; b = b.Next() {
		if b.name == name {
			return b, true
		}
	}

	return nil, false
}

// FindEntry is Lookup for internal code paths that must bypass any
// promotion the dispatch layer performs on top of Lookup.
func (t *Table) FindEntry(name symbol.Symbol) (*Bucket, bool) {
	return t.Lookup(name)
}

// HasName reports whether name is bound.
func (t *Table) HasName(name symbol.Symbol) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Remove unlinks the bucket bound to name and returns its prior method
// slot.
func (t *Table) Remove(name symbol.Symbol) (object.Method, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := t.values.Load()
	idx := v.index(name)

	var prev *Bucket
	for b := v.slots[idx].Load(); b != nil; b = b.Next() {
		if b.name != name {
			prev = b
			continue
		}

		if prev == nil {
			v.slots[idx].Store(b.Next())
		} else {
			prev.next.Store(b.Next())
		}

		t.entries.Add(-1)
		return b.Method(), true
	}

	return nil, false
}

// Duplicate creates an independent table of the same bin count holding
// equivalent buckets. The duplicate shares no bucket storage with the
// original.
func (t *Table) Duplicate() *Table {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := t.values.Load()

	dup := &Table{}
	dup.values.Store(newBins(len(v.slots)))

	for i := range v.slots {
		for b := v.slots[i].Load(); b != nil; b = b.Next() {
			dup.Store(b.name, b.MethodID(), b.Method(), b.Scope(), b.Serial(), b.Visibility())
		}
	}

	return dup
}

// Each calls fn for every bucket. Lock-free; the walk sees one published
// generation and is stale-but-consistent against concurrent mutation.
func (t *Table) Each(fn func(*Bucket) bool) {
	v := t.values.Load()

	for i := range v.slots {
		for b := v.slots[i].Load(); b != nil; b = b.Next() {
			if !fn(b) {
				return
			}
		}
	}
}

// resize doubles the bin array. Bucket storage is reused; only next links
// are rewritten. The new array is published with a release store, pairing
// with the acquire load in Lookup. Caller holds the lock.
func (t *Table) resize(old *bins) {
	grown := newBins(len(old.slots) * 2)

	// Collect before relinking: rewriting next while walking the same
	// links would drop buckets.
	var all []*Bucket
	for i := range old.slots {
		for b := old.slots[i].Load(); b != nil; b = b.Next() {
			all = append(all, b)
		}
	}

	for _, b := range all {
		idx := grown.index(b.name)
		b.next.Store(grown.slots[idx].Load())
		grown.slots[idx].Store(b)
	}

	t.values.Store(grown)
}
