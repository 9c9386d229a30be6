package methodtable

import (
	"sync/atomic"

	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

// Visibility tags a bucket for dispatch.
type Visibility int32

const (
	// Public methods dispatch from any caller.
	Public Visibility = iota
	// Private methods dispatch only with an implicit receiver.
	Private
	// Protected methods dispatch only from instances of the same class.
	Protected
	// Undef marks a name explicitly removed for dispatch purposes while
	// still occupying a bucket, shadowing inherited definitions.
	Undef
)

// String returns the visibility name.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	case Protected:
		return "protected"
	case Undef:
		return "undef"
	}
	return "visibility?"
}

// Bucket binds one name to one method and its metadata inside a table
// chain.
//
// The name is immutable. Every other field is mutated only under the
// owning table's lock and is stored in a single word so that lock-free
// readers never observe a torn value. The next link is rewritten only
// during resize and when the bucket that follows it is removed.
type Bucket struct {
	name symbol.Symbol

	visibility atomic.Int32
	methodID   atomic.Pointer[symbol.Symbol]
	method     atomic.Pointer[object.Method]
	scope      atomic.Pointer[object.Scope]
	serial     atomic.Uint64

	next atomic.Pointer[Bucket]
}

func newBucket(name symbol.Symbol, methodID symbol.Symbol, method object.Method, scope *object.Scope, serial uint64, vis Visibility) *Bucket {
	b := &Bucket{name: name}
	b.set(methodID, method, scope, serial, vis)
	return b
}

// set overwrites every mutable field. Caller holds the table lock.
func (b *Bucket) set(methodID symbol.Symbol, method object.Method, scope *object.Scope, serial uint64, vis Visibility) {
	b.methodID.Store(&methodID)
	if method == nil {
		b.method.Store(nil)
	} else {
		b.method.Store(&method)
	}
	b.scope.Store(scope)
	b.serial.Store(serial)
	b.visibility.Store(int32(vis))
}

// Name returns the bucket's name symbol.
func (b *Bucket) Name() symbol.Symbol { return b.name }

// Visibility returns the current visibility tag.
func (b *Bucket) Visibility() Visibility { return Visibility(b.visibility.Load()) }

// MethodID returns the installable method id (late-bind token).
func (b *Bucket) MethodID() symbol.Symbol {
	if p := b.methodID.Load(); p != nil {
		return *p
	}
	return symbol.Symbol{}
}

// Method returns the materialized method object, or nil when the slot
// holds no executable yet.
func (b *Bucket) Method() object.Method {
	if p := b.method.Load(); p != nil {
		return *p
	}
	return nil
}

// Scope returns the originating lexical scope.
func (b *Bucket) Scope() *object.Scope { return b.scope.Load() }

// Serial returns the bucket's serial number.
func (b *Bucket) Serial() uint64 { return b.serial.Load() }

// Next returns the following bucket in the same chain.
func (b *Bucket) Next() *Bucket { return b.next.Load() }

// Installable reports whether the bucket resolves to an executable that
// dispatch (and Alias) may bind directly.
func (b *Bucket) Installable() bool {
	m := b.Method()
	return m != nil && m.Installable()
}
