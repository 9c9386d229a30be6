// Package object defines the minimal object model shared by the method
// table and the compiled-code subsystem: receiver identity, executable
// artifacts, lexical scopes, and the collector's marking interface.
package object

import "github.com/nicolasleger/rubinius/pkg/symbol"

// ClassData identifies a class together with its current shape version.
//
// ID 0 is reserved and never identifies a real class; the serial is bumped
// whenever the class's shape changes, invalidating specializations keyed
// on the old pair.
type ClassData struct {
	ID     uint32
	Serial uint32
}

// Object is anything that can be a dispatch receiver.
type Object interface {
	Class() ClassData
}

// Value is any runtime value. Receivers are Values that also implement
// Object; immediate values (integers, booleans, nil) are plain Values.
type Value any

// Method is an executable artifact bound to a name in a method table.
//
// The table treats methods as opaque slots; dispatch downcasts to the
// concrete kind it can run.
type Method interface {
	// Installable reports whether dispatch may bind this artifact
	// directly. Late-bind placeholders return false.
	Installable() bool
}

// Token is a late-bind placeholder occupying a method slot before an
// executable has been materialized for it.
type Token struct {
	Name symbol.Symbol
}

// Installable implements Method.
func (Token) Installable() bool { return false }

// Scope records the lexical scope a method was defined under.
type Scope struct {
	Module ClassData
	Parent *Scope
}

// Marker is the collector's callback for walking owned references.
//
// Mark presents one reference to the collector and returns the relocated
// reference, or nil when the reference did not move. JustSet is the write
// barrier notification for a reference the mark pass rewrote in place.
//
// Marking runs with mutators stopped; implementations need not be
// goroutine-safe.
type Marker interface {
	Mark(ref Value) Value
	JustSet(container, ref Value)
}
