// Package mmio provides access to memory-mapped 32-bit hardware registers.
//
// Register cells are accessed through atomic loads and stores so that every
// access performed by a driver is a real, single, aligned 32-bit bus
// transaction: the compiler cannot cache a previously read value, merge
// neighbouring accesses, or elide a store whose result is never read back.
// That is the contract peripheral registers require and ordinary Go memory
// operations do not give.
package mmio

import "sync/atomic"

// R32 is a single 32-bit register cell. Place R32 fields sequentially in a
// struct to describe a peripheral's register layout, then map the struct
// over the peripheral's MMIO window.
//
// All access must go through the methods; the backing word is deliberately
// not exported.
type R32 struct {
	v uint32
}

// Get returns the value of the register.
func (r *R32) Get() uint32 {
	return atomic.LoadUint32(&r.v)
}

// Set writes value to the register.
func (r *R32) Set(value uint32) {
	atomic.StoreUint32(&r.v, value)
}

// SetBits sets the bits in mask, leaving the rest of the register unchanged.
func (r *R32) SetBits(mask uint32) {
	r.Set(r.Get() | mask)
}

// ClearBits clears the bits in mask, leaving the rest of the register
// unchanged.
func (r *R32) ClearBits(mask uint32) {
	r.Set(r.Get() &^ mask)
}

// HasBits reports whether any of the bits in mask are set.
func (r *R32) HasBits(mask uint32) bool {
	return r.Get()&mask != 0
}

// ReplaceBits writes value into the field described by mask and pos in a
// single read-modify-write, leaving bits outside the field unchanged.
func (r *R32) ReplaceBits(value, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | value<<pos)
}
