// Package meta defines the resolved peripheral model shared between the
// description loader and the language generators.
package meta

// Peripheral is a validated register map description. Instances come from
// the load package; generators may assume the invariants it enforces
// (ascending non-overlapping registers, fields within 32 bits, no field
// overlap).
type Peripheral struct {
	Name        string
	Description string
	Registers   []Register
}

// Register is one register of a peripheral, or an array of identical
// registers at consecutive word offsets.
type Register struct {
	Name        string
	Description string
	Offset      uint32
	Count       uint32 // array length, 1 for a plain register
	Fields      []Field
}

// End returns the first byte offset past the register.
func (r Register) End() uint32 { return r.Offset + 4*r.Count }

// Array reports whether the register is an array.
func (r Register) Array() bool { return r.Count > 1 }

// Field is a named bit range within a register. High and Low are
// inclusive bit positions with High >= Low.
type Field struct {
	Name        string
	Description string
	High, Low   uint32
}

// Width returns the field width in bits.
func (f Field) Width() uint32 { return f.High - f.Low + 1 }

// Single reports whether the field is one bit wide.
func (f Field) Single() bool { return f.High == f.Low }

// Mask returns the field mask shifted into position within the register.
func (f Field) Mask() uint32 { return (1<<f.Width() - 1) << f.Low }
