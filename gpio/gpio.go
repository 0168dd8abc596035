// Package gpio drives the Sonata GPIO blocks.
//
// The board carries several GPIO instances with the same register layout
// but different subsets of wired-up bits: the board instance (LEDs,
// switches, joystick), the Raspberry Pi HAT header, the Arduino Shield
// header and the Pmod headers. An instance is a GPIO bound to its Masks;
// bits outside the masks read false and assert nothing when written.
package gpio

import (
	"unsafe"

	"github.com/marnovandermaas/sunburst/mmio"
)

// Registers is the register layout of one GPIO instance.
type Registers struct {
	Output         mmio.R32 // 0x0
	Input          mmio.R32 // 0x4
	DebouncedInput mmio.R32 // 0x8
	OutputEnable   mmio.R32 // 0xC
}

// Masks restricts an instance to the register bits that are wired to
// pins. Output covers the output register, Input covers both input
// registers, OutputEnable covers direction control. An instance with
// OutputEnable zero has fixed pin directions.
type Masks struct {
	Output       uint32
	Input        uint32
	OutputEnable uint32
}

// Masks of the Sonata GPIO instances. The board instance has its inputs
// and outputs wired to separate components, so its directions are fixed.
var (
	BoardMasks          = Masks{Output: 0x0000_00FF, Input: 0x0001_FFFF, OutputEnable: 0x0000_0000}
	RaspberryPiHatMasks = Masks{Output: 0x0FFF_FFFF, Input: 0x0FFF_FFFF, OutputEnable: 0x0FFF_FFFF}
	ArduinoShieldMasks  = Masks{Output: 0x0000_3FFF, Input: 0x0000_3FFF, OutputEnable: 0x0000_3FFF}
	Pmod0Masks          = Masks{Output: 0x0000_00FF, Input: 0x0000_00FF, OutputEnable: 0x0000_00FF}
	Pmod1Masks          = Masks{Output: 0x0000_00FF, Input: 0x0000_00FF, OutputEnable: 0x0000_00FF}
	PmodCMasks          = Masks{Output: 0x0000_003F, Input: 0x0000_003F, OutputEnable: 0x0000_003F}
)

// GPIO drives one GPIO instance.
type GPIO struct {
	regs  *Registers
	masks Masks
}

// New returns a GPIO instance over regs, restricted to masks.
func New(regs *Registers, masks Masks) *GPIO {
	return &GPIO{regs: regs, masks: masks}
}

// At returns a GPIO instance for the memory-mapped register block at base.
func At(base uintptr, masks Masks) *GPIO {
	return New((*Registers)(unsafe.Pointer(base)), masks)
}

// bit returns the register bit for a pin index, masked to the wired-up
// bits. Out-of-range and unwired indices yield zero.
func bit(index uint32, mask uint32) uint32 {
	return 1 << index & mask
}

// SetOutput drives the output pin at index to value. The pin must be
// wired as an output, and for direction-controlled instances its output
// must be enabled first.
func (g *GPIO) SetOutput(index uint32, value bool) {
	b := bit(index, g.masks.Output)
	if value {
		g.regs.Output.SetBits(b)
	} else {
		g.regs.Output.ClearBits(b)
	}
}

// SetOutputEnable switches the pin at index between output (true) and
// input (false) mode, where the instance supports direction control.
func (g *GPIO) SetOutputEnable(index uint32, enable bool) {
	b := bit(index, g.masks.OutputEnable)
	if enable {
		g.regs.OutputEnable.SetBits(b)
	} else {
		g.regs.OutputEnable.ClearBits(b)
	}
}

// Input reads the pin at index. Unwired indices read false.
func (g *GPIO) Input(index uint32) bool {
	return g.regs.Input.HasBits(bit(index, g.masks.Input))
}

// DebouncedInput reads the debounced state of the pin at index. Unwired
// indices read false.
func (g *GPIO) DebouncedInput(index uint32) bool {
	return g.regs.DebouncedInput.HasBits(bit(index, g.masks.Input))
}
