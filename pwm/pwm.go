// Package pwm drives the Sonata pulse-width modulation outputs.
//
// Six general-purpose outputs can be pinmuxed to different pins; one
// dedicated output drives the LCD backlight. Outputs are mapped
// sequentially, 8 bytes each.
package pwm

import (
	"errors"
	"unsafe"

	"github.com/marnovandermaas/sunburst/mmio"
)

// Output counts of the Sonata banks.
const (
	GeneralOutputs = 6
	LCDOutputs     = 1
)

// ErrBadOutput is returned for output indices beyond the bank. No
// registers are modified.
var ErrBadOutput = errors.New("pwm: output out of range")

// Output is the register pair of one pulse-width modulated output.
type Output struct {
	DutyCycle mmio.R32 // 0x0, clock cycles the signal is high per period
	Period    mmio.R32 // 0x4, wave length in clock cycles, 8-bit counter
}

// PWM drives a bank of sequentially mapped outputs.
type PWM struct {
	outputs []Output
}

// New returns a PWM over a bank of output register pairs.
func New(outputs []Output) *PWM {
	return &PWM{outputs: outputs}
}

// At returns a PWM for a bank of count outputs memory-mapped at base.
func At(base uintptr, count int) *PWM {
	return New(unsafe.Slice((*Output)(unsafe.Pointer(base)), count))
}

// GeneralAt returns the general-purpose bank at base.
func GeneralAt(base uintptr) *PWM {
	return At(base, GeneralOutputs)
}

// LCDAt returns the LCD backlight bank at base.
func LCDAt(base uintptr) *PWM {
	return At(base, LCDOutputs)
}

// SetOutput programs the wave of one output: period is the wave length as
// a count of clock cycles, dutyCycle the number of those cycles the
// signal is high. SetOutput(0, 200, 31) yields a 15.5% duty cycle. A duty
// cycle of zero holds the output low.
func (p *PWM) SetOutput(index uint32, period, dutyCycle uint8) error {
	if index >= uint32(len(p.outputs)) {
		return ErrBadOutput
	}
	out := &p.outputs[index]
	out.Period.Set(uint32(period))
	out.DutyCycle.Set(uint32(dutyCycle))
	return nil
}
