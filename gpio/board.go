package gpio

import "unsafe"

// Input register bit assignments of the board GPIO instance.
const (
	InputDipSwitches            uint32 = 0xFF << 0
	InputJoystick               uint32 = 0x1F << 8
	InputSoftwareSelectSwitches uint32 = 0x7 << 13
	InputMicroSDCardDetection   uint32 = 0x1 << 16
)

// Output register bit assignments of the board GPIO instance.
const (
	OutputLEDs uint32 = 0xFF << 0
)

// Counts of the board's user-facing pins.
const (
	LEDCount    = 8
	SwitchCount = 8
)

// JoystickState is a snapshot of the joystick input bits. Up to three may
// be set at once: pressing the stick down while pushing it diagonally.
type JoystickState uint16

// Joystick input bits.
const (
	JoystickLeft    JoystickState = 1 << 8
	JoystickUp      JoystickState = 1 << 9
	JoystickPressed JoystickState = 1 << 10
	JoystickDown    JoystickState = 1 << 11
	JoystickRight   JoystickState = 1 << 12
)

// Left reports whether the joystick is pushed left.
func (j JoystickState) Left() bool { return j&JoystickLeft != 0 }

// Up reports whether the joystick is pushed up.
func (j JoystickState) Up() bool { return j&JoystickUp != 0 }

// Pressed reports whether the joystick is pressed down.
func (j JoystickState) Pressed() bool { return j&JoystickPressed != 0 }

// Down reports whether the joystick is pushed down.
func (j JoystickState) Down() bool { return j&JoystickDown != 0 }

// Right reports whether the joystick is pushed right.
func (j JoystickState) Right() bool { return j&JoystickRight != 0 }

// Board is the board GPIO instance: user LEDs and DIP switches on the
// low bits, the joystick, software select switches and microSD card
// detection above them. Inputs and outputs are wired to separate
// components, so the instance has no direction control.
type Board struct {
	*GPIO
}

// NewBoard returns the board instance over regs.
func NewBoard(regs *Registers) *Board {
	return &Board{GPIO: New(regs, BoardMasks)}
}

// BoardAt returns the board instance for the memory-mapped register block
// at base.
func BoardAt(base uintptr) *Board {
	return NewBoard((*Registers)(unsafe.Pointer(base)))
}

// LEDOn lights the user LED at index (0 through 7).
func (b *Board) LEDOn(index uint32) {
	b.regs.Output.SetBits(bit(index, OutputLEDs))
}

// LEDOff darkens the user LED at index.
func (b *Board) LEDOff(index uint32) {
	b.regs.Output.ClearBits(bit(index, OutputLEDs))
}

// LEDToggle flips the user LED at index.
func (b *Board) LEDToggle(index uint32) {
	m := bit(index, OutputLEDs)
	b.regs.Output.Set(b.regs.Output.Get() ^ m)
}

// Switch reads the DIP switch at index (0 through 7).
func (b *Board) Switch(index uint32) bool {
	return b.regs.Input.HasBits(bit(index, InputDipSwitches))
}

// Joystick returns the joystick state.
func (b *Board) Joystick() JoystickState {
	return JoystickState(b.regs.Input.Get() & InputJoystick)
}

// SDCardPresent reports whether a microSD card is inserted.
func (b *Board) SDCardPresent() bool {
	return b.regs.Input.HasBits(InputMicroSDCardDetection)
}
