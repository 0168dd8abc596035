package usbdev

import "unsafe"

// Controller drives one USB device controller instance through a Bus.
//
// Every operation returns immediately; nothing blocks or sleeps. The
// controller performs no internal locking: callers serialize access to an
// instance themselves, typically from a single poll loop or an owning
// interrupt handler.
type Controller struct {
	bus Bus
}

// New returns a Controller driving the device behind bus.
func New(bus Bus) *Controller {
	return &Controller{bus: bus}
}

// At returns a Controller for the memory-mapped device window at base.
func At(base uintptr) *Controller {
	return New((*Registers)(unsafe.Pointer(base)))
}

// Init prepares the controller for use: it hands every packet buffer to the
// availability queues and configures the PHY for the differential receiver.
// The returned bitmap holds the buffers that did not fit in the queues and
// remain software-owned; keep it and resupply as buffers drain.
//
// Endpoints are not configured and the device is not connected afterwards;
// configure endpoints first, then call Connect.
func (c *Controller) Init() uint32 {
	avail := c.SupplyBuffers(AllBuffers)
	c.bus.Write32(RegPhyConfig, PhyUseDifferentialReceiver)
	return avail
}

// EnableInterrupts enables the given interrupt(s), leaving others unchanged.
func (c *Controller) EnableInterrupts(mask Interrupt) {
	c.bus.Write32(RegInterruptEnable, c.bus.Read32(RegInterruptEnable)|uint32(mask))
}

// DisableInterrupts disables the given interrupt(s), leaving others
// unchanged.
func (c *Controller) DisableInterrupts(mask Interrupt) {
	c.bus.Write32(RegInterruptEnable, c.bus.Read32(RegInterruptEnable)&^uint32(mask))
}

// InterruptState returns the pending interrupts.
func (c *Controller) InterruptState() Interrupt {
	return Interrupt(c.bus.Read32(RegInterruptState))
}

// ClearInterrupts acknowledges the given pending interrupt(s). The state
// register is write-one-to-clear, so only the bits in mask are affected.
// Interrupts asserted for as long as their condition holds (such as
// IntrPacketReceived) reassert until the condition is drained.
func (c *Controller) ClearInterrupts(mask Interrupt) {
	c.bus.Write32(RegInterruptState, uint32(mask))
}

// TestInterrupts raises the given interrupt(s) from software.
func (c *Controller) TestInterrupts(mask Interrupt) {
	c.bus.Write32(RegInterruptTest, uint32(mask))
}

// Connect enables the device pull-up, indicating its presence to the host.
// Endpoints must already be configured: traffic may arrive immediately.
func (c *Controller) Connect() {
	c.bus.Write32(RegControl, c.bus.Read32(RegControl)|CtrlEnable)
}

// Disconnect removes the device from the bus.
func (c *Controller) Disconnect() {
	c.bus.Write32(RegControl, c.bus.Read32(RegControl)&^CtrlEnable)
}

// Connected reports whether the device pull-up is enabled.
func (c *Controller) Connected() bool {
	return c.bus.Read32(RegControl)&CtrlEnable != 0
}

// ResumeLinkActive drives the resume signalling bit, used to wake the link
// from suspend.
func (c *Controller) ResumeLinkActive(active bool) {
	ctrl := c.bus.Read32(RegControl) &^ CtrlResumeLinkActive
	if active {
		ctrl |= CtrlResumeLinkActive
	}
	c.bus.Write32(RegControl, ctrl)
}

// SetDeviceAddress sets the device address assigned by the host in the
// SET_ADDRESS control transfer. Addresses are 7 bits; 0x80 and above fail
// with ErrBadAddress and modify no registers.
func (c *Controller) SetDeviceAddress(address uint8) error {
	if address >= 0x80 {
		return ErrBadAddress
	}
	ctrl := c.bus.Read32(RegControl)&^CtrlDeviceAddress | uint32(address)<<CtrlDeviceAddressShift
	c.bus.Write32(RegControl, ctrl)
	return nil
}

// Status returns the raw status register.
func (c *Controller) Status() uint32 {
	return c.bus.Read32(RegStatus)
}

// Frame returns the current USB frame number.
func (c *Controller) Frame() uint16 {
	return uint16(c.bus.Read32(RegStatus) & StatusFrame)
}

// LinkState returns the link state field of the status register.
func (c *Controller) LinkState() uint8 {
	return uint8((c.bus.Read32(RegStatus) & StatusLinkState) >> StatusLinkStateShift)
}

// Sense reports whether VBUS is detected.
func (c *Controller) Sense() bool {
	return c.bus.Read32(RegStatus)&StatusSense != 0
}
