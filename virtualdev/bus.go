package virtualdev

import (
	"encoding/binary"

	"github.com/marnovandermaas/sunburst/usbdev"
)

// windowSize is the extent of the modelled device window: the register
// block followed by packet buffer memory.
const windowSize = usbdev.BufferStart + usbdev.NumBuffers*usbdev.MaxPacketLen

// Read32 implements usbdev.Bus. Reads outside the window, from write-only
// registers and from unimplemented offsets yield zero. Reading the receive
// buffer register pops the receive queue.
func (d *Device) Read32(offset uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= usbdev.BufferStart {
		return d.ramRead(offset)
	}
	if offset >= usbdev.RegConfigIn && offset < usbdev.RegOutIsochronous {
		return d.configIn[(offset-usbdev.RegConfigIn)/4]
	}
	switch offset {
	case usbdev.RegInterruptState:
		return d.intrState | d.statusInterrupts()
	case usbdev.RegInterruptEnable:
		return d.intrEnable
	case usbdev.RegControl:
		return d.control
	case usbdev.RegEndpointOutEnable:
		return d.epOutEn
	case usbdev.RegEndpointInEnable:
		return d.epInEn
	case usbdev.RegStatus:
		return d.status()
	case usbdev.RegReceiveBuffer:
		return d.popReceive()
	case usbdev.RegReceiveEnableSetup:
		return d.rxEnSetup
	case usbdev.RegReceiveEnableOut:
		return d.rxEnOut
	case usbdev.RegSetNakOut:
		return d.setNakOut
	case usbdev.RegInSent:
		return d.inSent
	case usbdev.RegOutStall:
		return d.outStall
	case usbdev.RegInStall:
		return d.inStall
	case usbdev.RegOutIsochronous:
		return d.outIso
	case usbdev.RegInIsochronous:
		return d.inIso
	case usbdev.RegOutDataToggle:
		return d.outToggle
	case usbdev.RegInDataToggle:
		return d.inToggle
	case usbdev.RegPhyPinsDrive:
		return d.phyDrive
	case usbdev.RegPhyConfig:
		return d.phyConfig
	default:
		return 0
	}
}

// Write32 implements usbdev.Bus. Writes outside the window, to read-only
// registers and to unimplemented offsets are dropped. Writes to the
// availability ports stage a buffer id for Absorb.
func (d *Device) Write32(offset uint32, value uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset >= usbdev.BufferStart {
		d.ramWrite(offset, value)
		return
	}
	if offset >= usbdev.RegConfigIn && offset < usbdev.RegOutIsochronous {
		d.configIn[(offset-usbdev.RegConfigIn)/4] = value
		return
	}
	switch offset {
	case usbdev.RegInterruptState:
		// Write one to clear. Condition-mirroring bits reassert through
		// statusInterrupts until their condition is drained.
		d.intrState &^= value
	case usbdev.RegInterruptEnable:
		d.intrEnable = value
	case usbdev.RegInterruptTest:
		d.intrState |= value
	case usbdev.RegControl:
		if (d.control^value)&usbdev.CtrlEnable != 0 {
			d.log.Debug("pull-up changed", "enabled", value&usbdev.CtrlEnable != 0)
		}
		d.control = value
	case usbdev.RegEndpointOutEnable:
		d.epOutEn = value
	case usbdev.RegEndpointInEnable:
		d.epInEn = value
	case usbdev.RegAvailableOutBuffer:
		d.stageAvailable(value, false)
	case usbdev.RegAvailableSetupBuffer:
		d.stageAvailable(value, true)
	case usbdev.RegReceiveEnableSetup:
		d.rxEnSetup = value
	case usbdev.RegReceiveEnableOut:
		d.rxEnOut = value
	case usbdev.RegSetNakOut:
		d.setNakOut = value
	case usbdev.RegInSent:
		// Write one to clear.
		d.inSent &^= value
	case usbdev.RegOutStall:
		d.outStall = value
	case usbdev.RegInStall:
		d.inStall = value
	case usbdev.RegOutIsochronous:
		d.outIso = value
	case usbdev.RegInIsochronous:
		d.inIso = value
	case usbdev.RegOutDataToggle:
		d.outToggle = value
	case usbdev.RegInDataToggle:
		d.inToggle = value
	case usbdev.RegPhyPinsDrive:
		d.phyDrive = value
	case usbdev.RegPhyConfig:
		d.phyConfig = value
	}
}

// stageAvailable latches an availability-port write. A second write while
// one is staged replaces it and raises the overflow interrupt; the driver
// never does this because both queues report full while an entry is
// staged. Callers hold d.mu.
func (d *Device) stageAvailable(value uint32, setup bool) {
	if d.hasStaged {
		d.raise(usbdev.IntrAvailableBufferOverflow)
		d.log.Warn("availability port overrun", "lost", d.staged.id)
	}
	d.staged = stagedEntry{id: usbdev.BufferID(value & usbdev.RxBufferID), setup: setup}
	d.hasStaged = true
	d.log.Debug("buffer staged", "buffer", d.staged.id, "setup", setup)
}

// popReceive removes and encodes the head of the receive queue, or yields
// zero when it is empty. Callers hold d.mu.
func (d *Device) popReceive() uint32 {
	if len(d.rx) == 0 {
		return 0
	}
	e := d.rx[0]
	d.rx = d.rx[1:]

	v := uint32(e.id) & usbdev.RxBufferID
	v |= (uint32(e.size) << usbdev.RxSizeShift) & usbdev.RxSize
	if e.setup {
		v |= usbdev.RxSetup
	}
	v |= (uint32(e.ep) << usbdev.RxEndpointIDShift) & usbdev.RxEndpointID
	return v
}

// ramRead returns the aligned word of packet buffer memory at offset.
// Misaligned and out-of-window reads yield zero, as the fabric returns for
// unhandled accesses. Callers hold d.mu.
func (d *Device) ramRead(offset uint32) uint32 {
	if offset%4 != 0 || offset+4 > windowSize {
		return 0
	}
	return binary.LittleEndian.Uint32(d.ram[offset-usbdev.BufferStart:])
}

// ramWrite stores an aligned word of packet buffer memory at offset.
// Misaligned and out-of-window writes are dropped, as the hardware drops
// sub-word buffer accesses. Callers hold d.mu.
func (d *Device) ramWrite(offset uint32, value uint32) {
	if offset%4 != 0 || offset+4 > windowSize {
		return
	}
	binary.LittleEndian.PutUint32(d.ram[offset-usbdev.BufferStart:], value)
}
