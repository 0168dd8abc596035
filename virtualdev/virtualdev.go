// Package virtualdev models the USB device controller in software.
//
// Device implements usbdev.Bus with the controller's observable register
// semantics: write-one-to-clear interrupt state, availability ports feeding
// queues through a staging slot, a receive queue that pops on read, and
// word-addressed packet buffer memory. The other end of the cable is driven
// by the host-side methods (Deliver, Collect, Attach, FrameTick), so driver
// code runs against a Device unchanged, in tests and in the simulator.
package virtualdev

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/marnovandermaas/sunburst/usbdev"
)

// Queue capacities of the modelled controller.
const (
	// OutQueueCap is the capacity of the available OUT buffer queue.
	OutQueueCap = 8
	// SetupQueueCap is the capacity of the available SETUP buffer queue.
	SetupQueueCap = 4
	// ReceiveQueueCap is the capacity of the receive queue.
	ReceiveQueueCap = 8
)

// Link states reported in the status register. Suspend signalling is not
// modelled; these are the states a Device moves through.
const (
	LinkDisconnected uint8 = 0
	LinkPowered      uint8 = 1
	LinkActive       uint8 = 3
)

// Host-side errors. They mirror what a host observes on the wire: a
// missing handshake, a STALL, or a NAK.
var (
	// ErrBadEndpoint is returned for endpoint indices the controller does
	// not have.
	ErrBadEndpoint = errors.New("virtualdev: endpoint out of range")

	// ErrPacketTooLong is returned for payloads over the buffer size.
	ErrPacketTooLong = errors.New("virtualdev: packet longer than buffer")

	// ErrDetached is returned while the device pull-up is disabled; the
	// host sees no device and gets no handshake.
	ErrDetached = errors.New("virtualdev: device not connected")

	// ErrDisabled is returned for transactions to an endpoint that is not
	// enabled for the transfer; the hardware ignores them.
	ErrDisabled = errors.New("virtualdev: endpoint not enabled")

	// ErrStalled is the STALL handshake, from an endpoint with its stall
	// bit set.
	ErrStalled = errors.New("virtualdev: endpoint stalled")

	// ErrNak is the NAK handshake: the device cannot take or supply a
	// packet right now. For OUT and SETUP that means no available buffer,
	// a full receive queue, or reception disabled; for IN it means no
	// packet is ready. The host retries later.
	ErrNak = errors.New("virtualdev: transaction not acknowledged")
)

type stagedEntry struct {
	id    usbdev.BufferID
	setup bool
}

type rxEntry struct {
	ep    uint8
	id    usbdev.BufferID
	size  uint16
	setup bool
}

// Device is a software model of one USB device controller. The zero value
// is not usable; construct instances with New.
//
// The register side (Read32, Write32) is driven by usbdev.Controller; the
// host side is driven by tests and simulations. Both sides may run from
// different goroutines.
type Device struct {
	mu  sync.Mutex
	log *slog.Logger

	intrState  uint32
	intrEnable uint32

	control   uint32
	epOutEn   uint32
	epInEn    uint32
	rxEnSetup uint32
	rxEnOut   uint32
	setNakOut uint32
	inSent    uint32
	outStall  uint32
	inStall   uint32
	configIn  [usbdev.MaxEndpoints]uint32
	outIso    uint32
	inIso     uint32
	outToggle uint32
	inToggle  uint32
	phyDrive  uint32
	phyConfig uint32

	frame     uint16
	linkState uint8
	sense     bool

	// One availability-port write in flight. While it is staged neither
	// port can take another, so both queues report full until Absorb.
	staged    stagedEntry
	hasStaged bool

	outQueue   []usbdev.BufferID
	setupQueue []usbdev.BufferID
	rx         []rxEntry

	ram [usbdev.NumBuffers * usbdev.MaxPacketLen]byte
}

// New returns a detached Device with empty queues and all endpoints
// disabled. logger may be nil to disable event tracing.
func New(logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Device{log: logger}
}

// Attach applies VBUS, as plugging the cable into a powered host port
// would. The sense bit reads high afterwards and the Powered interrupt is
// raised.
func (d *Device) Attach() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sense {
		return
	}
	d.sense = true
	d.linkState = LinkPowered
	d.raise(usbdev.IntrPowered)
	d.log.Debug("attached")
}

// Detach removes VBUS. The sense bit reads low afterwards and the
// Disconnected interrupt is raised.
func (d *Device) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.sense {
		return
	}
	d.sense = false
	d.linkState = LinkDisconnected
	d.raise(usbdev.IntrDisconnected)
	d.log.Debug("detached")
}

// FrameTick advances the frame number as a Start of Frame packet would,
// wrapping at 11 bits, and raises the FrameUpdated interrupt.
func (d *Device) FrameTick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = (d.frame + 1) & 0x7FF
	d.raise(usbdev.IntrFrameUpdated)
}

// Absorb commits the staged availability-port write into its queue,
// modelling the cycle the hardware takes to move a written id into queue
// storage. It reports whether an entry was staged. Committing into a queue
// that is already at capacity drops the entry and raises the
// AvailableBufferOverflow interrupt.
func (d *Device) Absorb() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasStaged {
		return false
	}
	e := d.staged
	d.hasStaged = false
	if e.setup {
		if len(d.setupQueue) == SetupQueueCap {
			d.raise(usbdev.IntrAvailableBufferOverflow)
			d.log.Warn("setup queue overflow", "buffer", e.id)
			return true
		}
		d.setupQueue = append(d.setupQueue, e.id)
	} else {
		if len(d.outQueue) == OutQueueCap {
			d.raise(usbdev.IntrAvailableBufferOverflow)
			d.log.Warn("out queue overflow", "buffer", e.id)
			return true
		}
		d.outQueue = append(d.outQueue, e.id)
	}
	d.log.Debug("buffer absorbed", "buffer", e.id, "setup", e.setup)
	return true
}

// Deliver carries one packet from the host to the device, as the
// controller would complete an OUT or SETUP transaction. It takes a buffer
// id from the matching availability queue, writes the payload into that
// buffer and pushes a receive queue entry.
//
// The error reflects the handshake the host would observe: ErrDetached or
// ErrDisabled for no response, ErrStalled for a STALL, ErrNak when no
// buffer is available, reception is off, or the receive queue is full.
// SETUP transactions ignore and clear the endpoint pair's stall bits.
func (d *Device) Deliver(ep uint8, setup bool, payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ep >= usbdev.MaxEndpoints {
		return ErrBadEndpoint
	}
	if len(payload) > usbdev.MaxPacketLen {
		return ErrPacketTooLong
	}
	if d.control&usbdev.CtrlEnable == 0 {
		return ErrDetached
	}
	epMask := uint32(1) << ep
	if d.epOutEn&epMask == 0 {
		return ErrDisabled
	}
	if setup {
		if d.rxEnSetup&epMask == 0 {
			return ErrDisabled
		}
	} else {
		if d.outStall&epMask != 0 {
			return ErrStalled
		}
		if d.rxEnOut&epMask == 0 {
			return ErrNak
		}
	}
	if len(d.rx) == ReceiveQueueCap {
		return ErrNak
	}

	var id usbdev.BufferID
	if setup {
		if len(d.setupQueue) == 0 {
			return ErrNak
		}
		id = d.setupQueue[0]
		d.setupQueue = d.setupQueue[1:]
	} else {
		if len(d.outQueue) == 0 {
			return ErrNak
		}
		id = d.outQueue[0]
		d.outQueue = d.outQueue[1:]
	}

	copy(d.ram[int(id)*usbdev.MaxPacketLen:], payload)
	if setup {
		// SETUP reception re-arms a stalled control endpoint.
		d.outStall &^= epMask
		d.inStall &^= epMask
	}
	d.rx = append(d.rx, rxEntry{ep: ep, id: id, size: uint16(len(payload)), setup: setup})
	d.linkState = LinkActive
	d.log.Debug("packet delivered", "ep", ep, "setup", setup, "buffer", id, "size", len(payload))
	return nil
}

// Collect completes a pending IN transfer, as the host would with an IN
// token: it returns the payload of the endpoint's configured buffer,
// clears the Ready flag and sets the endpoint's inSent bit.
//
// The error reflects the handshake the host would observe: ErrDetached or
// ErrDisabled for no response, ErrStalled for a STALL, ErrNak when no
// packet is ready.
func (d *Device) Collect(ep uint8) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ep >= usbdev.MaxEndpoints {
		return nil, ErrBadEndpoint
	}
	if d.control&usbdev.CtrlEnable == 0 {
		return nil, ErrDetached
	}
	epMask := uint32(1) << ep
	if d.epInEn&epMask == 0 {
		return nil, ErrDisabled
	}
	if d.inStall&epMask != 0 {
		return nil, ErrStalled
	}
	cfg := d.configIn[ep]
	if cfg&usbdev.ConfigInReady == 0 {
		return nil, ErrNak
	}

	id := usbdev.BufferID(cfg & usbdev.ConfigInBufferID)
	size := (cfg & usbdev.ConfigInSize) >> usbdev.ConfigInSizeShift
	payload := make([]byte, size)
	copy(payload, d.ram[int(id)*usbdev.MaxPacketLen:])
	d.configIn[ep] = cfg &^ usbdev.ConfigInReady
	d.inSent |= epMask
	d.linkState = LinkActive
	d.log.Debug("packet collected", "ep", ep, "buffer", id, "size", size)
	return payload, nil
}

// raise latches an event interrupt. Callers hold d.mu.
func (d *Device) raise(intr usbdev.Interrupt) {
	d.intrState |= uint32(intr)
}

// statusInterrupts returns the interrupt bits that mirror a live
// condition. They assert as long as the condition holds, so they are ORed
// into every interruptState read instead of being latched. Callers hold
// d.mu.
func (d *Device) statusInterrupts() uint32 {
	var s usbdev.Interrupt
	if len(d.rx) > 0 {
		s |= usbdev.IntrPacketReceived
	}
	if d.inSent != 0 {
		s |= usbdev.IntrPacketSent
	}
	if len(d.outQueue) == 0 {
		s |= usbdev.IntrAvailableOutEmpty
	}
	if len(d.setupQueue) == 0 {
		s |= usbdev.IntrAvailableSetupEmpty
	}
	if len(d.rx) == ReceiveQueueCap {
		s |= usbdev.IntrReceiveFull
	}
	return uint32(s)
}

func (d *Device) outFull() bool {
	return d.hasStaged || len(d.outQueue) == OutQueueCap
}

func (d *Device) setupFull() bool {
	return d.hasStaged || len(d.setupQueue) == SetupQueueCap
}

// status composes the status register from live state. Callers hold d.mu.
func (d *Device) status() uint32 {
	s := uint32(d.frame) & usbdev.StatusFrame
	s |= uint32(d.linkState) << usbdev.StatusLinkStateShift
	if d.sense {
		s |= usbdev.StatusSense
	}
	s |= uint32(len(d.outQueue)) << usbdev.StatusAvailableOutDepthShift
	s |= uint32(len(d.setupQueue)) << usbdev.StatusAvailableSetupDepthShift
	if d.outFull() {
		s |= usbdev.StatusAvailableOutFull
	}
	if d.setupFull() {
		s |= usbdev.StatusAvailableSetupFull
	}
	s |= uint32(len(d.rx)) << usbdev.StatusReceiveDepthShift
	if len(d.rx) == 0 {
		s |= usbdev.StatusReceiveEmpty
	}
	return s
}
