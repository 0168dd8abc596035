package usbdev

// Controller capacities.
const (
	// NumBuffers is the number of packet buffers provided by the controller.
	NumBuffers = 32
	// MaxPacketLen is the size of each packet buffer in bytes.
	MaxPacketLen = 64
	// MaxEndpoints is the number of endpoints supported in each direction.
	MaxEndpoints = 12

	// AllBuffers is the availability bitmap with every buffer free.
	AllBuffers uint32 = 1<<NumBuffers - 1
)

// Register offsets. Registers are 4 bytes each, sequential, no gaps.
const (
	RegInterruptState       = 0x00 // pending interrupts (W1C)
	RegInterruptEnable      = 0x04 // interrupt enable mask (RW)
	RegInterruptTest        = 0x08 // software-raised interrupts (W)
	RegAlertTest            = 0x0C // alert test (W)
	RegControl              = 0x10 // device enable, resume, address (RW)
	RegEndpointOutEnable    = 0x14 // per-endpoint OUT enable bitmap (RW)
	RegEndpointInEnable     = 0x18 // per-endpoint IN enable bitmap (RW)
	RegStatus               = 0x1C // frame, link and queue status (R)
	RegAvailableOutBuffer   = 0x20 // available OUT queue producer port (W)
	RegAvailableSetupBuffer = 0x24 // available SETUP queue producer port (W)
	RegReceiveBuffer        = 0x28 // receive queue; a read pops one entry (R)
	RegReceiveEnableSetup   = 0x2C // per-endpoint SETUP reception enable (RW)
	RegReceiveEnableOut     = 0x30 // per-endpoint OUT reception enable (RW)
	RegSetNakOut            = 0x34 // NAK OUT transactions after reception (RW)
	RegInSent               = 0x38 // per-endpoint IN completion bitmap (W1C)
	RegOutStall             = 0x3C // per-endpoint OUT stall bitmap (RW)
	RegInStall              = 0x40 // per-endpoint IN stall bitmap (RW)
	RegConfigIn             = 0x44 // IN transaction config, one per endpoint
	RegOutIsochronous       = 0x74 // per-endpoint OUT isochronous bitmap (RW)
	RegInIsochronous        = 0x78 // per-endpoint IN isochronous bitmap (RW)
	RegOutDataToggle        = 0x7C // OUT data toggle state (RW)
	RegInDataToggle         = 0x80 // IN data toggle state (RW)
	RegPhyPinsSense         = 0x84 // PHY pin state readback (R, debug)
	RegPhyPinsDrive         = 0x88 // PHY pin override (RW, debug)
	RegPhyConfig            = 0x8C // PHY configuration (RW)

	// BufferStart is the offset of packet buffer memory within the device
	// window. Buffer n occupies MaxPacketLen bytes at
	// BufferStart + n*MaxPacketLen.
	BufferStart = 0x800
)

// Interrupt identifies one or more controller interrupts as a bitmask.
type Interrupt uint32

// Interrupt bits.
const (
	// IntrPacketReceived is asserted while the receive queue is not empty.
	IntrPacketReceived Interrupt = 1 << 0
	// IntrPacketSent is asserted while a sent IN packet has not been
	// cleared from the inSent register.
	IntrPacketSent Interrupt = 1 << 1
	// IntrDisconnected is raised when VBUS is lost.
	IntrDisconnected Interrupt = 1 << 2
	// IntrHostLost is raised when no Start of Frame has been seen within
	// 4.096 ms while the link is active.
	IntrHostLost Interrupt = 1 << 3
	// IntrLinkReset is raised when the link is held in SE0 for more than
	// 3 us, signalling a bus reset.
	IntrLinkReset Interrupt = 1 << 4
	// IntrLinkSuspend is raised when the link has been idle for more than
	// 3 ms and enters suspend.
	IntrLinkSuspend Interrupt = 1 << 5
	// IntrLinkResume is raised on transition out of suspend.
	IntrLinkResume Interrupt = 1 << 6
	// IntrAvailableOutEmpty is asserted while the available OUT queue is
	// empty.
	IntrAvailableOutEmpty Interrupt = 1 << 7
	// IntrReceiveFull is asserted while the receive queue is full.
	IntrReceiveFull Interrupt = 1 << 8
	// IntrAvailableBufferOverflow is raised when an availability queue
	// overflows.
	IntrAvailableBufferOverflow Interrupt = 1 << 9
	// IntrLinkInError is raised on an IN transaction error.
	IntrLinkInError Interrupt = 1 << 10
	// IntrCRCError is raised when a received packet fails its cyclic
	// redundancy check.
	IntrCRCError Interrupt = 1 << 11
	// IntrPacketIDError is raised on an invalid packet identifier.
	IntrPacketIDError Interrupt = 1 << 12
	// IntrBitstuffError is raised on a bit stuffing violation.
	IntrBitstuffError Interrupt = 1 << 13
	// IntrFrameUpdated is raised when the frame number is updated by a
	// valid Start of Frame packet.
	IntrFrameUpdated Interrupt = 1 << 14
	// IntrPowered is raised when VBUS is detected.
	IntrPowered Interrupt = 1 << 15
	// IntrLinkOutError is raised on an OUT transaction error.
	IntrLinkOutError Interrupt = 1 << 16
	// IntrAvailableSetupEmpty is asserted while the available SETUP queue
	// is empty.
	IntrAvailableSetupEmpty Interrupt = 1 << 17
)

// Control register fields (offset 0x10). Bits 2-15 and 23-31 are reserved.
const (
	CtrlEnable           uint32 = 1 << 0
	CtrlResumeLinkActive uint32 = 1 << 1
	CtrlDeviceAddress    uint32 = 0x7F << 16

	CtrlDeviceAddressShift = 16
)

// Status register fields (offset 0x1C). Bits 28-29 are reserved.
const (
	StatusFrame               uint32 = 0x7FF << 0
	StatusHostLost            uint32 = 1 << 11
	StatusLinkState           uint32 = 0x7 << 12
	StatusSense               uint32 = 1 << 15
	StatusAvailableOutDepth   uint32 = 0xF << 16
	StatusAvailableSetupDepth uint32 = 0x7 << 20
	StatusAvailableOutFull    uint32 = 1 << 23
	StatusReceiveDepth        uint32 = 0xF << 24
	StatusAvailableSetupFull  uint32 = 1 << 30
	StatusReceiveEmpty        uint32 = 1 << 31

	StatusLinkStateShift           = 12
	StatusAvailableOutDepthShift   = 16
	StatusAvailableSetupDepthShift = 20
	StatusReceiveDepthShift        = 24
)

// Receive queue entry fields (offset 0x28). Bits 5-7, 15-18 and 24-31 are
// reserved.
const (
	RxBufferID   uint32 = 0x1F << 0
	RxSize       uint32 = 0x7F << 8
	RxSetup      uint32 = 1 << 19
	RxEndpointID uint32 = 0xF << 20

	RxSizeShift       = 8
	RxEndpointIDShift = 20
)

// ConfigIn register fields (offsets 0x44-0x70, one register per endpoint).
// Bits 5-7 and 15-28 are reserved.
const (
	ConfigInBufferID uint32 = 0x1F << 0
	ConfigInSize     uint32 = 0x7F << 8
	ConfigInSending  uint32 = 1 << 29
	ConfigInPending  uint32 = 1 << 30
	ConfigInReady    uint32 = 1 << 31

	ConfigInSizeShift = 8
)

// PHY configuration fields (offset 0x8C). Remaining fields are not used by
// this driver.
const (
	PhyUseDifferentialReceiver uint32 = 1 << 0
)

// BufferID identifies one of the controller's packet buffers.
type BufferID uint8

// BufferOffset returns the offset of a packet buffer's memory within the
// device window.
func BufferOffset(id BufferID) uint32 {
	return BufferStart + uint32(id)*MaxPacketLen
}
