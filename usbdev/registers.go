package usbdev

import (
	"unsafe"

	"github.com/marnovandermaas/sunburst/mmio"
)

// Registers is the controller's register layout: 4-byte registers, defined
// sequentially with no gaps. Map it over the start of the device MMIO
// window. Packet buffer memory lives in the same window, starting at
// BufferStart.
type Registers struct {
	InterruptState       mmio.R32               // 0x00
	InterruptEnable      mmio.R32               // 0x04
	InterruptTest        mmio.R32               // 0x08
	AlertTest            mmio.R32               // 0x0C
	Control              mmio.R32               // 0x10
	EndpointOutEnable    mmio.R32               // 0x14
	EndpointInEnable     mmio.R32               // 0x18
	Status               mmio.R32               // 0x1C
	AvailableOutBuffer   mmio.R32               // 0x20
	AvailableSetupBuffer mmio.R32               // 0x24
	ReceiveBuffer        mmio.R32               // 0x28
	ReceiveEnableSetup   mmio.R32               // 0x2C
	ReceiveEnableOut     mmio.R32               // 0x30
	SetNakOut            mmio.R32               // 0x34
	InSent               mmio.R32               // 0x38
	OutStall             mmio.R32               // 0x3C
	InStall              mmio.R32               // 0x40
	ConfigIn             [MaxEndpoints]mmio.R32 // 0x44
	OutIsochronous       mmio.R32               // 0x74
	InIsochronous        mmio.R32               // 0x78
	OutDataToggle        mmio.R32               // 0x7C
	InDataToggle         mmio.R32               // 0x80
	PhyPinsSense         mmio.R32               // 0x84, debug only
	PhyPinsDrive         mmio.R32               // 0x88, debug only
	PhyConfig            mmio.R32               // 0x8C
}

// Read32 performs a volatile 32-bit read at offset within the device
// window. Offsets past the register block address packet buffer memory; the
// window spans BufferStart + NumBuffers*MaxPacketLen bytes.
func (r *Registers) Read32(offset uint32) uint32 {
	return (*mmio.R32)(unsafe.Add(unsafe.Pointer(r), uintptr(offset))).Get()
}

// Write32 performs a volatile 32-bit write at offset within the device
// window.
func (r *Registers) Write32(offset uint32, value uint32) {
	(*mmio.R32)(unsafe.Add(unsafe.Pointer(r), uintptr(offset))).Set(value)
}
