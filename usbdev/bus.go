package usbdev

// Bus is the word-granular access port to the controller's register window
// and packet buffer memory. Offsets are relative to the start of the device
// window; the Reg* constants and BufferOffset give the valid offsets.
//
// The interface deliberately offers nothing narrower than 32 bits: the
// device bus supports only aligned word accesses, and byte-granularity
// stores would be silently dropped by the hardware. Implementations must
// perform exactly one access per call, in call order, with no caching.
//
// *Registers implements Bus over a memory-mapped device window. Software
// models of the controller implement it for tests and simulation.
type Bus interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, value uint32)
}
