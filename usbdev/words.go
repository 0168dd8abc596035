package usbdev

import "encoding/binary"

// Packet buffer memory is word-addressable only: the controller ignores
// byte-granularity accesses rather than faulting, so a partial trailing
// word must be assembled or disassembled in software. Dropping that step
// corrupts data silently. Whole words move in unrolled groups of four to
// keep per-word loop overhead off the hot path.

const unrollWords = 4

// copyToDevice writes data into device memory at offset, which must be
// word-aligned. 1-3 trailing bytes are packed lowest-byte-first into one
// final word write.
func copyToDevice(bus Bus, offset uint32, data []byte) {
	i := 0
	for ; i+4*unrollWords <= len(data); i += 4 * unrollWords {
		bus.Write32(offset, binary.LittleEndian.Uint32(data[i:]))
		bus.Write32(offset+4, binary.LittleEndian.Uint32(data[i+4:]))
		bus.Write32(offset+8, binary.LittleEndian.Uint32(data[i+8:]))
		bus.Write32(offset+12, binary.LittleEndian.Uint32(data[i+12:]))
		offset += 4 * unrollWords
	}
	for ; i+4 <= len(data); i += 4 {
		bus.Write32(offset, binary.LittleEndian.Uint32(data[i:]))
		offset += 4
	}
	if rem := len(data) - i; rem > 0 {
		word := uint32(data[i])
		if rem > 1 {
			word |= uint32(data[i+1]) << 8
		}
		if rem > 2 {
			word |= uint32(data[i+2]) << 16
		}
		bus.Write32(offset, word)
	}
}

// copyFromDevice reads len(data) bytes from device memory at offset, which
// must be word-aligned. 1-3 trailing bytes come from one final word read,
// unpacked lowest byte first.
func copyFromDevice(bus Bus, offset uint32, data []byte) {
	i := 0
	for ; i+4*unrollWords <= len(data); i += 4 * unrollWords {
		binary.LittleEndian.PutUint32(data[i:], bus.Read32(offset))
		binary.LittleEndian.PutUint32(data[i+4:], bus.Read32(offset+4))
		binary.LittleEndian.PutUint32(data[i+8:], bus.Read32(offset+8))
		binary.LittleEndian.PutUint32(data[i+12:], bus.Read32(offset+12))
		offset += 4 * unrollWords
	}
	for ; i+4 <= len(data); i += 4 {
		binary.LittleEndian.PutUint32(data[i:], bus.Read32(offset))
		offset += 4
	}
	if rem := len(data) - i; rem > 0 {
		word := bus.Read32(offset)
		data[i] = byte(word)
		if rem > 1 {
			data[i+1] = byte(word >> 8)
		}
		if rem > 2 {
			data[i+2] = byte(word >> 16)
		}
	}
}
