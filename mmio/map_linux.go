package mmio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Window is a mapped view of a physical MMIO region.
type Window struct {
	mem  []byte
	base unsafe.Pointer
}

// MapPhysical maps size bytes of physical address space starting at addr
// through /dev/mem. addr and size must be page-aligned. This is intended for
// userspace bring-up and debugging on development boards; production drivers
// normally run against a kernel-provided mapping instead.
func MapPhysical(addr uintptr, size int) (*Window, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/mem: %w", err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(addr), size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %#x+%#x: %w", addr, size, err)
	}
	return &Window{mem: mem, base: unsafe.Pointer(&mem[0])}, nil
}

// Pointer returns the start of the mapped window. Cast it to a register
// layout struct to access the peripheral.
func (w *Window) Pointer() unsafe.Pointer {
	return w.base
}

// Close unmaps the window. The window must not be accessed afterwards.
func (w *Window) Close() error {
	if w.mem == nil {
		return nil
	}
	err := unix.Munmap(w.mem)
	w.mem = nil
	w.base = nil
	return err
}
