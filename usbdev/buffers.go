package usbdev

// SupplyBuffers keeps the available OUT and available SETUP queues supplied
// with buffers for packet reception. bitmap holds the buffers that are
// software-owned and free; the return value is the updated bitmap with the
// handed-off buffers cleared.
//
// Buffers are offered in ascending id order. Writing an id to an
// availability register enqueues exactly one buffer, transferring its
// ownership to the controller; the register is a producer port, not an
// index. When the SETUP queue reports full the buffer goes to the OUT queue
// instead, and when both report full the scan stops: the remaining buffers
// stay in the bitmap for a later call. SETUP is deliberately refilled in
// preference to OUT; do not rebalance the queues here.
//
// The function never blocks and is safe to call after every buffer release.
// A starved availability queue stalls reception, so call it often. Once
// both queues are full, further calls return bitmap unchanged.
func (c *Controller) SupplyBuffers(bitmap uint32) uint32 {
	for id := uint32(0); id < NumBuffers; id++ {
		if bitmap&(1<<id) != 0 {
			if c.bus.Read32(RegStatus)&StatusAvailableSetupFull != 0 {
				if c.bus.Read32(RegStatus)&StatusAvailableOutFull != 0 {
					break
				}
				c.bus.Write32(RegAvailableOutBuffer, id)
			} else {
				c.bus.Write32(RegAvailableSetupBuffer, id)
			}
			bitmap &^= 1 << id
		}
	}
	return bitmap
}

// Pool tracks which packet buffers are software-owned and free.
//
// A buffer id is owned either by software or by the controller, never both.
// Ownership moves to the controller through exactly two kinds of write: an
// availability-port write made by Supply, or a ConfigIn Ready write made by
// Controller.SendPacket. It moves back to software through exactly two
// kinds of completion: a receive-queue entry returned by
// Controller.RecvPacket, or an IN completion returned by
// Controller.PacketCollected. Call Release with ids recovered from
// completions; never touch a buffer's memory between hand-off and
// completion.
//
// Pool is a plain value with no locking, like the rest of the driver.
type Pool struct {
	free uint32
}

// NewPool returns a pool holding all NumBuffers buffers.
func NewPool() *Pool {
	return &Pool{free: AllBuffers}
}

// Bitmap returns the bitmap of free, software-owned buffers.
func (p *Pool) Bitmap() uint32 {
	return p.free
}

// SetBitmap replaces the bitmap, for adopting the remainder returned by
// Controller.Init.
func (p *Pool) SetBitmap(bitmap uint32) {
	p.free = bitmap
}

// Contains reports whether buffer id is free in the pool.
func (p *Pool) Contains(id BufferID) bool {
	return id < NumBuffers && p.free&(1<<id) != 0
}

// Take removes a free buffer from the pool for a software-initiated
// hand-off such as SendPacket. It returns false when id is out of range or
// not free.
func (p *Pool) Take(id BufferID) bool {
	if !p.Contains(id) {
		return false
	}
	p.free &^= 1 << id
	return true
}

// TakeAny removes and returns the lowest free buffer. ok is false when the
// pool is empty.
func (p *Pool) TakeAny() (id BufferID, ok bool) {
	for id = 0; id < NumBuffers; id++ {
		if p.free&(1<<id) != 0 {
			p.free &^= 1 << id
			return id, true
		}
	}
	return 0, false
}

// Release returns a buffer recovered from a completion to the pool.
func (p *Pool) Release(id BufferID) {
	if id < NumBuffers {
		p.free |= 1 << id
	}
}

// Free returns the number of free buffers.
func (p *Pool) Free() int {
	n := 0
	for v := p.free; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Supply offers the pool's free buffers to the controller's availability
// queues and keeps the unassigned remainder.
func (p *Pool) Supply(c *Controller) {
	p.free = c.SupplyBuffers(p.free)
}
