package usbdev

// Received describes one packet extracted from the receive queue.
type Received struct {
	// Endpoint is the OUT endpoint the packet arrived on.
	Endpoint uint8
	// Buffer is the packet buffer holding the payload. It is
	// software-owned again once RecvPacket returns; release it to the
	// pool after use.
	Buffer BufferID
	// Size is the payload length in bytes. Zero-length packets occur in
	// the status stage of IN control transfers.
	Size uint16
	// Setup reports whether the packet is a SETUP transaction.
	Setup bool
}

// SendPacket presents a packet on IN endpoint ep for collection by the
// host. The payload is copied into buffer buf's packet memory, then the
// endpoint's ConfigIn register is loaded with the buffer and size and its
// Ready flag is set. Ownership of buf transfers to the controller at the
// Ready write; it returns to software when PacketCollected reports the
// completion.
//
// The payload copy is issued strictly before the Ready write, in the order
// the controller observes. Zero-length payloads skip the copy but still set
// Ready, which acknowledges status stages.
func (c *Controller) SendPacket(buf BufferID, ep uint8, data []byte) error {
	if ep >= MaxEndpoints {
		return ErrBadEndpoint
	}
	if buf >= NumBuffers {
		return ErrBadBuffer
	}
	if len(data) > MaxPacketLen {
		return ErrPacketTooLong
	}
	if len(data) > 0 {
		copyToDevice(c.bus, BufferOffset(buf), data)
	}
	reg := uint32(RegConfigIn) + 4*uint32(ep)
	c.bus.Write32(reg, uint32(buf)|uint32(len(data))<<ConfigInSizeShift)
	c.bus.Write32(reg, c.bus.Read32(reg)|ConfigInReady)
	return nil
}

// PacketCollected checks for a completed IN transaction. It returns the
// lowest-numbered endpoint with a pending completion and the buffer the
// controller has released, clearing only that endpoint's completion bit.
// ErrNoPacket means no endpoint has a completion pending.
//
// The returned buffer is software-owned again: recycle it into the pool
// and resupply the availability queues.
func (c *Controller) PacketCollected() (ep uint8, buf BufferID, err error) {
	sent := c.bus.Read32(RegInSent)
	for ep = 0; ep < MaxEndpoints; ep++ {
		epMask := uint32(1) << ep
		if sent&epMask != 0 {
			// Write-one-to-clear for this endpoint only.
			c.bus.Write32(RegInSent, epMask)
			cfg := c.bus.Read32(uint32(RegConfigIn) + 4*uint32(ep))
			return ep, BufferID(cfg & ConfigInBufferID), nil
		}
	}
	return 0, 0, ErrNoPacket
}

// RecvPacket collects the next received packet. It fails with
// ErrReceiveEmpty when the receive queue depth is zero. Otherwise it pops
// one entry from the queue (a single read; the queue advances on read),
// decodes the endpoint, size, SETUP flag and buffer id, and copies the
// payload into data.
//
// The payload buffer is software-owned once RecvPacket returns; release it
// to the pool and resupply. When data is too short for the payload the
// entry is still consumed: the metadata comes back with ErrShortBuffer and
// the payload is lost, so size data for MaxPacketLen.
func (c *Controller) RecvPacket(data []byte) (Received, error) {
	if c.bus.Read32(RegStatus)&StatusReceiveDepth == 0 {
		return Received{}, ErrReceiveEmpty
	}
	rx := c.bus.Read32(RegReceiveBuffer)
	pkt := Received{
		Endpoint: uint8((rx & RxEndpointID) >> RxEndpointIDShift),
		Buffer:   BufferID(rx & RxBufferID),
		Size:     uint16((rx & RxSize) >> RxSizeShift),
		Setup:    rx&RxSetup != 0,
	}
	if pkt.Size > 0 {
		if int(pkt.Size) > len(data) {
			return pkt, ErrShortBuffer
		}
		copyFromDevice(c.bus, BufferOffset(pkt.Buffer), data[:pkt.Size])
	}
	return pkt, nil
}
