package usbdev

import "errors"

// Driver errors. All of them are recoverable: the caller retries the
// operation on a later poll, after freeing resources or fixing arguments.
var (
	// ErrBadEndpoint is returned when an endpoint index is MaxEndpoints or
	// higher. No registers are modified.
	ErrBadEndpoint = errors.New("usbdev: endpoint out of range")

	// ErrBadAddress is returned when a device address is 0x80 or higher.
	// No registers are modified.
	ErrBadAddress = errors.New("usbdev: device address out of range")

	// ErrBadBuffer is returned when a buffer id is NumBuffers or higher.
	ErrBadBuffer = errors.New("usbdev: buffer id out of range")

	// ErrPacketTooLong is returned when a payload exceeds MaxPacketLen.
	ErrPacketTooLong = errors.New("usbdev: packet longer than buffer")

	// ErrShortBuffer is returned by RecvPacket when the destination slice
	// cannot hold the received payload. The queue entry has already been
	// consumed; the returned metadata is valid but the payload is lost.
	ErrShortBuffer = errors.New("usbdev: destination shorter than packet")

	// ErrReceiveEmpty is returned by RecvPacket when the receive queue is
	// empty.
	ErrReceiveEmpty = errors.New("usbdev: receive queue empty")

	// ErrNoPacket is returned by PacketCollected when no endpoint has a
	// pending IN completion.
	ErrNoPacket = errors.New("usbdev: no collected packet")
)
