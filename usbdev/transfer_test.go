package usbdev_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marnovandermaas/sunburst/usbdev"
	"github.com/marnovandermaas/sunburst/virtualdev"
)

// newLink returns a device and controller with filled availability queues,
// control traffic enabled on endpoint 0 and the pull-up on. The pool holds
// the remaining software-owned buffers.
func newLink(t *testing.T) (*virtualdev.Device, *usbdev.Controller, *usbdev.Pool) {
	t.Helper()
	dev := virtualdev.New(nil)
	ctrl := usbdev.New(dev)
	pool := usbdev.NewPool()
	pool.SetBitmap(ctrl.Init())
	for dev.Absorb() {
		pool.Supply(ctrl)
	}
	require.NoError(t, ctrl.ConfigureOutEndpoint(0, true, true, false))
	require.NoError(t, ctrl.ConfigureInEndpoint(0, true, false))
	ctrl.Connect()
	dev.Attach()
	return dev, ctrl, pool
}

// Sending 3 bytes in buffer 3 on endpoint 1: one packed word lands in the
// buffer-3 region, then configIn[1] is loaded with buffer and size, then a
// separate read-modify-write sets Ready.
func TestSendPacketWriteSequence(t *testing.T) {
	bus := record(virtualdev.New(nil))
	ctrl := usbdev.New(bus)

	require.NoError(t, ctrl.SendPacket(3, 1, []byte{0x11, 0x22, 0x23}))

	configIn1 := uint32(usbdev.RegConfigIn) + 4
	writes := bus.writes()
	require.Len(t, writes, 3)
	assert.Equal(t, usbdev.BufferOffset(3), writes[0].offset)
	assert.Equal(t, uint32(0x00232211), writes[0].value)
	assert.Equal(t, configIn1, writes[1].offset)
	assert.Equal(t, uint32(3|3<<usbdev.ConfigInSizeShift), writes[1].value)
	assert.Equal(t, configIn1, writes[2].offset)
	assert.Equal(t, uint32(3|3<<usbdev.ConfigInSizeShift)|usbdev.ConfigInReady, writes[2].value)

	// The Ready flag is set by a read-modify-write of the loaded value.
	require.Len(t, bus.ops, 4)
	readBack := bus.ops[2]
	assert.False(t, readBack.write)
	assert.Equal(t, configIn1, readBack.offset)
}

// Every payload word reaches the buffer before Ready is set, in bus order.
func TestSendPacketPayloadPrecedesReady(t *testing.T) {
	bus := record(virtualdev.New(nil))
	ctrl := usbdev.New(bus)

	data := make([]byte, usbdev.MaxPacketLen)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, ctrl.SendPacket(7, 2, data))

	writes := bus.writes()
	require.Len(t, writes, usbdev.MaxPacketLen/4+2)
	for i := 0; i < usbdev.MaxPacketLen/4; i++ {
		assert.Equal(t, usbdev.BufferOffset(7)+4*uint32(i), writes[i].offset)
	}
	last := writes[len(writes)-1]
	assert.NotZero(t, last.value&usbdev.ConfigInReady)
}

// Zero-length packets skip the payload copy but still set Ready; they
// acknowledge control transfer status stages.
func TestSendPacketZeroLength(t *testing.T) {
	bus := record(virtualdev.New(nil))
	ctrl := usbdev.New(bus)

	require.NoError(t, ctrl.SendPacket(4, 0, nil))

	writes := bus.writes()
	require.Len(t, writes, 2)
	assert.Equal(t, uint32(usbdev.RegConfigIn), writes[0].offset)
	assert.Equal(t, uint32(4), writes[0].value)
	assert.Equal(t, uint32(4)|usbdev.ConfigInReady, writes[1].value)
}

func TestSendPacketValidation(t *testing.T) {
	tests := []struct {
		name    string
		buf     usbdev.BufferID
		ep      uint8
		size    int
		wantErr error
	}{
		{"endpoint out of range", 0, usbdev.MaxEndpoints, 1, usbdev.ErrBadEndpoint},
		{"buffer out of range", usbdev.NumBuffers, 0, 1, usbdev.ErrBadBuffer},
		{"payload too long", 0, 0, usbdev.MaxPacketLen + 1, usbdev.ErrPacketTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := record(virtualdev.New(nil))
			ctrl := usbdev.New(bus)
			err := ctrl.SendPacket(tt.buf, tt.ep, make([]byte, tt.size))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, bus.ops, "failed calls touch no registers")
		})
	}
}

func TestSendCollectRoundTrip(t *testing.T) {
	dev, ctrl, pool := newLink(t)

	buf, ok := pool.TakeAny()
	require.True(t, ok)
	payload := []byte{0xCA, 0xFE, 0x01, 0x02, 0x03}
	require.NoError(t, ctrl.SendPacket(buf, 0, payload))

	got, err := dev.Collect(0)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	ep, released, err := ctrl.PacketCollected()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), ep)
	assert.Equal(t, buf, released)
	pool.Release(released)

	_, _, err = ctrl.PacketCollected()
	assert.ErrorIs(t, err, usbdev.ErrNoPacket)
}

// Completions drain lowest endpoint first, clearing only the reported
// endpoint's bit each call.
func TestPacketCollectedLowestFirst(t *testing.T) {
	dev, ctrl, pool := newLink(t)
	require.NoError(t, ctrl.ConfigureInEndpoint(2, true, false))
	require.NoError(t, ctrl.ConfigureInEndpoint(5, true, false))

	bufA, ok := pool.TakeAny()
	require.True(t, ok)
	bufB, ok := pool.TakeAny()
	require.True(t, ok)
	require.NoError(t, ctrl.SendPacket(bufA, 5, []byte{5}))
	require.NoError(t, ctrl.SendPacket(bufB, 2, []byte{2}))

	_, err := dev.Collect(5)
	require.NoError(t, err)
	_, err = dev.Collect(2)
	require.NoError(t, err)

	bus := record(dev)
	drain := usbdev.New(bus)

	ep, got, err := drain.PacketCollected()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), ep)
	assert.Equal(t, bufB, got)

	writes := bus.writes()
	require.Len(t, writes, 1)
	assert.Equal(t, uint32(usbdev.RegInSent), writes[0].offset)
	assert.Equal(t, uint32(1)<<2, writes[0].value)

	ep, got, err = drain.PacketCollected()
	require.NoError(t, err)
	assert.Equal(t, uint8(5), ep)
	assert.Equal(t, bufA, got)

	_, _, err = drain.PacketCollected()
	assert.ErrorIs(t, err, usbdev.ErrNoPacket)
}

func TestRecvPacketEmptyQueue(t *testing.T) {
	_, ctrl, _ := newLink(t)
	var data [usbdev.MaxPacketLen]byte
	_, err := ctrl.RecvPacket(data[:])
	assert.ErrorIs(t, err, usbdev.ErrReceiveEmpty)
}

func TestRecvPacketRoundTrip(t *testing.T) {
	dev, ctrl, _ := newLink(t)
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x55}
	require.NoError(t, dev.Deliver(0, true, payload))

	var data [usbdev.MaxPacketLen]byte
	pkt, err := ctrl.RecvPacket(data[:])
	require.NoError(t, err)
	assert.Equal(t, uint8(0), pkt.Endpoint)
	assert.True(t, pkt.Setup)
	assert.Equal(t, uint16(len(payload)), pkt.Size)
	assert.Equal(t, payload, data[:pkt.Size])
}

// A short destination still consumes the queue entry: the metadata comes
// back with ErrShortBuffer and the buffer id stays recyclable.
func TestRecvPacketShortDestination(t *testing.T) {
	dev, ctrl, _ := newLink(t)
	require.NoError(t, dev.Deliver(0, false, make([]byte, 8)))

	pkt, err := ctrl.RecvPacket(make([]byte, 4))
	assert.ErrorIs(t, err, usbdev.ErrShortBuffer)
	assert.Equal(t, uint16(8), pkt.Size)

	_, err = ctrl.RecvPacket(make([]byte, usbdev.MaxPacketLen))
	assert.ErrorIs(t, err, usbdev.ErrReceiveEmpty, "entry was consumed")
}

// The receive queue register pops on read, so one reception performs
// exactly one read of it.
func TestRecvPacketReadsQueueOnce(t *testing.T) {
	dev, ctrl, _ := newLink(t)
	require.NoError(t, dev.Deliver(0, false, []byte{1, 2, 3}))

	bus := record(dev)
	var data [usbdev.MaxPacketLen]byte
	_, err := usbdev.New(bus).RecvPacket(data[:])
	require.NoError(t, err)

	pops := 0
	for _, op := range bus.ops {
		if !op.write && op.offset == usbdev.RegReceiveBuffer {
			pops++
		}
	}
	assert.Equal(t, 1, pops)
}
