package usbdev_test

import (
	"github.com/marnovandermaas/sunburst/usbdev"
	"github.com/marnovandermaas/sunburst/virtualdev"
)

type busOp struct {
	write  bool
	offset uint32
	value  uint32
}

// recordingBus wraps another Bus and records every access in order, for
// asserting what the driver put on the wire.
type recordingBus struct {
	inner usbdev.Bus
	ops   []busOp
}

func record(inner usbdev.Bus) *recordingBus {
	return &recordingBus{inner: inner}
}

func (b *recordingBus) Read32(offset uint32) uint32 {
	v := b.inner.Read32(offset)
	b.ops = append(b.ops, busOp{offset: offset, value: v})
	return v
}

func (b *recordingBus) Write32(offset uint32, value uint32) {
	b.inner.Write32(offset, value)
	b.ops = append(b.ops, busOp{write: true, offset: offset, value: value})
}

func (b *recordingBus) reset() {
	b.ops = nil
}

func (b *recordingBus) writes() []busOp {
	var w []busOp
	for _, op := range b.ops {
		if op.write {
			w = append(w, op)
		}
	}
	return w
}

// stageAndAbsorb pushes one buffer id through an availability port into
// its queue, bypassing the driver.
func stageAndAbsorb(dev *virtualdev.Device, port uint32, id uint32) {
	dev.Write32(port, id)
	dev.Absorb()
}

// fillSetupQueue brings the available SETUP queue to capacity with buffer
// ids starting at firstID.
func fillSetupQueue(dev *virtualdev.Device, firstID uint32) {
	for i := 0; i < virtualdev.SetupQueueCap; i++ {
		stageAndAbsorb(dev, usbdev.RegAvailableSetupBuffer, firstID+uint32(i))
	}
}

// fillOutQueue brings the available OUT queue to capacity with buffer ids
// starting at firstID.
func fillOutQueue(dev *virtualdev.Device, firstID uint32) {
	for i := 0; i < virtualdev.OutQueueCap; i++ {
		stageAndAbsorb(dev, usbdev.RegAvailableOutBuffer, firstID+uint32(i))
	}
}

// supplyAll drives SupplyBuffers and queue absorption until the queues
// stop taking buffers, the way a poll loop keeps the controller supplied.
func supplyAll(dev *virtualdev.Device, ctrl *usbdev.Controller, pool *usbdev.Pool) {
	pool.Supply(ctrl)
	for dev.Absorb() {
		pool.Supply(ctrl)
	}
}
