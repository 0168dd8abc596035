// Package usbdev drives the OpenTitan USB 2.0 device controller found on
// Sunburst platform SoCs.
//
// The controller owns a pool of 32 fixed 64-byte packet buffers and up to
// 12 endpoints in each direction. Software keeps the controller supplied
// with buffers for reception, configures endpoints, and exchanges packets;
// the higher-level USB stack (enumeration, descriptors, class logic) sits
// above this package and calls into it.
//
// # Buffer ownership
//
// Each packet buffer is owned either by software or by the controller,
// never both. Ownership transfers to the controller when a buffer id is
// written to an availability port (SupplyBuffers) or into an endpoint's
// ConfigIn register with Ready set (SendPacket). It transfers back when a
// completion is observed: a receive-queue entry (RecvPacket) or an IN
// completion (PacketCollected). Pool tracks the software-owned side.
//
// # Driving the controller
//
//	ctrl := usbdev.At(base)
//	pool := usbdev.NewPool()
//	pool.SetBitmap(ctrl.Init())
//
//	ctrl.ConfigureOutEndpoint(0, true, true, false)
//	ctrl.ConfigureInEndpoint(0, true, false)
//	ctrl.Connect()
//
//	for {
//		if pkt, err := ctrl.RecvPacket(buf); err == nil {
//			// handle pkt, then recycle its buffer
//			pool.Release(pkt.Buffer)
//		}
//		if _, buf, err := ctrl.PacketCollected(); err == nil {
//			pool.Release(buf)
//		}
//		pool.Supply(ctrl)
//	}
//
// Every operation is non-blocking and returns an explicit result; failures
// are retried on a later poll. The package performs no locking and no
// logging: it is written to be callable from an interrupt handler, with
// callers serializing access per controller instance.
//
// The driver talks to hardware through the word-granular Bus port.
// *Registers implements Bus over a memory-mapped window; the virtualdev
// package implements it in software for tests and development without a
// board.
package usbdev
