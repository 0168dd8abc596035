package scenario

import (
	"errors"
	"log/slog"

	"github.com/marnovandermaas/sunburst/internal/log"
	"github.com/marnovandermaas/sunburst/usbdev"
	"github.com/marnovandermaas/sunburst/virtualdev"
)

// Params carries the knobs a scenario runs with.
type Params struct {
	// Rounds is the number of traffic rounds to drive.
	Rounds int
	// Endpoint carries the bulk traffic. Endpoint 0 stays reserved for
	// control transactions.
	Endpoint uint8
	// MinSize and MaxSize bound the payload sizes in bytes.
	MinSize int
	MaxSize int
	// Seed makes randomized scenarios reproducible.
	Seed int64
}

// Env is the rig a scenario drives: the virtual controller, the driver
// bound to it, and the caller-held buffer pool. The simulate command
// builds it with endpoints configured and the device connected.
type Env struct {
	Dev    *virtualdev.Device
	Ctrl   *usbdev.Controller
	Pool   *usbdev.Pool
	Logger *slog.Logger
	Trace  log.TraceLogger
	Params Params
}

// Supply refills the availability queues from the pool, absorbing entries
// until the queues stop taking buffers.
func (e *Env) Supply() {
	e.Pool.Supply(e.Ctrl)
	for e.Dev.Absorb() {
		e.Pool.Supply(e.Ctrl)
	}
}

// Recycle drains IN completions and returns their buffers to the pool,
// reporting how many were recovered.
func (e *Env) Recycle() int {
	n := 0
	for {
		_, buf, err := e.Ctrl.PacketCollected()
		if err != nil {
			return n
		}
		e.Pool.Release(buf)
		n++
	}
}

// send presents payload on ep and completes the transfer host-side,
// returning what the host collected. The buffer makes a full round trip
// back into the pool.
func (e *Env) send(ep uint8, payload []byte) ([]byte, error) {
	buf, ok := e.Pool.TakeAny()
	if !ok {
		return nil, errors.New("buffer pool exhausted")
	}
	if err := e.Ctrl.SendPacket(buf, ep, payload); err != nil {
		e.Pool.Release(buf)
		return nil, err
	}
	got, err := e.Dev.Collect(ep)
	if err != nil {
		return nil, err
	}
	e.Recycle()
	return got, nil
}
