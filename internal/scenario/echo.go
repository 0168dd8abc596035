package scenario

import (
	"bytes"
	"fmt"

	"github.com/marnovandermaas/sunburst/usbdev"
)

func init() {
	Register("echo", echo{})
}

// echo delivers one OUT packet per round and expects the device side to
// send the identical payload back. Payload sizes sweep the configured
// range, covering partial trailing words and zero-copy edge sizes.
type echo struct{}

func (echo) Description() string {
	return "loop every OUT packet back on the IN side, verifying payloads"
}

func (echo) Run(env *Env) error {
	span := env.Params.MaxSize - env.Params.MinSize + 1
	data := make([]byte, usbdev.MaxPacketLen)
	total := 0

	for round := 0; round < env.Params.Rounds; round++ {
		size := env.Params.MinSize + round%span
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(round + i)
		}

		if err := env.Dev.Deliver(env.Params.Endpoint, false, payload); err != nil {
			return fmt.Errorf("round %d: deliver: %w", round, err)
		}
		pkt, err := env.Ctrl.RecvPacket(data)
		if err != nil {
			return fmt.Errorf("round %d: receive: %w", round, err)
		}
		env.Trace.Packet(false, data[:pkt.Size])
		env.Pool.Release(pkt.Buffer)

		got, err := env.send(env.Params.Endpoint, data[:pkt.Size])
		if err != nil {
			return fmt.Errorf("round %d: echo: %w", round, err)
		}
		env.Trace.Packet(true, got)
		if !bytes.Equal(got, payload) {
			return fmt.Errorf("round %d: echoed payload differs", round)
		}

		env.Supply()
		env.Dev.FrameTick()
		total += size
	}

	env.Logger.Info("echo scenario complete", "rounds", env.Params.Rounds, "bytes", total)
	return nil
}
