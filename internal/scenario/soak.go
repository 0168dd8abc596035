package scenario

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/marnovandermaas/sunburst/usbdev"
	"github.com/marnovandermaas/sunburst/virtualdev"
)

func init() {
	Register("soak", soak{})
}

// soak mixes randomized OUT traffic with occasional SETUP transactions
// and zero-length status replies, recycling buffers continuously. The
// seed makes a run reproducible.
type soak struct{}

func (soak) Description() string {
	return "randomized mixed traffic with control transactions and buffer churn"
}

func (soak) Run(env *Env) error {
	rng := rand.New(rand.NewSource(env.Params.Seed))
	span := env.Params.MaxSize - env.Params.MinSize + 1
	data := make([]byte, usbdev.MaxPacketLen)
	var delivered, echoed, setups, nakked int

	for round := 0; round < env.Params.Rounds; round++ {
		var err error
		if rng.Intn(8) == 0 {
			// SETUP packets are 8 bytes on the wire.
			setup := make([]byte, 8)
			rng.Read(setup)
			err = env.Dev.Deliver(0, true, setup)
		} else {
			payload := make([]byte, env.Params.MinSize+rng.Intn(span))
			rng.Read(payload)
			err = env.Dev.Deliver(env.Params.Endpoint, false, payload)
		}
		switch {
		case errors.Is(err, virtualdev.ErrNak):
			// Starved queue; the resupply below recovers it.
			nakked++
		case err != nil:
			return fmt.Errorf("round %d: deliver: %w", round, err)
		default:
			delivered++
		}

		for {
			pkt, err := env.Ctrl.RecvPacket(data)
			if errors.Is(err, usbdev.ErrReceiveEmpty) {
				break
			}
			if err != nil {
				return fmt.Errorf("round %d: receive: %w", round, err)
			}
			env.Trace.Packet(false, data[:pkt.Size])
			env.Pool.Release(pkt.Buffer)

			if pkt.Setup {
				// Acknowledge the control transfer with a zero-length
				// status packet.
				if _, err := env.send(0, nil); err != nil {
					return fmt.Errorf("round %d: status stage: %w", round, err)
				}
				setups++
				continue
			}
			got, err := env.send(env.Params.Endpoint, data[:pkt.Size])
			if err != nil {
				return fmt.Errorf("round %d: echo: %w", round, err)
			}
			env.Trace.Packet(true, got)
			echoed++
		}

		env.Supply()
		if round%16 == 0 {
			env.Dev.FrameTick()
		}
	}

	env.Logger.Info("soak scenario complete",
		"rounds", env.Params.Rounds,
		"delivered", delivered,
		"echoed", echoed,
		"setups", setups,
		"nakked", nakked)
	return nil
}
