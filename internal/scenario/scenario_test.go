package scenario_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marnovandermaas/sunburst/internal/log"
	"github.com/marnovandermaas/sunburst/internal/scenario"
	"github.com/marnovandermaas/sunburst/usbdev"
	"github.com/marnovandermaas/sunburst/virtualdev"
)

// testEnv builds the rig the way the simulate command does: queues
// filled, endpoint 0 and the traffic endpoint configured, device
// connected and powered.
func testEnv(t *testing.T, params scenario.Params) *scenario.Env {
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
	if params.Endpoint != 0 {
		require.NoError(t, ctrl.ConfigureOutEndpoint(params.Endpoint, true, false, false))
		require.NoError(t, ctrl.ConfigureInEndpoint(params.Endpoint, true, false))
	}
	ctrl.Connect()
	dev.Attach()
	return &scenario.Env{
		Dev:    dev,
		Ctrl:   ctrl,
		Pool:   pool,
		Logger: slog.New(slog.DiscardHandler),
		Trace:  log.NewTrace(nil),
		Params: params,
	}
}

func TestRegistry(t *testing.T) {
	assert.NotNil(t, scenario.Get("echo"))
	assert.NotNil(t, scenario.Get("ECHO"), "lookup is case-insensitive")
	assert.Nil(t, scenario.Get("bogus"))

	names := scenario.Names()
	assert.Contains(t, names, "echo")
	assert.Contains(t, names, "soak")
	for _, name := range names {
		assert.NotEmpty(t, scenario.Get(name).Description())
	}
}

// Sweeping every payload size through a full round trip covers the word
// engine's partial-word cases end to end.
func TestEchoScenario(t *testing.T) {
	params := scenario.Params{
		Rounds:   usbdev.MaxPacketLen + 1,
		Endpoint: 1,
		MinSize:  0,
		MaxSize:  usbdev.MaxPacketLen,
	}
	env := testEnv(t, params)
	require.NoError(t, scenario.Get("echo").Run(env))
}

func TestSoakScenario(t *testing.T) {
	params := scenario.Params{
		Rounds:   100,
		Endpoint: 2,
		MinSize:  1,
		MaxSize:  usbdev.MaxPacketLen,
		Seed:     7,
	}
	env := testEnv(t, params)
	require.NoError(t, scenario.Get("soak").Run(env))
}

// The same seed replays the same traffic.
func TestSoakScenarioReproducible(t *testing.T) {
	params := scenario.Params{
		Rounds:   50,
		Endpoint: 1,
		MinSize:  1,
		MaxSize:  32,
		Seed:     42,
	}
	require.NoError(t, scenario.Get("soak").Run(testEnv(t, params)))
	require.NoError(t, scenario.Get("soak").Run(testEnv(t, params)))
}
