package cmd

import (
	"fmt"
	"log/slog"

	"github.com/marnovandermaas/sunburst/internal/log"
	"github.com/marnovandermaas/sunburst/internal/scenario"
	"github.com/marnovandermaas/sunburst/usbdev"
	"github.com/marnovandermaas/sunburst/virtualdev"
)

// Simulate drives a traffic scenario against the simulated controller.
type Simulate struct {
	Scenario string `arg:"" optional:"" default:"echo" help:"Scenario to run"`
	List     bool   `help:"List available scenarios and exit"`
	Rounds   int    `help:"Traffic rounds to drive" default:"256" env:"SUNBURST_SIM_ROUNDS"`
	Endpoint uint8  `help:"Endpoint carrying the bulk traffic" default:"1" env:"SUNBURST_SIM_ENDPOINT"`
	MinSize  int    `help:"Smallest payload in bytes" default:"0"`
	MaxSize  int    `help:"Largest payload in bytes" default:"64"`
	Seed     int64  `help:"Seed for randomized scenarios" default:"1"`
}

// Run is called by Kong when the simulate command is executed.
func (s *Simulate) Run(logger *slog.Logger, trace log.TraceLogger) error {
	if s.List {
		for _, name := range scenario.Names() {
			fmt.Printf("%-12s %s\n", name, scenario.Get(name).Description())
		}
		return nil
	}

	reg := scenario.Get(s.Scenario)
	if reg == nil {
		return fmt.Errorf("unknown scenario '%s' (available: %v)", s.Scenario, scenario.Names())
	}
	if err := s.validate(); err != nil {
		return err
	}

	env, err := s.buildEnv(logger, trace)
	if err != nil {
		return err
	}

	logger.Info("Starting scenario",
		"scenario", s.Scenario,
		"rounds", s.Rounds,
		"endpoint", s.Endpoint,
		"minSize", s.MinSize,
		"maxSize", s.MaxSize)

	if err := reg.Run(env); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Scenario, err)
	}
	logger.Info("Scenario complete", "scenario", s.Scenario)
	return nil
}

func (s *Simulate) validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", s.Rounds)
	}
	if s.Endpoint >= usbdev.MaxEndpoints {
		return fmt.Errorf("endpoint %d out of range, controller has %d endpoints", s.Endpoint, usbdev.MaxEndpoints)
	}
	if s.MinSize < 0 || s.MaxSize > usbdev.MaxPacketLen || s.MinSize > s.MaxSize {
		return fmt.Errorf("payload sizes must satisfy 0 <= min <= max <= %d, got %d..%d",
			usbdev.MaxPacketLen, s.MinSize, s.MaxSize)
	}
	return nil
}

// buildEnv assembles the rig: driver bound to the simulated controller,
// availability queues filled, endpoint 0 and the traffic endpoint
// configured, device connected and powered.
func (s *Simulate) buildEnv(logger *slog.Logger, trace log.TraceLogger) (*scenario.Env, error) {
	dev := virtualdev.New(logger)
	ctrl := usbdev.New(dev)
	pool := usbdev.NewPool()
	pool.SetBitmap(ctrl.Init())
	for dev.Absorb() {
		pool.Supply(ctrl)
	}

	if err := ctrl.ConfigureOutEndpoint(0, true, true, false); err != nil {
		return nil, err
	}
	if err := ctrl.ConfigureInEndpoint(0, true, false); err != nil {
		return nil, err
	}
	if s.Endpoint != 0 {
		if err := ctrl.ConfigureOutEndpoint(s.Endpoint, true, false, false); err != nil {
			return nil, err
		}
		if err := ctrl.ConfigureInEndpoint(s.Endpoint, true, false); err != nil {
			return nil, err
		}
	}
	ctrl.Connect()
	dev.Attach()

	return &scenario.Env{
		Dev:    dev,
		Ctrl:   ctrl,
		Pool:   pool,
		Logger: logger,
		Trace:  trace,
		Params: scenario.Params{
			Rounds:   s.Rounds,
			Endpoint: s.Endpoint,
			MinSize:  s.MinSize,
			MaxSize:  s.MaxSize,
			Seed:     s.Seed,
		},
	}, nil
}
