// Package config defines the command line surface of the sunburst tool.
package config

import "github.com/marnovandermaas/sunburst/internal/cmd"

// CLI is the root kong command tree. Values come from flags, SUNBURST_*
// environment variables or a configuration file, in that priority order.
type CLI struct {
	Log struct {
		Level     string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"SUNBURST_LOG_LEVEL"`
		File      string `help:"Also write logs to this file" env:"SUNBURST_LOG_FILE"`
		TraceFile string `help:"Write packet traces to this file" env:"SUNBURST_LOG_TRACE_FILE"`
	} `embed:"" prefix:"log."`

	Config string `help:"Configuration file path" env:"SUNBURST_CONFIG"`

	Simulate  cmd.Simulate      `cmd:"" help:"Run a traffic scenario against the simulated USB device controller"`
	Monitor   cmd.Monitor       `cmd:"" help:"Attach to a board serial console"`
	Regs      cmd.RegsCommand   `cmd:"" help:"Register map utilities"`
	Image     cmd.ImageCommand  `cmd:"" help:"Firmware image utilities"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file utilities"`
}
