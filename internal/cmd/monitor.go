package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/marnovandermaas/sunburst/internal/log"
)

// monitorEscape detaches the console, the classic Ctrl-].
const monitorEscape = 0x1D

// Monitor attaches an interactive console to a board serial port.
type Monitor struct {
	Port string `arg:"" optional:"" help:"Serial port device (lists ports when omitted)"`
	Baud int    `help:"Baud rate" default:"115200" env:"SUNBURST_MONITOR_BAUD"`
	Hex  bool   `help:"Show traffic as hex packet traces instead of raw output"`
}

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger, trace log.TraceLogger) error {
	if m.Port == "" {
		ports, err := serial.GetPortsList()
		if err != nil {
			return fmt.Errorf("list serial ports: %w", err)
		}
		if len(ports) == 0 {
			logger.Warn("No serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	port, err := serial.Open(m.Port, &serial.Mode{BaudRate: m.Baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", m.Port, err)
	}
	defer port.Close()

	if m.Hex {
		trace = log.NewTrace(os.Stdout)
	}

	logger.Info("Attached to serial console", "port", m.Port, "baud", m.Baud)
	logger.Info("Detach with Ctrl-]")

	stdin := int(os.Stdin.Fd())
	if term.IsTerminal(stdin) {
		oldState, err := term.MakeRaw(stdin)
		if err != nil {
			return fmt.Errorf("set raw terminal: %w", err)
		}
		defer func() { _ = term.Restore(stdin, oldState) }()
	}

	portErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				trace.Packet(true, buf[:n])
				if !m.Hex {
					_, _ = os.Stdout.Write(buf[:n])
				}
			}
			if err != nil {
				portErr <- err
				return
			}
		}
	}()

	stdinErr := make(chan error, 1)
	go func() {
		b := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(b)
			if err != nil {
				stdinErr <- err
				return
			}
			if n == 0 {
				continue
			}
			if b[0] == monitorEscape {
				stdinErr <- nil
				return
			}
			trace.Packet(false, b[:n])
			if _, err := port.Write(b[:n]); err != nil {
				stdinErr <- err
				return
			}
		}
	}()

	select {
	case err := <-portErr:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("serial read: %w", err)
	case err := <-stdinErr:
		return err
	}
}
