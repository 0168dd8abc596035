package gogen

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marnovandermaas/sunburst/internal/codegen/meta"
)

func testPeripheral() *meta.Peripheral {
	return &meta.Peripheral{
		Name:        "uart",
		Description: "serial UART",
		Registers: []meta.Register{
			{Name: "interrupt_state", Description: "pending interrupts (W1C)", Offset: 0x00, Count: 1, Fields: []meta.Field{
				{Name: "tx_watermark", High: 0, Low: 0},
				{Name: "rx_watermark", High: 1, Low: 1},
			}},
			{Name: "control", Offset: 0x10, Count: 1, Fields: []meta.Field{
				{Name: "tx_enable", Description: "Enables the transmitter.", High: 0, Low: 0},
				{Name: "rx_enable", High: 1, Low: 1},
				{Name: "nco", High: 31, Low: 16},
			}},
			{Name: "read_data", Offset: 0x1C, Count: 1},
			{Name: "scratch", Offset: 0x24, Count: 4},
		},
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	err := Generate(slog.New(slog.DiscardHandler), dir, testPeripheral())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "uart", "uart.go"))
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "// Code generated by sunburst regs generate. DO NOT EDIT.")
	assert.Contains(t, content, "// Package uart gives register-level access to the serial UART block.")
	assert.Contains(t, content, "package uart")
	assert.Contains(t, content, `import "github.com/marnovandermaas/sunburst/mmio"`)

	assert.Regexp(t, `(?m)^\tRegInterruptState = 0x00 // pending interrupts \(W1C\)$`, content)
	assert.Regexp(t, `(?m)^\tRegScratch\s+= 0x24$`, content)

	assert.Contains(t, content, "// InterruptState register fields (offset 0x0).")
	assert.Regexp(t, `(?m)^\tInterruptStateTxWatermark uint32 = 1 << 0$`, content)
	assert.Regexp(t, `(?m)^\t// Enables the transmitter\.$`, content)
	assert.Regexp(t, `(?m)^\tControlNco\s+uint32 = 0xFFFF << 16$`, content)
	assert.Regexp(t, `(?m)^\tControlNcoShift = 16$`, content)

	assert.Regexp(t, `(?m)^\t_\s+\[3\]mmio\.R32\s+// 0x04$`, content)
	assert.Regexp(t, `(?m)^\t_\s+mmio\.R32\s+// 0x20$`, content)
	assert.Regexp(t, `(?m)^\tScratch\s+\[4\]mmio\.R32\s+// 0x24$`, content)

	// Keep the output gofmt clean: no trailing whitespace anywhere.
	assert.NotRegexp(t, `(?m)[ \t]+$`, content)
}

// Alignment follows gofmt: a field doc comment breaks the run, each run
// pads its names to its own width, and shift constants form their own
// group after a blank line.
func TestFieldRowsAlignmentRuns(t *testing.T) {
	reg := meta.Register{Name: "control", Offset: 0x10, Count: 1, Fields: []meta.Field{
		{Name: "tx_enable", Description: "Enables the transmitter.", High: 0, Low: 0},
		{Name: "rx_enable", High: 1, Low: 1},
		{Name: "nco", High: 31, Low: 16},
	}}

	assert.Equal(t, []string{
		"// Enables the transmitter.",
		"ControlTxEnable uint32 = 1 << 0",
		"ControlRxEnable uint32 = 1 << 1",
		"ControlNco      uint32 = 0xFFFF << 16",
		"",
		"ControlNcoShift = 16",
	}, fieldRows(reg))
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name  string
		field meta.Field
		want  string
	}{
		{"single low bit", meta.Field{High: 0, Low: 0}, "1 << 0"},
		{"single high bit", meta.Field{High: 31, Low: 31}, "1 << 31"},
		{"byte at zero", meta.Field{High: 7, Low: 0}, "0xFF << 0"},
		{"placed field", meta.Field{High: 22, Low: 16}, "0x7F << 16"},
		{"full word", meta.Field{High: 31, Low: 0}, "0xFFFFFFFF << 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskValue(tt.field))
		})
	}
}

func TestStructRowsNoGaps(t *testing.T) {
	p := &meta.Peripheral{
		Name: "pwm",
		Registers: []meta.Register{
			{Name: "duty_cycle", Offset: 0x0, Count: 1},
			{Name: "period", Offset: 0x4, Count: 1},
		},
	}
	assert.Equal(t, []string{
		"DutyCycle mmio.R32 // 0x00",
		"Period    mmio.R32 // 0x04",
	}, structRows(p))
}

// A first register above the base still pads from offset zero, so the
// struct maps at the peripheral base address.
func TestStructRowsLeadingGap(t *testing.T) {
	p := &meta.Peripheral{
		Name: "rv_timer",
		Registers: []meta.Register{
			{Name: "control", Offset: 0x10, Count: 1},
		},
	}
	assert.Equal(t, []string{
		"_       [4]mmio.R32 // 0x00",
		"Control mmio.R32    // 0x10",
	}, structRows(p))
}
