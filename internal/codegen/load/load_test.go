package load

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marnovandermaas/sunburst/internal/codegen/meta"
)

func TestLoadFile(t *testing.T) {
	p, err := File(filepath.Join("testdata", "uart.yaml"))
	require.NoError(t, err)

	expected := &meta.Peripheral{
		Name:        "uart",
		Description: "serial UART",
		Registers: []meta.Register{
			{Name: "interrupt_state", Description: "pending interrupts (W1C)", Offset: 0x00, Count: 1, Fields: []meta.Field{
				{Name: "tx_watermark", High: 0, Low: 0},
				{Name: "rx_watermark", High: 1, Low: 1},
			}},
			{Name: "control", Description: "transmitter, receiver and baud rate control (RW)", Offset: 0x10, Count: 1, Fields: []meta.Field{
				{Name: "tx_enable", Description: "Enables the transmitter.", High: 0, Low: 0},
				{Name: "rx_enable", High: 1, Low: 1},
				{Name: "nco", High: 31, Low: 16},
			}},
			{Name: "fifo_status", Offset: 0x14, Count: 1, Fields: []meta.Field{
				{Name: "tx_depth", High: 7, Low: 0},
				{Name: "rx_depth", High: 23, Low: 16},
			}},
			{Name: "read_data", Offset: 0x1C, Count: 1},
			{Name: "write_data", Offset: 0x20, Count: 1},
			{Name: "scratch", Offset: 0x24, Count: 4},
		},
	}
	assert.Equal(t, expected, p)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := File(filepath.Join("testdata", "absent.yaml"))
	assert.ErrorContains(t, err, "read description")
}

func TestLoadNormalizesCount(t *testing.T) {
	p, err := Bytes([]byte("name: x\nregisters:\n  - name: r\n    offset: 0\n    count: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p.Registers[0].Count)
	assert.Equal(t, uint32(4), p.Registers[0].End())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown key",
			yaml:    "name: x\nregisters:\n  - name: r\n    offst: 4\n",
			wantErr: "offst",
		},
		{
			name:    "missing peripheral name",
			yaml:    "registers:\n  - name: r\n    offset: 0\n",
			wantErr: "peripheral: missing name",
		},
		{
			name:    "peripheral name not snake case",
			yaml:    "name: UART\nregisters:\n  - name: r\n    offset: 0\n",
			wantErr: "not lower snake_case",
		},
		{
			name:    "no registers",
			yaml:    "name: x\n",
			wantErr: "no registers",
		},
		{
			name:    "duplicate register",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n  - name: r\n    offset: 4\n",
			wantErr: "register r: duplicate name",
		},
		{
			name:    "misaligned offset",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 2\n",
			wantErr: "not word aligned",
		},
		{
			name:    "overlapping registers",
			yaml:    "name: x\nregisters:\n  - name: a\n    offset: 0\n    count: 2\n  - name: b\n    offset: 4\n",
			wantErr: "register b: offset 0x4 overlaps a",
		},
		{
			name:    "descending offsets",
			yaml:    "name: x\nregisters:\n  - name: a\n    offset: 8\n  - name: b\n    offset: 0\n",
			wantErr: "overlaps a",
		},
		{
			name:    "missing field bits",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: f\n",
			wantErr: "field f: missing bits",
		},
		{
			name:    "bit outside register",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: f\n        bits: \"32\"\n",
			wantErr: "outside a 32-bit register",
		},
		{
			name:    "reversed range",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: f\n        bits: \"0:7\"\n",
			wantErr: "reversed",
		},
		{
			name:    "malformed range",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: f\n        bits: \"7-0\"\n",
			wantErr: "bad bit range",
		},
		{
			name:    "overlapping fields",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: a\n        bits: \"3:0\"\n      - name: b\n        bits: \"2\"\n",
			wantErr: "field b: bits 2 overlap an earlier field",
		},
		{
			name:    "duplicate fields",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: f\n        bits: \"0\"\n      - name: f\n        bits: \"1\"\n",
			wantErr: "field f: duplicate name",
		},
		{
			name:    "field name not snake case",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: Field\n        bits: \"0\"\n",
			wantErr: "not lower snake_case",
		},
		{
			name:    "bits not a scalar",
			yaml:    "name: x\nregisters:\n  - name: r\n    offset: 0\n    fields:\n      - name: f\n        bits: [1, 2]\n",
			wantErr: "bits must be a scalar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseBits(t *testing.T) {
	high, low, err := parseBits(" 22 : 16 ")
	require.NoError(t, err)
	assert.Equal(t, uint32(22), high)
	assert.Equal(t, uint32(16), low)

	high, low, err = parseBits("5")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), high)
	assert.Equal(t, uint32(5), low)
}
