package pwm_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marnovandermaas/sunburst/pwm"
)

func TestOutputLayout(t *testing.T) {
	var o pwm.Output
	require.Equal(t, uintptr(8), unsafe.Sizeof(o))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(o.DutyCycle))
	assert.Equal(t, uintptr(4), unsafe.Offsetof(o.Period))
}

func TestSetOutput(t *testing.T) {
	bank := make([]pwm.Output, pwm.GeneralOutputs)
	p := pwm.New(bank)

	require.NoError(t, p.SetOutput(0, 200, 31))
	assert.Equal(t, uint32(200), bank[0].Period.Get())
	assert.Equal(t, uint32(31), bank[0].DutyCycle.Get())

	require.NoError(t, p.SetOutput(5, 255, 255))
	assert.Equal(t, uint32(255), bank[5].Period.Get())
	assert.Equal(t, uint32(255), bank[5].DutyCycle.Get())

	// Outputs program independently.
	assert.Zero(t, bank[1].Period.Get())
}

func TestSetOutputRange(t *testing.T) {
	bank := make([]pwm.Output, pwm.GeneralOutputs)
	p := pwm.New(bank)

	assert.ErrorIs(t, p.SetOutput(pwm.GeneralOutputs, 10, 5), pwm.ErrBadOutput)
	assert.ErrorIs(t, p.SetOutput(0xFFFF, 10, 5), pwm.ErrBadOutput)
	for i := range bank {
		assert.Zero(t, bank[i].Period.Get())
		assert.Zero(t, bank[i].DutyCycle.Get())
	}
}

func TestLCDBankHasOneOutput(t *testing.T) {
	bank := make([]pwm.Output, pwm.LCDOutputs)
	p := pwm.New(bank)

	require.NoError(t, p.SetOutput(0, 100, 50))
	assert.ErrorIs(t, p.SetOutput(1, 100, 50), pwm.ErrBadOutput)
}
