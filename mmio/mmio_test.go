package mmio

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestR32Layout(t *testing.T) {
	// Register layout structs rely on R32 occupying exactly one 32-bit word.
	var pair struct {
		a R32
		b R32
	}
	assert.Equal(t, uintptr(4), unsafe.Sizeof(pair.a))
	assert.Equal(t, uintptr(4), unsafe.Offsetof(pair.b))
}

func TestR32GetSet(t *testing.T) {
	var r R32
	assert.Equal(t, uint32(0), r.Get())
	r.Set(0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), r.Get())
}

func TestR32BitOps(t *testing.T) {
	tests := []struct {
		name string
		op   func(r *R32)
		want uint32
	}{
		{"set bits", func(r *R32) { r.SetBits(0x0F00) }, 0x0FF0},
		{"clear bits", func(r *R32) { r.ClearBits(0x00F0) }, 0x0000},
		{"replace field", func(r *R32) { r.ReplaceBits(0x5, 0xF, 8) }, 0x05F0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := R32{v: 0x00F0}
			tt.op(&r)
			assert.Equal(t, tt.want, r.Get())
		})
	}
}

func TestR32HasBits(t *testing.T) {
	r := R32{v: 0b1010}
	assert.True(t, r.HasBits(0b0010))
	assert.True(t, r.HasBits(0b1111))
	assert.False(t, r.HasBits(0b0101))
}
