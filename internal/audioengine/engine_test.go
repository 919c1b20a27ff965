package audioengine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeFrame_I16RoundTripsFullScale(t *testing.T) {
	dst := make([]byte, 2)
	n := encodeFrame(dst, []float64{1.0}, FormatI16)
	assert.Equal(t, 2, n)
	v := int16(uint16(dst[0]) | uint16(dst[1])<<8)
	assert.InDelta(t, 32767, v, 1)
}

func TestEncodeFrame_I16Silence(t *testing.T) {
	dst := make([]byte, 2)
	encodeFrame(dst, []float64{0}, FormatI16)
	assert.Equal(t, byte(0), dst[0])
	assert.Equal(t, byte(0), dst[1])
}

func TestEncodeFrame_F32PreservesValue(t *testing.T) {
	dst := make([]byte, 4)
	encodeFrame(dst, []float64{-0.5}, FormatF32)
	bits := uint32(dst[0]) | uint32(dst[1])<<8 | uint32(dst[2])<<16 | uint32(dst[3])<<24
	f := math.Float32frombits(bits)
	assert.InDelta(t, -0.5, f, 1e-6)
}
