package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol8 = 1.0 / 255
const tol10 = 2.0 / 1023

func TestNV12ToRGB_BlackLevel(t *testing.T) {
	got := NV12ToRGB(16, 128, 128)
	assert.InDelta(t, 0.0, got.R, tol8)
	assert.InDelta(t, 0.0, got.G, tol8)
	assert.InDelta(t, 0.0, got.B, tol8)
}

func TestNV12ToRGB_WhiteLevel(t *testing.T) {
	got := NV12ToRGB(235, 128, 128)
	assert.InDelta(t, 1.0, got.R, tol8)
	assert.InDelta(t, 1.0, got.G, tol8)
	assert.InDelta(t, 1.0, got.B, tol8)
}

func TestNV12ToRGB_RoughlyPureRed(t *testing.T) {
	got := NV12ToRGB(81, 90, 240)
	assert.InDelta(t, 1.0, got.R, 0.05)
	assert.InDelta(t, 0.0, got.G, 0.15)
	assert.InDelta(t, 0.0, got.B, 0.05)
}

// p010Equivalent left-justifies an 8-bit reference sample into the top
// 10 bits of a 16-bit word's top 10 bits, mirroring how a P010 encoder
// would represent the same level at higher bit depth.
func p010Equivalent(v8 uint8) uint16 {
	v10 := uint16(v8) * 4 // 8-bit * 4 ≈ 10-bit equivalent level
	return v10 << 6
}

func TestP010ToRGB_BlackLevel(t *testing.T) {
	got := P010ToRGB(p010Equivalent(16), p010Equivalent(128), p010Equivalent(128))
	assert.InDelta(t, 0.0, got.R, tol10+tol8)
	assert.InDelta(t, 0.0, got.G, tol10+tol8)
	assert.InDelta(t, 0.0, got.B, tol10+tol8)
}

func TestP010ToRGB_WhiteLevel(t *testing.T) {
	got := P010ToRGB(p010Equivalent(235), p010Equivalent(128), p010Equivalent(128))
	assert.InDelta(t, 1.0, got.R, tol10+tol8)
	assert.InDelta(t, 1.0, got.G, tol10+tol8)
	assert.InDelta(t, 1.0, got.B, tol10+tol8)
}

func TestYUVToRGB_OutputsAlwaysClamped(t *testing.T) {
	for _, s := range [][3]uint8{{0, 0, 0}, {255, 255, 255}, {0, 255, 0}, {255, 0, 255}} {
		got := NV12ToRGB(s[0], s[1], s[2])
		assert.GreaterOrEqual(t, got.R, 0.0)
		assert.LessOrEqual(t, got.R, 1.0)
		assert.GreaterOrEqual(t, got.G, 0.0)
		assert.LessOrEqual(t, got.G, 1.0)
		assert.GreaterOrEqual(t, got.B, 0.0)
		assert.LessOrEqual(t, got.B, 1.0)
	}
}
