// Package presenter implements the YUV→RGB conversion core (spec
// component C7) as plain, independently testable Go functions mirroring
// the fragment shader's math exactly, plus the four debug shader modes
// and bind-group-refresh bookkeeping around the plane ring.
package presenter

// Mode selects the fragment shader's rendering path.
type Mode int

const (
	ModeSolid Mode = iota
	ModeShowY
	ModeUVDebug
	ModeConvert
)

// RGB is a linear-space color with components in [0,1].
type RGB struct{ R, G, B float64 }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// biasScale is the uniform block the shader core consumes: (y_bias,
// y_scale, uv_bias, uv_scale).
type biasScale struct {
	yBias, yScale   float64
	uvBias, uvScale float64
}

// nv12Params and p010Params are the BT.709 limited-range constants from
// the conversion uniform block, for 8-bit and 10-bit sources
// respectively.
var (
	nv12Params = biasScale{yBias: 16.0 / 255, yScale: 255.0 / 219, uvBias: 128.0 / 255, uvScale: 255.0 / 224}
	p010Params = biasScale{yBias: 64.0 / 1023, yScale: 1023.0 / 876, uvBias: 512.0 / 1023, uvScale: 1023.0 / 896}
)

// yuvToRGB runs the shader core's BT.709 limited-range conversion given
// normalized y, u, v samples in [0,1] and the format's bias/scale
// parameters.
func yuvToRGB(y, u, v float64, p biasScale) RGB {
	c := y*p.yScale - p.yBias*p.yScale
	if c < 0 {
		c = 0
	}
	d := u*p.uvScale - p.uvBias*p.uvScale
	e := v*p.uvScale - p.uvBias*p.uvScale

	return RGB{
		R: clamp01(c + 1.5748*e),
		G: clamp01(c - 0.1873*d - 0.4681*e),
		B: clamp01(c + 1.8556*d),
	}
}

// NV12ToRGB converts 8-bit NV12 samples (each in [0,255]) to RGB.
func NV12ToRGB(y, u, v uint8) RGB {
	return yuvToRGB(float64(y)/255, float64(u)/255, float64(v)/255, nv12Params)
}

// P010ToRGB converts 10-bit P010 samples. Values are left-justified in
// the top 10 bits of a 16-bit word, as P010 stores them on the wire;
// callers pass the raw 16-bit value and this function recovers the
// 10-bit normalized sample the same way the uint fallback shader path
// does: `(value >> 6) / 1023`.
func P010ToRGB(y16, u16, v16 uint16) RGB {
	y := float64(y16>>6) / 1023
	u := float64(u16>>6) / 1023
	v := float64(v16>>6) / 1023
	return yuvToRGB(y, u, v, p010Params)
}
