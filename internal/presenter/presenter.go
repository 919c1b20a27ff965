package presenter

import (
	"previewcore/internal/decode"
	"previewcore/internal/gpuring"
)

// PreviewUniforms is bind group 0's non-sampler payload: output
// dimensions and the active shader mode.
type PreviewUniforms struct {
	Width, Height int
	Mode          Mode
}

// ConversionUniforms is bind group 1: the BT.709 bias/scale block for
// the frame's pixel format.
type ConversionUniforms struct {
	YBias, YScale   float64
	UVBias, UVScale float64
}

func conversionUniformsFor(format decode.PixelFormat) ConversionUniforms {
	p := nv12Params
	if format == decode.FormatP010 {
		p = p010Params
	}
	return ConversionUniforms{YBias: p.yBias, YScale: p.yScale, UVBias: p.uvBias, UVScale: p.uvScale}
}

// Presenter draws the ring's present slot through the YUV→RGB pipeline,
// tracking which ring slot its bind groups were last built against so
// it can refresh them whenever the ring rotates — stale texture views
// are a bug source the design calls out explicitly.
type Presenter struct {
	ring   *gpuring.Ring
	mode   Mode
	format decode.PixelFormat

	boundSlot     int
	groupsCurrent bool
}

// New wraps ring for presentation. format is the source's pixel format,
// used to pick the BT.709 conversion constants.
func New(ring *gpuring.Ring, format decode.PixelFormat) *Presenter {
	return &Presenter{ring: ring, format: format, boundSlot: -1}
}

// SetMode changes the active shader debug mode (keyboard 1/2/3/4).
func (p *Presenter) SetMode(m Mode) { p.mode = m }

// Mode returns the active shader debug mode.
func (p *Presenter) Mode() Mode { return p.mode }

// NeedsBindGroupRefresh reports whether no Draw has built the bind
// groups yet, or the ring has an uploaded frame the presenter hasn't yet
// acquired; either way both bind groups must be rebuilt before the next
// draw call.
func (p *Presenter) NeedsBindGroupRefresh() bool {
	return !p.groupsCurrent || p.ring.HasReady()
}

// Draw acquires the ring's next ready frame if one is waiting, refreshes
// bind groups accordingly, then returns the uniform payloads the render
// pipeline should bind for this frame. The actual GPU draw call
// submission belongs to the windowing backend; this function owns only
// the conversion-relevant state.
func (p *Presenter) Draw(width, height int) (PreviewUniforms, ConversionUniforms) {
	if p.NeedsBindGroupRefresh() {
		if _, advanced := p.ring.Acquire(); advanced {
			p.boundSlot = p.ring.PresentIndex()
		}
		p.groupsCurrent = true
	}
	return PreviewUniforms{Width: width, Height: height, Mode: p.mode},
		conversionUniformsFor(p.format)
}

// CycleMode advances through Solid -> ShowY -> UVDebug -> Convert and
// wraps, matching the keyboard surface's 1/2/3/4 shader-mode cycling.
func (p *Presenter) CycleMode() {
	p.mode = (p.mode + 1) % 4
}
