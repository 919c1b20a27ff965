package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"previewcore/internal/decode"
	"previewcore/internal/gpuring"
	"previewcore/internal/logging"
)

type nullTexture struct{}

func (nullTexture) Upload(src []byte, rowBytes, rows int) error { return nil }

type nullDevice struct{}

func (nullDevice) CreateSlot(format decode.PixelFormat, width, height int) (gpuring.Slot, error) {
	return gpuring.Slot{Y: nullTexture{}, UV: nullTexture{}}, nil
}

func TestPresenter_CycleModeWrapsAround(t *testing.T) {
	ring, err := gpuring.New(nullDevice{}, decode.FormatNV12, 16, 16, logging.Nop())
	require.NoError(t, err)
	p := New(ring, decode.FormatNV12)

	assert.Equal(t, ModeSolid, p.Mode())
	p.CycleMode()
	assert.Equal(t, ModeShowY, p.Mode())
	p.CycleMode()
	p.CycleMode()
	assert.Equal(t, ModeConvert, p.Mode())
	p.CycleMode()
	assert.Equal(t, ModeSolid, p.Mode())
}

func TestPresenter_RefreshesBindGroupsOnRingRotation(t *testing.T) {
	ring, err := gpuring.New(nullDevice{}, decode.FormatNV12, 16, 16, logging.Nop())
	require.NoError(t, err)
	p := New(ring, decode.FormatNV12)

	assert.True(t, p.NeedsBindGroupRefresh(), "first draw always needs a refresh")
	p.Draw(16, 16)
	assert.False(t, p.NeedsBindGroupRefresh())

	yBytes, uvBytes := decode.ExpectedPlaneSizes(decode.FormatNV12, 16, 16)
	frame := &decode.VideoFrame{Format: decode.FormatNV12, Width: 16, Height: 16, YPlane: make([]byte, yBytes), UVPlane: make([]byte, uvBytes)}
	require.NoError(t, ring.Upload(frame))

	assert.True(t, p.NeedsBindGroupRefresh(), "ring rotation must invalidate bound slot")
}

func TestPresenter_ConversionUniformsMatchFormat(t *testing.T) {
	ring, err := gpuring.New(nullDevice{}, decode.FormatP010, 16, 16, logging.Nop())
	require.NoError(t, err)
	p := New(ring, decode.FormatP010)

	_, conv := p.Draw(16, 16)
	assert.InDelta(t, 64.0/1023, conv.YBias, 1e-9)
	assert.InDelta(t, 1023.0/876, conv.YScale, 1e-9)
}
