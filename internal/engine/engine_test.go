package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"previewcore/internal/decode"
	"previewcore/internal/gpuring"
	"previewcore/internal/logging"
	"previewcore/internal/timeline"
)

type fakeTexture struct{}

func (fakeTexture) Upload(src []byte, rowBytes, rows int) error { return nil }

type fakeDevice struct{}

func (fakeDevice) CreateSlot(format decode.PixelFormat, width, height int) (gpuring.Slot, error) {
	return gpuring.Slot{Y: fakeTexture{}, UV: fakeTexture{}}, nil
}

type constantDecoder struct{ w, h int }

func (d *constantDecoder) DecodeFrame(targetSec float64) (*decode.VideoFrame, error) {
	yBytes, uvBytes := decode.ExpectedPlaneSizes(decode.FormatNV12, d.w, d.h)
	return &decode.VideoFrame{
		Format:    decode.FormatNV12,
		Width:     d.w,
		Height:    d.h,
		Timestamp: targetSec,
		YPlane:    make([]byte, yBytes),
		UVPlane:   make([]byte, uvBytes),
	}, nil
}
func (d *constantDecoder) GetProperties() decode.DecoderProperties {
	return decode.DecoderProperties{Width: d.w, Height: d.h, FPS: 30, Format: decode.FormatNV12}
}
func (d *constantDecoder) SeekTo(sec float64) error { return nil }
func (d *constantDecoder) SupportsZeroCopy() bool   { return false }
func (d *constantDecoder) Close() error             { return nil }

func testFactory() decode.DecoderFactory {
	return func(path string, cfg decode.DecoderConfig) (decode.Decoder, error) {
		return &constantDecoder{w: 64, h: 64}, nil
	}
}

func testGraph() *timeline.Graph {
	g := timeline.NewGraph("seq", 64, 64, timeline.Fps{Num: 30, Den: 1}, 300)
	g.Tracks = []timeline.Track{{ID: "v0", Kind: timeline.TrackVideo}}
	_ = g.ApplyCommand(timeline.InsertNode{
		TrackID: "v0",
		Node: timeline.TimelineNode{
			ID:   timeline.NewNodeID(),
			Kind: timeline.NodeClip,
			Clip: &timeline.Clip{
				AssetID:       "clip.mp4",
				MediaRange:    timeline.FrameRange{Start: 0, Duration: 300},
				TimelineRange: timeline.FrameRange{Start: 0, Duration: 300},
				PlaybackRate:  1,
			},
		},
	})
	return g
}

func TestEngine_TogglePlayThenTickUploadsAFrame(t *testing.T) {
	g := testGraph()
	e := New(g, testFactory(), fakeDevice{}, logging.Nop())
	defer e.Close()

	e.TogglePlayPause()

	var ok bool
	var err error
	require.Eventually(t, func() bool {
		ok, err = e.Tick()
		return ok && e.ring != nil
	}, time.Second, 2*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	uploads, _ := e.ring.Stats()
	assert.GreaterOrEqual(t, uploads, int64(1))
}

func TestEngine_TickReturnsFalseWithNoActiveSource(t *testing.T) {
	g := timeline.NewGraph("empty", 64, 64, timeline.Fps{Num: 30, Den: 1}, 100)
	g.Tracks = []timeline.Track{{ID: "v0", Kind: timeline.TrackVideo}}
	e := New(g, testFactory(), fakeDevice{}, logging.Nop())
	defer e.Close()

	ok, err := e.Tick()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_RemoveSelectionClearsSelectedNode(t *testing.T) {
	g := testGraph()
	e := New(g, testFactory(), fakeDevice{}, logging.Nop())
	defer e.Close()

	var id string
	for nid := range g.NodesByID {
		id = nid
	}
	e.SelectedNodeID = id

	require.NoError(t, e.RemoveSelection())
	assert.Empty(t, e.SelectedNodeID)
	assert.Nil(t, g.NodesByID[id])
}

func TestEngine_CycleShaderModeNoopBeforeFirstFrame(t *testing.T) {
	g := testGraph()
	e := New(g, testFactory(), fakeDevice{}, logging.Nop())
	defer e.Close()

	assert.NotPanics(t, func() { e.CycleShaderMode() })
}
