package audioengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sineBuffer(channels, sampleRate, frames int, amplitude float32) *PCMBuffer {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = amplitude
	}
	return NewPCMBuffer(channels, sampleRate, samples)
}

func TestMix_SingleClipReturnsItsOwnSample(t *testing.T) {
	buf := sineBuffer(1, 48000, 48000, 0.5)
	clips := []ActiveAudioClip{
		{StartTimelineSec: 0, StartMediaSec: 0, DurationSec: 1, Buffer: buf},
	}
	got := Mix(clips, 0.5, 0)
	assert.InDelta(t, 0.5, got, 1e-6)
}

func TestMix_OutsideClipRangeIsSilent(t *testing.T) {
	buf := sineBuffer(1, 48000, 48000, 1.0)
	clips := []ActiveAudioClip{
		{StartTimelineSec: 0, StartMediaSec: 0, DurationSec: 1, Buffer: buf},
	}
	assert.Equal(t, 0.0, Mix(clips, 1.5, 0))
}

func TestMix_OverlappingClipsSumAndClamp(t *testing.T) {
	a := sineBuffer(1, 48000, 48000, 0.8)
	b := sineBuffer(1, 48000, 48000, 0.8)
	clips := []ActiveAudioClip{
		{StartTimelineSec: 0, StartMediaSec: 0, DurationSec: 1, Buffer: a},
		{StartTimelineSec: 0, StartMediaSec: 0, DurationSec: 1, Buffer: b},
	}
	got := Mix(clips, 0.25, 0)
	assert.Equal(t, 1.0, got) // 1.6 clamped to 1.0
}

func TestMix_MediaOffsetAppliesStartMediaSec(t *testing.T) {
	frames := 48000
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = float32(i) / float32(frames)
	}
	buf := NewPCMBuffer(1, 48000, samples)

	clips := []ActiveAudioClip{
		{StartTimelineSec: 2, StartMediaSec: 0.5, DurationSec: 1, Buffer: buf},
	}
	// timelineSec=2 -> mediaSec=0.5 -> sample index 24000 -> value 0.5
	got := Mix(clips, 2.0, 0)
	assert.InDelta(t, 0.5, got, 1e-3)
}

func TestMix_LinearInterpolationBetweenSamples(t *testing.T) {
	buf := NewPCMBuffer(1, 2, []float32{0, 1}) // 2 Hz: sample 0 at t=0, sample 1 at t=0.5
	clips := []ActiveAudioClip{
		{StartTimelineSec: 0, StartMediaSec: 0, DurationSec: 1, Buffer: buf},
	}
	got := Mix(clips, 0.25, 0) // halfway between sample 0 and 1
	assert.InDelta(t, 0.5, got, 1e-6)
}

func TestMixFrame_FillsEveryChannel(t *testing.T) {
	buf := sineBuffer(2, 48000, 48000, 0.3)
	clips := []ActiveAudioClip{
		{StartTimelineSec: 0, StartMediaSec: 0, DurationSec: 1, Buffer: buf},
	}
	out := make([]float64, 2)
	MixFrame(clips, 0.1, out)
	assert.InDelta(t, 0.3, out[0], 1e-6)
	assert.InDelta(t, 0.3, out[1], 1e-6)
}

func TestPCMBuffer_RefCounting(t *testing.T) {
	buf := NewPCMBuffer(1, 48000, []float32{0, 1, 2})
	buf.Retain()
	assert.False(t, buf.Release())
	assert.True(t, buf.Release())
}
