package audioengine

import "sync/atomic"

// PCMBuffer is a shared, reference-counted interleaved float PCM block
// with a known channel count and sample rate, matching spec.md's
// ActiveAudioClip.buffer contract. Multiple ActiveAudioClip entries may
// point at the same underlying decode (e.g. a clip split into two
// timeline placements) without copying samples.
type PCMBuffer struct {
	Channels   int
	SampleRate int
	Samples    []float32 // interleaved, length a multiple of Channels

	refs int32
}

// NewPCMBuffer wraps samples with an initial reference count of 1.
func NewPCMBuffer(channels, sampleRate int, samples []float32) *PCMBuffer {
	return &PCMBuffer{Channels: channels, SampleRate: sampleRate, Samples: samples, refs: 1}
}

// Retain increments the reference count. Call once per additional
// ActiveAudioClip that shares this buffer.
func (b *PCMBuffer) Retain() { atomic.AddInt32(&b.refs, 1) }

// Release decrements the reference count and reports whether it reached
// zero, at which point the caller may discard Samples.
func (b *PCMBuffer) Release() bool {
	return atomic.AddInt32(&b.refs, -1) == 0
}

// FrameCount returns the number of interleaved sample frames (samples
// per channel) the buffer holds.
func (b *PCMBuffer) FrameCount() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// at returns the sample for the given frame index and channel, or 0 if
// out of range (silence past the buffer's edges).
func (b *PCMBuffer) at(frame, channel int) float32 {
	if frame < 0 || frame >= b.FrameCount() {
		return 0
	}
	return b.Samples[frame*b.Channels+channel]
}
