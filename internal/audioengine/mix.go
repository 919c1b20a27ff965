package audioengine

// ActiveAudioClip is one clip currently reachable from the playhead,
// pre-sorted by StartTimelineSec by the caller (spec.md §4.8).
type ActiveAudioClip struct {
	StartTimelineSec float64
	StartMediaSec    float64
	DurationSec      float64
	Buffer           *PCMBuffer
}

// covers reports whether timelineSec falls within this clip's active
// window.
func (c ActiveAudioClip) covers(timelineSec float64) bool {
	return timelineSec >= c.StartTimelineSec && timelineSec < c.StartTimelineSec+c.DurationSec
}

// sampleLinear returns buf's linearly interpolated sample at mediaSec
// for channel.
func sampleLinear(buf *PCMBuffer, mediaSec float64, channel int) float64 {
	pos := mediaSec * float64(buf.SampleRate)
	i0 := int(pos)
	frac := pos - float64(i0)
	s0 := float64(buf.at(i0, channel))
	s1 := float64(buf.at(i0+1, channel))
	return s0 + (s1-s0)*frac
}

// clamp limits v to [-1, 1].
func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Mix computes the clamped sum of every active clip's contribution at
// timelineSec for channel, per spec.md §4.8's mixing contract.
func Mix(clips []ActiveAudioClip, timelineSec float64, channel int) float64 {
	sum := 0.0
	for _, c := range clips {
		if !c.covers(timelineSec) {
			continue
		}
		mediaSec := c.StartMediaSec + (timelineSec - c.StartTimelineSec)
		if channel >= c.Buffer.Channels {
			continue
		}
		sum += sampleLinear(c.Buffer, mediaSec, channel)
	}
	return clamp(sum)
}

// MixFrame fills out (length == channels) with the mixed sample for
// every output channel at timelineSec.
func MixFrame(clips []ActiveAudioClip, timelineSec float64, out []float64) {
	for ch := range out {
		out[ch] = Mix(clips, timelineSec, ch)
	}
}
