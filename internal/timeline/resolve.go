package timeline

// VisualSource is what visualSourceAt resolves a playhead to: either a
// decodable path or a generator's synthetic pseudo-path.
type VisualSource struct {
	Path    string
	IsImage bool
}

// MediaTime is what activeVideoMediaTime/activeAudioMediaTime resolve a
// timeline second to: a source path and the media-local second to
// present from it.
type MediaTime struct {
	Path     string
	MediaSec float64
}

// VisualSourceAt walks the track stack top-down (spec.md §4.1): tracks
// are stored background-first, so later entries in g.Tracks win on
// overlap; the last matching node found while iterating forward is the
// one returned. Audio-kind tracks are skipped. Returns (zero, false) if
// nothing covers playheadFrame.
func (g *Graph) VisualSourceAt(playheadFrame int64) (VisualSource, bool) {
	var best VisualSource
	found := false
	for _, tr := range g.Tracks {
		if tr.Kind.IsAudio() {
			continue
		}
		for _, id := range tr.NodeIDs {
			node, ok := g.NodesByID[id]
			if !ok {
				continue
			}
			rng, ok := node.timelineRange()
			if !ok || !rng.Contains(playheadFrame) {
				continue
			}
			switch node.Kind {
			case NodeClip:
				best = VisualSource{Path: node.Clip.AssetID, IsImage: node.Clip.MediaRange.Duration == 1 && node.Clip.PlaybackRate == 0}
				found = true
			case NodeGenerator:
				best = VisualSource{Path: node.Generator.PseudoPath(), IsImage: true}
				found = true
			default:
				// Transitions/Effects are not presented by the core.
			}
		}
	}
	return best, found
}

// playheadFrame resolves timelineSec to a frame index the way spec.md
// §4.2 requires: floor while playing (no flicker at fractional
// boundaries during motion), round while paused (lands exactly on the
// frame a frozen playhead is showing).
func (g *Graph) playheadFrame(timelineSec float64, playing bool) int64 {
	if playing {
		return g.Fps.SecondsToFramesFloor(timelineSec)
	}
	return g.Fps.SecondsToFramesRound(timelineSec)
}

// ActiveVideoMediaTime walks the same stack as VisualSourceAt and, for
// the winning clip, computes the source media second per spec.md §4.1:
// mediaSec = frames_to_seconds(mediaRange.start) + localSec*playbackRate.
// Generators have no media time and are skipped here (callers use
// VisualSourceAt to render them). playing selects the floor/round
// playhead resolution per spec.md §4.2.
func (g *Graph) ActiveVideoMediaTime(timelineSec float64, playing bool) (MediaTime, bool) {
	playhead := g.playheadFrame(timelineSec, playing)
	var best MediaTime
	found := false
	for _, tr := range g.Tracks {
		if tr.Kind.IsAudio() {
			continue
		}
		for _, id := range tr.NodeIDs {
			node, ok := g.NodesByID[id]
			if !ok || node.Kind != NodeClip {
				continue
			}
			c := node.Clip
			if !c.TimelineRange.Contains(playhead) {
				continue
			}
			localSec := timelineSec - g.Fps.FramesToSeconds(c.TimelineRange.Start)
			mediaSec := g.Fps.FramesToSeconds(c.MediaRange.Start) + localSec*c.PlaybackRate
			best = MediaTime{Path: c.AssetID, MediaSec: mediaSec}
			found = true
		}
	}
	return best, found
}

// ActiveAudioMediaTime restricts the walk to Audio-kind tracks; if none
// cover timelineSec, it falls back to the winning video clip's own audio
// (same source, same media time), per spec.md §4.1.
func (g *Graph) ActiveAudioMediaTime(timelineSec float64, playing bool) (MediaTime, bool) {
	playhead := g.playheadFrame(timelineSec, playing)
	var best MediaTime
	found := false
	for _, tr := range g.Tracks {
		if !tr.Kind.IsAudio() {
			continue
		}
		for _, id := range tr.NodeIDs {
			node, ok := g.NodesByID[id]
			if !ok || node.Kind != NodeClip {
				continue
			}
			c := node.Clip
			if !c.TimelineRange.Contains(playhead) {
				continue
			}
			localSec := timelineSec - g.Fps.FramesToSeconds(c.TimelineRange.Start)
			mediaSec := g.Fps.FramesToSeconds(c.MediaRange.Start) + localSec*c.PlaybackRate
			best = MediaTime{Path: c.AssetID, MediaSec: mediaSec}
			found = true
		}
	}
	if found {
		return best, true
	}
	return g.ActiveVideoMediaTime(timelineSec, playing)
}
