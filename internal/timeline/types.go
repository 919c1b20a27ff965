// Package timeline holds the immutable-per-frame snapshot of tracks,
// clips and generators (spec component C1), and the pure functions that
// resolve a playhead to an active source.
//
// Node ownership is arena-style: the Graph is the single owner of every TimelineNode, keyed by
// id; Tracks only ever hold id references, never node values, so moving
// a node between tracks is a pointer-free slice edit plus an owner-map
// update.
package timeline

import "fmt"

// Fps is a rational frame rate. Invariant: Num >= 1, Den >= 1.
type Fps struct {
	Num uint32
	Den uint32
}

// FramesToSeconds converts a frame count to seconds: seconds = frames*den/num.
func (f Fps) FramesToSeconds(frames int64) float64 {
	return float64(frames) * float64(f.Den) / float64(f.Num)
}

// SecondsToFramesFloor converts seconds to a frame index, rounding down.
// Used while playing (spec.md §4.2: floor prevents flicker at fractional
// boundaries during motion).
func (f Fps) SecondsToFramesFloor(sec float64) int64 {
	return int64(sec * float64(f.Num) / float64(f.Den))
}

// SecondsToFramesRound converts seconds to a frame index, rounding to
// nearest. Used while paused.
func (f Fps) SecondsToFramesRound(sec float64) int64 {
	frames := sec * float64(f.Num) / float64(f.Den)
	if frames >= 0 {
		return int64(frames + 0.5)
	}
	return int64(frames - 0.5)
}

// FrameRange is a half-open [Start, Start+Duration) span in frames.
// Invariant: Duration >= 1.
type FrameRange struct {
	Start    int64
	Duration int64
}

// End returns the first frame not covered by the range.
func (r FrameRange) End() int64 { return r.Start + r.Duration }

// Contains reports whether frame t falls in [Start, End). The end bound
// is exclusive: a playhead sitting exactly on End is not covered.
func (r FrameRange) Contains(t int64) bool {
	return t >= r.Start && t < r.End()
}

func (r FrameRange) validate() error {
	if r.Duration < 1 {
		return fmt.Errorf("%w: frame range duration must be >= 1, got %d", errInvalidOp, r.Duration)
	}
	return nil
}

// Clip references a decoded media source placed on the timeline.
type Clip struct {
	AssetID       string
	MediaRange    FrameRange
	TimelineRange FrameRange
	PlaybackRate  float64 // >= 0.01
	Reverse       bool
}

// MediaFrameAt returns the source media frame that corresponds to
// timeline frame t, per spec.md §3:
// mediaStart + (t - timelineStart) * playbackRate.
func (c Clip) MediaFrameAt(t int64) int64 {
	local := float64(t-c.TimelineRange.Start) * c.PlaybackRate
	return c.MediaRange.Start + int64(local)
}

func (c Clip) validate() error {
	if err := c.TimelineRange.validate(); err != nil {
		return err
	}
	if c.PlaybackRate < 0.01 {
		return fmt.Errorf("%w: clip playback rate must be >= 0.01, got %f", errInvalidOp, c.PlaybackRate)
	}
	return nil
}

// Generator synthesizes a visual without a decoded source (solid color,
// text, ...).
type Generator struct {
	GeneratorID   string
	TimelineRange FrameRange
	Metadata      map[string]string
}

// PseudoPath returns the synthetic source path presented to the decode
// layer for a generator, e.g. "solid:#rrggbb" or "text://...".
func (g Generator) PseudoPath() string {
	switch g.GeneratorID {
	case "solid":
		return "solid:" + g.Metadata["color"]
	case "text":
		return "text://" + g.Metadata["text"]
	default:
		return g.GeneratorID + ":" + g.Metadata["value"]
	}
}

// NodeKind tags the TimelineNode variant.
type NodeKind int

const (
	NodeClip NodeKind = iota
	NodeGenerator
	NodeTransition
	NodeEffect
)

// TimelineNode is a tagged variant over {Clip, Generator, Transition,
// Effect}. Transitions and Effects carry no presentable payload in this
// engine (spec.md: "not presented by the core") and are only tracked so
// graph operations (move/remove) still see them.
type TimelineNode struct {
	ID       string
	Kind     NodeKind
	Label    string
	Locked   bool
	Metadata map[string]string

	Clip      *Clip
	Generator *Generator
}

// TrackKind tags what a Track is allowed to carry.
type TrackKind struct {
	name string // "Video", "Audio", "Automation", or "Custom:<id>"
}

var (
	TrackVideo      = TrackKind{"Video"}
	TrackAudio      = TrackKind{"Audio"}
	TrackAutomation = TrackKind{"Automation"}
)

// CustomTrack returns a Custom(id) track kind.
func CustomTrack(id string) TrackKind { return TrackKind{"Custom:" + id} }

func (k TrackKind) String() string { return k.name }
func (k TrackKind) IsAudio() bool  { return k.name == "Audio" }
func (k TrackKind) IsVideo() bool  { return k.name == "Video" }

// Track holds an ordered sequence of node ids; it never owns node values.
type Track struct {
	ID      string
	Name    string
	Kind    TrackKind
	NodeIDs []string
}

// Graph is the full timeline snapshot: node storage plus track ordering.
// Tracks are stored lowest-priority (background) first; per spec.md
// §4.1, later tracks in the slice win on overlap.
type Graph struct {
	Name             string
	Width, Height    int
	Fps              Fps
	DurationInFrames int64
	Tracks           []Track
	NodesByID        map[string]*TimelineNode
}

// NewGraph returns an empty graph ready for InsertNode commands.
func NewGraph(name string, width, height int, fps Fps, durationInFrames int64) *Graph {
	return &Graph{
		Name:             name,
		Width:            width,
		Height:           height,
		Fps:              fps,
		DurationInFrames: durationInFrames,
		NodesByID:        make(map[string]*TimelineNode),
	}
}

func (g *Graph) trackIndex(trackID string) int {
	for i := range g.Tracks {
		if g.Tracks[i].ID == trackID {
			return i
		}
	}
	return -1
}

func (n *TimelineNode) timelineRange() (FrameRange, bool) {
	switch n.Kind {
	case NodeClip:
		if n.Clip == nil {
			return FrameRange{}, false
		}
		return n.Clip.TimelineRange, true
	case NodeGenerator:
		if n.Generator == nil {
			return FrameRange{}, false
		}
		return n.Generator.TimelineRange, true
	default:
		return FrameRange{}, false
	}
}
