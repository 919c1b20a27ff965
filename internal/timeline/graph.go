package timeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var errInvalidOp = errors.New("timeline: invalid operation")

// ErrInvalidOp is returned (wrapped) by ApplyCommand when a command would
// violate a graph invariant. Matches spec.md §4.1's InvalidOp / §7's
// TimelineInvalidOp: the graph is left unmodified on failure.
var ErrInvalidOp = errInvalidOp

// NewNodeID mints a node identifier. The project database that would
// normally own id generation is out of scope for this engine, so ids are
// minted locally the same way the original implementation's asset rows
// are (uuid v4), per SPEC_FULL.md §2.
func NewNodeID() string { return uuid.NewString() }

// Command is a graph mutation. Implementations are produced by the
// exported constructors below; ApplyCommand type-switches over them.
type Command interface{ apply(g *Graph) error }

// InsertNode adds a new node to the graph and places its id at Index in
// TrackID's node sequence (append if Index < 0 or Index >= len).
type InsertNode struct {
	TrackID string
	Node    TimelineNode
	Index   int
}

func (c InsertNode) apply(g *Graph) error {
	if _, exists := g.NodesByID[c.Node.ID]; exists {
		return fmt.Errorf("%w: node id %q already exists", errInvalidOp, c.Node.ID)
	}
	ti := g.trackIndex(c.TrackID)
	if ti < 0 {
		return fmt.Errorf("%w: track %q not found", errInvalidOp, c.TrackID)
	}
	if rng, ok := c.Node.timelineRange(); ok {
		if rng.Duration < 1 {
			return fmt.Errorf("%w: placement duration must be >= 1", errInvalidOp)
		}
	}
	node := c.Node
	g.NodesByID[node.ID] = &node

	ids := g.Tracks[ti].NodeIDs
	idx := c.Index
	if idx < 0 || idx > len(ids) {
		idx = len(ids)
	}
	ids = append(ids, "")
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = node.ID
	g.Tracks[ti].NodeIDs = ids
	return nil
}

// UpdateNode patches fields of an existing node. Nil pointer fields are
// left untouched. Unlocked nodes only: attempting to update a Locked
// node fails with ErrInvalidOp.
type UpdateNode struct {
	NodeID string

	NewTimelineRange *FrameRange
	NewMediaRange    *FrameRange
	NewPlaybackRate  *float64
	NewReverse       *bool
	NewLabel         *string
	NewLocked        *bool
	NewMetadata      map[string]string
}

func (c UpdateNode) apply(g *Graph) error {
	node, ok := g.NodesByID[c.NodeID]
	if !ok {
		return fmt.Errorf("%w: node %q not found", errInvalidOp, c.NodeID)
	}
	if node.Locked && (c.NewTimelineRange != nil || c.NewMediaRange != nil || c.NewPlaybackRate != nil || c.NewReverse != nil) {
		return fmt.Errorf("%w: node %q is locked", errInvalidOp, c.NodeID)
	}

	// Validate against a scratch copy before mutating the real node, so a
	// rejected update never partially applies.
	scratch := *node
	if node.Clip != nil {
		clipCopy := *node.Clip
		scratch.Clip = &clipCopy
	}
	if node.Generator != nil {
		genCopy := *node.Generator
		scratch.Generator = &genCopy
	}

	if c.NewTimelineRange != nil {
		switch scratch.Kind {
		case NodeClip:
			scratch.Clip.TimelineRange = *c.NewTimelineRange
		case NodeGenerator:
			scratch.Generator.TimelineRange = *c.NewTimelineRange
		default:
			return fmt.Errorf("%w: node %q has no timeline range to update", errInvalidOp, c.NodeID)
		}
	}
	if c.NewMediaRange != nil {
		if scratch.Kind != NodeClip {
			return fmt.Errorf("%w: only clips have a media range", errInvalidOp)
		}
		scratch.Clip.MediaRange = *c.NewMediaRange
	}
	if c.NewPlaybackRate != nil {
		if scratch.Kind != NodeClip {
			return fmt.Errorf("%w: only clips have a playback rate", errInvalidOp)
		}
		scratch.Clip.PlaybackRate = *c.NewPlaybackRate
	}
	if c.NewReverse != nil {
		if scratch.Kind != NodeClip {
			return fmt.Errorf("%w: only clips have a reverse flag", errInvalidOp)
		}
		scratch.Clip.Reverse = *c.NewReverse
	}
	if c.NewLabel != nil {
		scratch.Label = *c.NewLabel
	}
	if c.NewLocked != nil {
		scratch.Locked = *c.NewLocked
	}
	if c.NewMetadata != nil {
		scratch.Metadata = c.NewMetadata
	}

	if scratch.Kind == NodeClip {
		if err := scratch.Clip.validate(); err != nil {
			return err
		}
	}
	if scratch.Kind == NodeGenerator {
		if err := scratch.Generator.TimelineRange.validate(); err != nil {
			return err
		}
	}

	*node = scratch
	return nil
}

// RemoveNode deletes a node from the graph and from whichever track
// currently references it.
type RemoveNode struct {
	NodeID string
}

func (c RemoveNode) apply(g *Graph) error {
	node, ok := g.NodesByID[c.NodeID]
	if !ok {
		return fmt.Errorf("%w: node %q not found", errInvalidOp, c.NodeID)
	}
	if node.Locked {
		return fmt.Errorf("%w: node %q is locked", errInvalidOp, c.NodeID)
	}
	for ti := range g.Tracks {
		ids := g.Tracks[ti].NodeIDs
		for i, id := range ids {
			if id == c.NodeID {
				g.Tracks[ti].NodeIDs = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	delete(g.NodesByID, c.NodeID)
	return nil
}

// MovePlacement relocates a node to a (possibly different) track at a
// given index, optionally sliding its timeline start to NewStart
// (duration is preserved).
type MovePlacement struct {
	NodeID    string
	ToTrackID string
	ToIndex   int
	NewStart  *int64
}

func (c MovePlacement) apply(g *Graph) error {
	node, ok := g.NodesByID[c.NodeID]
	if !ok {
		return fmt.Errorf("%w: node %q not found", errInvalidOp, c.NodeID)
	}
	if node.Locked {
		return fmt.Errorf("%w: node %q is locked", errInvalidOp, c.NodeID)
	}
	toIdx := g.trackIndex(c.ToTrackID)
	if toIdx < 0 {
		return fmt.Errorf("%w: track %q not found", errInvalidOp, c.ToTrackID)
	}

	if c.NewStart != nil {
		switch node.Kind {
		case NodeClip:
			d := node.Clip.TimelineRange.Duration
			node.Clip.TimelineRange = FrameRange{Start: *c.NewStart, Duration: d}
		case NodeGenerator:
			d := node.Generator.TimelineRange.Duration
			node.Generator.TimelineRange = FrameRange{Start: *c.NewStart, Duration: d}
		}
	}

	for ti := range g.Tracks {
		ids := g.Tracks[ti].NodeIDs
		for i, id := range ids {
			if id == c.NodeID {
				g.Tracks[ti].NodeIDs = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}

	ids := g.Tracks[toIdx].NodeIDs
	idx := c.ToIndex
	if idx < 0 || idx > len(ids) {
		idx = len(ids)
	}
	ids = append(ids, "")
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = c.NodeID
	g.Tracks[toIdx].NodeIDs = ids
	return nil
}

// ApplyCommand mutates the graph according to cmd, or leaves it
// unmodified and returns a wrapped ErrInvalidOp.
func (g *Graph) ApplyCommand(cmd Command) error {
	return cmd.apply(g)
}

// SplitClip splits the clip node at timeline frame atFrame into two
// adjacent clips covering the same total range, per spec.md scenario S6.
// Built from an UpdateNode and an InsertNode (SPEC_FULL.md §2): the left
// clip keeps the node id and is truncated in place by the UpdateNode; the
// InsertNode places a new node carrying the remainder immediately after
// it on the same track. If the insert fails, the truncation is rolled
// back.
func (g *Graph) SplitClip(nodeID string, atFrame int64) (rightID string, err error) {
	node, ok := g.NodesByID[nodeID]
	if !ok {
		return "", fmt.Errorf("%w: node %q not found", errInvalidOp, nodeID)
	}
	if node.Kind != NodeClip || node.Clip == nil {
		return "", fmt.Errorf("%w: node %q is not a clip", errInvalidOp, nodeID)
	}
	if node.Locked {
		return "", fmt.Errorf("%w: node %q is locked", errInvalidOp, nodeID)
	}
	orig := *node.Clip
	if !orig.TimelineRange.Contains(atFrame) || atFrame == orig.TimelineRange.Start {
		return "", fmt.Errorf("%w: split point %d is not strictly inside [%d,%d)",
			errInvalidOp, atFrame, orig.TimelineRange.Start, orig.TimelineRange.End())
	}

	leftDuration := atFrame - orig.TimelineRange.Start
	rightDuration := orig.TimelineRange.End() - atFrame
	rightMediaStart := orig.MediaRange.Start + int64(float64(leftDuration)*orig.PlaybackRate)

	leftRange := FrameRange{Start: orig.TimelineRange.Start, Duration: leftDuration}
	leftMedia := FrameRange{Start: orig.MediaRange.Start, Duration: leftDuration}
	if err := g.ApplyCommand(UpdateNode{
		NodeID:           nodeID,
		NewTimelineRange: &leftRange,
		NewMediaRange:    &leftMedia,
	}); err != nil {
		return "", err
	}

	trackID := ""
	insertIndex := -1
	for ti := range g.Tracks {
		for i, id := range g.Tracks[ti].NodeIDs {
			if id == nodeID {
				trackID = g.Tracks[ti].ID
				insertIndex = i + 1
				break
			}
		}
	}
	if trackID == "" {
		return "", fmt.Errorf("%w: node %q not placed on any track", errInvalidOp, nodeID)
	}

	right := TimelineNode{
		ID:       NewNodeID(),
		Kind:     NodeClip,
		Label:    node.Label,
		Metadata: node.Metadata,
		Clip: &Clip{
			AssetID:       orig.AssetID,
			MediaRange:    FrameRange{Start: rightMediaStart, Duration: rightDuration},
			TimelineRange: FrameRange{Start: atFrame, Duration: rightDuration},
			PlaybackRate:  orig.PlaybackRate,
			Reverse:       orig.Reverse,
		},
	}
	if err := g.ApplyCommand(InsertNode{TrackID: trackID, Node: right, Index: insertIndex}); err != nil {
		// Roll back the left truncation so the graph is left unmodified.
		fullRange := orig.TimelineRange
		fullMedia := orig.MediaRange
		_ = g.ApplyCommand(UpdateNode{NodeID: nodeID, NewTimelineRange: &fullRange, NewMediaRange: &fullMedia})
		return "", err
	}
	return right.ID, nil
}
