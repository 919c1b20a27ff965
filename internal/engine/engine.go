// Package engine wires the timeline model, playback clock, decode
// manager, frame cache, GPU plane ring, presenter and audio engine
// together into the single per-frame tick the UI thread drives, plus
// the keyboard surface spec.md §6 assigns to the core.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"previewcore/internal/audioengine"
	"previewcore/internal/cache"
	"previewcore/internal/clock"
	"previewcore/internal/decode"
	"previewcore/internal/gpuring"
	"previewcore/internal/presenter"
	"previewcore/internal/timeline"
)

// Engine is the top-level glue object a host process (cmd/previewhost)
// constructs once per open project.
type Engine struct {
	mu sync.Mutex

	Graph   *timeline.Graph
	Clock   *clock.Clock
	Manager *decode.Manager
	Cache   *cache.FrameCache
	Audio   *audioengine.Engine
	Device  gpuring.Device
	log     *zap.SugaredLogger

	mode decode.Mode
	rate float64

	activePath string
	ring       *gpuring.Ring
	present    *presenter.Presenter
	ringW      int
	ringH      int
	ringFmt    decode.PixelFormat

	SelectedNodeID string
}

// New builds an engine around an already-open timeline graph. dev
// creates the GPU ring's textures (an SDLDevice for a real window, a
// fake device in tests).
func New(graph *timeline.Graph, factory decode.DecoderFactory, dev gpuring.Device, log *zap.SugaredLogger) *Engine {
	cfg := decode.DecoderConfig{}
	mgr := decode.NewManager(factory, cfg, log)
	fc, err := cache.New(cache.DefaultCapacity)
	if err != nil {
		log.Fatalw("engine: building frame cache", "error", err)
	}
	return &Engine{
		Graph:   graph,
		Clock:   clock.New(),
		Manager: mgr,
		Cache:   fc,
		Device:  dev,
		log:     log,
		mode:    decode.ModePaused,
		rate:    1,
	}
}

// TogglePlayPause implements the Space key: flips between Paused and
// Playing, keeping the clock and audio engine in lockstep.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.Clock.Now()
	if e.mode == decode.ModePlaying {
		e.mode = decode.ModePaused
		e.Clock.Pause(now)
		if e.Audio != nil {
			e.Audio.Pause(now)
		}
		return
	}
	e.mode = decode.ModePlaying
	e.Clock.Play(now)
	if e.Audio != nil {
		e.Audio.Start(now, nil)
	}
}

// Seek implements a committed seek (e.g. timeline scrubber release).
func (e *Engine) Seek(sec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.mode = decode.ModeSeeking
	e.Clock.SeekTo(sec)
	if e.Audio != nil {
		e.Audio.Seek(sec)
	}
}

// Scrub implements a live, in-progress drag of the scrubber: same
// effect as Seek on the clock, but tagged with a distinct mode so the
// decode manager's debounce key doesn't collapse scrub steps with a
// settled seek.
func (e *Engine) Scrub(sec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.mode = decode.ModeScrubbing
	e.Clock.SeekTo(sec)
}

// Tick runs one iteration of the UI thread's frame loop: resolve the
// active source, dispatch the appropriate command, drain whatever frame
// is ready, and upload it to the GPU ring. Returns false if no clip is
// active at the current playhead; generators are not resolved here.
func (e *Engine) Tick() (bool, error) {
	e.mu.Lock()
	mode := e.mode
	rate := e.rate
	nowSec := e.Clock.Now()
	e.mu.Unlock()

	vt, ok := e.Graph.ActiveVideoMediaTime(nowSec, mode == decode.ModePlaying)
	if !ok {
		return false, nil
	}

	fpsFloat := float64(e.Graph.Fps.Num) / float64(e.Graph.Fps.Den)

	var cmd decode.Command
	switch mode {
	case decode.ModePlaying:
		cmd = decode.CmdPlay{StartPts: vt.MediaSec, Rate: rate}
	case decode.ModeSeeking:
		cmd = decode.CmdSeek{TargetPts: vt.MediaSec}
	case decode.ModeScrubbing:
		cmd = decode.CmdScrub{TargetPts: vt.MediaSec}
	default:
		cmd = decode.CmdPause{}
	}
	e.Manager.Dispatch(vt.Path, mode, fpsFloat, cmd)

	frame, fresh := e.Manager.TakeLatest(vt.Path)
	if fresh {
		e.Cache.Put(vt.Path, frame.Timestamp, frame)
	} else if cached, hit := e.Cache.Get(vt.Path, vt.MediaSec, e.ringW, e.ringH); hit {
		frame = cached
	}
	if frame == nil {
		return true, nil
	}

	if err := e.ensureRing(frame.Format, frame.Width, frame.Height); err != nil {
		return true, err
	}
	e.activePath = vt.Path

	if err := e.ring.Upload(frame); err != nil {
		return true, err
	}
	return true, nil
}

// ensureRing (re)allocates the ring and presenter when the active
// source's format or dimensions change.
func (e *Engine) ensureRing(format decode.PixelFormat, width, height int) error {
	if e.ring != nil && e.ringFmt == format && e.ringW == width && e.ringH == height {
		return nil
	}
	ring, err := gpuring.New(e.Device, format, width, height, e.log)
	if err != nil {
		return err
	}
	e.ring = ring
	e.present = presenter.New(ring, format)
	e.ringFmt, e.ringW, e.ringH = format, width, height
	return nil
}

// Presenter returns the presenter for the currently active source, or
// nil if nothing has been uploaded yet.
func (e *Engine) Presenter() *presenter.Presenter { return e.present }

// CycleShaderMode implements the 1/2/3/4 keyboard surface.
func (e *Engine) CycleShaderMode() {
	if e.present != nil {
		e.present.CycleMode()
	}
}

// SplitSelectedClip implements the K / Ctrl+S keyboard surface: split
// the selected clip at the current playhead frame.
func (e *Engine) SplitSelectedClip() (string, error) {
	frame := e.Graph.Fps.SecondsToFramesRound(e.Clock.Now())
	return e.Graph.SplitClip(e.SelectedNodeID, frame)
}

// RemoveSelection implements Delete/Backspace.
func (e *Engine) RemoveSelection() error {
	if e.SelectedNodeID == "" {
		return nil
	}
	err := e.Graph.ApplyCommand(timeline.RemoveNode{NodeID: e.SelectedNodeID})
	if err == nil {
		e.SelectedNodeID = ""
	}
	return err
}

// Close tears down every decode worker.
func (e *Engine) Close() {
	e.Manager.Close()
}
