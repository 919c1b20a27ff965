// Package clock implements the playback clock (spec component C2): the
// single source of truth for media time, monotonic while playing and
// frozen while paused, driven by an anchored (wall, media) pair rather
// than integrated per-tick deltas so it never drifts.
package clock

import (
	"sync"
	"time"
)

// Clock is safe for concurrent use: now() is read from the UI thread on
// every frame tick while play/pause/seek/setRate are called from input
// handling, possibly on the same thread but never assumed to be.
type Clock struct {
	mu sync.Mutex

	playing    bool
	anchorWall time.Time // zero value when !playing
	anchorMedia float64
	rate       float64
}

// New returns a paused clock anchored at media time 0.
func New() *Clock {
	return &Clock{rate: 1}
}

// Play starts the clock running from atSec, per spec.md §4.2.
func (c *Clock) Play(atSec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchorMedia = atSec
	c.anchorWall = time.Now()
	c.playing = true
}

// Pause freezes the clock at atSec. now() returns exactly atSec
// immediately afterward (spec.md §8 invariant 3).
func (c *Clock) Pause(atSec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchorMedia = atSec
	c.anchorWall = time.Time{}
	c.playing = false
}

// SeekTo moves the clock to sec without introducing a discontinuity in
// now(): if playing, re-anchors wall time to now; if paused, just moves
// the frozen value.
func (c *Clock) SeekTo(sec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchorMedia = sec
	if c.playing {
		c.anchorWall = time.Now()
	}
}

// SetRate changes the playback rate, re-anchoring at the current now()
// so the change takes effect without a jump.
func (c *Clock) SetRate(r float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.nowLocked()
	c.rate = r
	c.anchorMedia = cur
	if c.playing {
		c.anchorWall = time.Now()
	}
}

// Now returns the current media time in seconds: monotone non-decreasing
// while Playing, constant while paused.
func (c *Clock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked()
}

func (c *Clock) nowLocked() float64 {
	if !c.playing {
		return c.anchorMedia
	}
	dt := time.Since(c.anchorWall).Seconds()
	return c.anchorMedia + dt*c.rate
}

// Playing reports whether the clock is currently running.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Rate returns the current playback rate.
func (c *Clock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}
