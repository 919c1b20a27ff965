package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow_ConstantWhilePaused(t *testing.T) {
	c := New()
	c.Pause(5.0)
	a := c.Now()
	time.Sleep(10 * time.Millisecond)
	b := c.Now()
	assert.Equal(t, a, b)
	assert.Equal(t, 5.0, a)
}

func TestNow_MonotoneWhilePlaying(t *testing.T) {
	c := New()
	c.Play(0)
	a := c.Now()
	time.Sleep(15 * time.Millisecond)
	b := c.Now()
	assert.GreaterOrEqual(t, b, a)
	assert.Greater(t, b, 0.0)
}

func TestPauseThenResume_NoDiscontinuity(t *testing.T) {
	c := New()
	c.Play(0)
	time.Sleep(20 * time.Millisecond)
	t0 := c.Now()
	c.Pause(t0)
	t1 := c.Now()
	assert.Equal(t, t0, t1)

	c.Play(t1)
	t2 := c.Now()
	assert.InDelta(t, t1, t2, 0.01)
}

func TestSeekTo_NoDiscontinuityWhilePlaying(t *testing.T) {
	c := New()
	c.Play(0)
	c.SeekTo(42.0)
	assert.InDelta(t, 42.0, c.Now(), 0.01)
	assert.True(t, c.Playing())
}

func TestSetRate_ReanchorsWithoutJump(t *testing.T) {
	c := New()
	c.Play(10)
	time.Sleep(10 * time.Millisecond)
	before := c.Now()
	c.SetRate(2.0)
	after := c.Now()
	assert.InDelta(t, before, after, 0.01)
	assert.Equal(t, 2.0, c.Rate())
}

func TestNow_WallClockFiftyMillisAdvancesMediaBySameAmount(t *testing.T) {
	c := New()
	c.Play(0)
	time.Sleep(50 * time.Millisecond)
	got := c.Now()
	assert.InDelta(t, 0.05, got, 0.03)
}
