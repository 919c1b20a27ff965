package decode

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"previewcore/internal/logging"
)

func TestManager_EnsureWorkerReusesExistingInstance(t *testing.T) {
	factory, _ := newFakeFactory(false)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	w1, ok1 := m.ensureWorker("a.mp4")
	w2, ok2 := m.ensureWorker("a.mp4")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Same(t, w1, w2)
}

func TestManager_EnsureWorkerInitFailureReturnsFalse(t *testing.T) {
	factory, _ := newFakeFactory(true)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	_, ok := m.ensureWorker("bad.mp4")
	assert.False(t, ok)
}

func TestManager_DispatchAndTakeLatest(t *testing.T) {
	factory, _ := newFakeFactory(false)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	ok := m.Dispatch("a.mp4", ModePlaying, 30, CmdPlay{StartPts: 0, Rate: 1})
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, got := m.TakeLatest("a.mp4")
		return got
	}, time.Second, 2*time.Millisecond)
}

func TestManager_TakeLatestUnknownPathReturnsFalse(t *testing.T) {
	factory, _ := newFakeFactory(false)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	_, ok := m.TakeLatest("never-dispatched.mp4")
	assert.False(t, ok)
}

func TestManager_DispatchDedupesRepeatedSeekToSameBucket(t *testing.T) {
	factory, _ := newFakeFactory(false)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	m.Dispatch("a.mp4", ModeSeeking, 30, CmdSeek{TargetPts: 1.0})
	m.Dispatch("a.mp4", ModeSeeking, 30, CmdSeek{TargetPts: 1.0})
	m.Dispatch("a.mp4", ModeSeeking, 30, CmdSeek{TargetPts: 1.0001}) // same bucket at 30fps

	// Give the worker a moment to drain whatever commands actually landed.
	time.Sleep(20 * time.Millisecond)

	w, ok := m.ensureWorker("a.mp4")
	require.True(t, ok)
	assert.Equal(t, ModeSeeking, w.mode)
}

func TestManager_DispatchDoesNotDedupeDistinctSeekBuckets(t *testing.T) {
	factory, _ := newFakeFactory(false)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	m.Dispatch("a.mp4", ModeSeeking, 30, CmdSeek{TargetPts: 1.0})
	time.Sleep(10 * time.Millisecond)
	m.Dispatch("a.mp4", ModeSeeking, 30, CmdSeek{TargetPts: 5.0})

	require.Eventually(t, func() bool {
		w, _ := m.ensureWorker("a.mp4")
		return w.anchorPts == 5.0
	}, time.Second, 2*time.Millisecond)
}

func TestManager_RetireStopsAndRemovesWorker(t *testing.T) {
	factory, fd := newFakeFactory(false)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	m.Dispatch("a.mp4", ModePlaying, 30, CmdPlay{StartPts: 0, Rate: 1})
	m.Retire("a.mp4")

	_, ok := m.TakeLatest("a.mp4")
	assert.False(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fd.closed))
}

func TestManager_RetireAllExceptKeepsOnlySpecifiedPaths(t *testing.T) {
	factory, _ := newFakeFactory(false)
	m := NewManager(factory, DecoderConfig{}, logging.Nop())
	defer m.Close()

	m.Dispatch("a.mp4", ModePlaying, 30, CmdPlay{StartPts: 0, Rate: 1})
	m.Dispatch("b.mp4", ModePlaying, 30, CmdPlay{StartPts: 0, Rate: 1})

	m.RetireAllExcept(map[string]struct{}{"a.mp4": {}})

	_, okB := m.TakeLatest("b.mp4")
	assert.False(t, okB, "b.mp4's worker should have been retired")

	_, stillThere := m.ensureWorker("a.mp4")
	assert.True(t, stillThere, "a.mp4's worker should survive the retire-all-except pass")
}
