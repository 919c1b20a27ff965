package gpuring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"previewcore/internal/decode"
	"previewcore/internal/logging"
)

// fakeTexture records every upload it receives so tests can assert on
// row padding and byte content without a real GPU context.
type fakeTexture struct {
	uploads  int
	lastRows int
	failNext bool
}

func (t *fakeTexture) Upload(src []byte, rowBytes, rows int) error {
	if t.failNext {
		t.failNext = false
		return assertUploadErr
	}
	t.uploads++
	t.lastRows = rows
	return nil
}

var assertUploadErr = errFakeUpload

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

const errFakeUpload fakeErr = "fake texture upload failure"

type fakeDevice struct{}

func (fakeDevice) CreateSlot(format decode.PixelFormat, width, height int) (Slot, error) {
	return Slot{Y: &fakeTexture{}, UV: &fakeTexture{}}, nil
}

func nv12Frame(w, h int) *decode.VideoFrame {
	yBytes, uvBytes := decode.ExpectedPlaneSizes(decode.FormatNV12, w, h)
	return &decode.VideoFrame{
		Format:  decode.FormatNV12,
		Width:   w,
		Height:  h,
		YPlane:  make([]byte, yBytes),
		UVPlane: make([]byte, uvBytes),
	}
}

func newTestRing(t *testing.T, w, h int) *Ring {
	t.Helper()
	r, err := New(fakeDevice{}, decode.FormatNV12, w, h, logging.Nop())
	require.NoError(t, err)
	return r
}

func TestPadRowBytes_RoundsUpToAlignment(t *testing.T) {
	assert.Equal(t, 256, PadRowBytes(1))
	assert.Equal(t, 256, PadRowBytes(256))
	assert.Equal(t, 512, PadRowBytes(257))
}

func TestRing_UploadPublishesPresentSlot(t *testing.T) {
	r := newTestRing(t, 64, 64)

	require.NoError(t, r.Upload(nv12Frame(64, 64)))

	uploads, drops := r.Stats()
	assert.Equal(t, int64(1), uploads)
	assert.Equal(t, int64(0), drops)

	_, advanced := r.Acquire()
	assert.True(t, advanced)
}

func TestRing_DropsMismatchedFrameWithoutUploading(t *testing.T) {
	r := newTestRing(t, 64, 64)

	bad := nv12Frame(64, 64)
	bad.YPlane = bad.YPlane[:len(bad.YPlane)-1] // corrupt

	require.NoError(t, r.Upload(bad))
	uploads, drops := r.Stats()
	assert.Equal(t, int64(0), uploads)
	assert.Equal(t, int64(1), drops)
}

// TestRing_FrozenPresenterDropsAfterThreeUploads exercises invariant #5
// and scenario S5 directly: a consumer that never calls Acquire can
// only ever receive 3 successful uploads (one per physical slot) before
// every subsequent Upload must drop.
func TestRing_FrozenPresenterDropsAfterThreeUploads(t *testing.T) {
	r := newTestRing(t, 16, 16)

	const n = 12
	for i := 0; i < n; i++ {
		require.NoError(t, r.Upload(nv12Frame(16, 16)))
	}

	uploads, drops := r.Stats()
	assert.Equal(t, int64(n), uploads+drops, "invariant #5: every attempt is either an upload or a drop")
	assert.LessOrEqual(t, uploads, int64(slots))
	assert.GreaterOrEqual(t, drops, int64(n-slots))
}

// TestRing_RandomConsumerRateProducesDropsUnderSaturation runs a
// producer that uploads every iteration against a consumer that
// acquires at a much slower, randomized rate, and asserts the ring
// actually drops under that sustained saturation rather than silently
// absorbing every frame.
func TestRing_RandomConsumerRateProducesDropsUnderSaturation(t *testing.T) {
	r := newTestRing(t, 16, 16)
	rng := rand.New(rand.NewSource(1))

	const n = 10000
	for i := 0; i < n; i++ {
		require.NoError(t, r.Upload(nv12Frame(16, 16)))
		// The consumer only acquires on roughly 1 in 20 ticks, far
		// slower than the producer, so the ring must saturate.
		if rng.Intn(20) == 0 {
			r.Acquire()
		}
	}

	uploads, drops := r.Stats()
	assert.Equal(t, int64(n), uploads+drops)
	assert.Greater(t, drops, int64(0), "a consumer lagging this far behind must force drops")
	assert.Greater(t, uploads, int64(0), "the consumer's occasional acquires must still let some frames through")
}

func TestRing_PresentNeverEqualsAnUnconsumedReadySlot(t *testing.T) {
	r := newTestRing(t, 16, 16)
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		require.NoError(t, r.Upload(nv12Frame(16, 16)))
		if rng.Intn(3) == 0 {
			r.Acquire()
		}
		for _, readyIdx := range r.ready {
			assert.NotEqual(t, r.present, readyIdx, "a slot can't be both presented and still queued as unconsumed")
		}
	}
}
