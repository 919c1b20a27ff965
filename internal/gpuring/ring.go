// Package gpuring implements the triple-buffered GPU plane ring (spec
// component C6): a single-producer/single-consumer ring of Y/UV texture
// slots fed by row-padded staging uploads, generalizing the teacher's
// single-texture video paint path (videowidget.go) to the two-plane
// YUV upload this engine needs.
package gpuring

import (
	"fmt"

	"go.uber.org/zap"

	"previewcore/internal/decode"
	"previewcore/internal/diag"
)

// slots is the ring's fixed depth: one slot the GPU is presenting, up
// to two more holding completed-but-unconsumed frames.
const slots = 3

// copyAlignment is the GPU's required row-copy byte alignment.
const copyAlignment = 256

// PadRowBytes rounds srcRowBytes up to the GPU copy alignment.
func PadRowBytes(srcRowBytes int) int {
	return ((srcRowBytes + copyAlignment - 1) / copyAlignment) * copyAlignment
}

// Texture is a single GPU-resident plane texture plus its staging
// buffer, owned by a backend Device.
type Texture interface {
	// Upload row-copies src (rowBytes*rows, unpadded) into the
	// texture's staging buffer with PadRowBytes(rowBytes) row stride,
	// then submits a copy into the texture proper.
	Upload(src []byte, rowBytes, rows int) error
}

// Slot is one ring entry: a Y texture and a UV texture.
type Slot struct {
	Y  Texture
	UV Texture
}

// Device creates the textures a ring needs. Backends: an SDL2 streaming
// texture implementation for real windows, and a fake in-memory one for
// tests that never touch a GPU context.
type Device interface {
	// CreateSlot allocates one ring slot sized for (format, width, height).
	CreateSlot(format decode.PixelFormat, width, height int) (Slot, error)
}

// Ring is the triple-buffered plane ring. Upload is the producer side
// (the decode/engine tick thread); Acquire is the consumer side (the
// presenter, once per draw). A slot is only ever free for writing once
// it has been both uploaded and, later, evicted from the present seat by
// a subsequent Acquire — the writer never reaches into a slot the
// consumer might still be reading.
type Ring struct {
	dev    Device
	format decode.PixelFormat
	width  int
	height int
	log    *zap.SugaredLogger

	slotObjs [slots]Slot

	ready   []int // FIFO of uploaded, unconsumed slot indices
	present int   // last slot handed to the consumer via Acquire; -1 before the first Acquire
	write   int   // next slot index Upload will target; -1 if the ring is full

	uploads int64
	drops   int64
}

// New allocates all three ring slots up front via dev.
func New(dev Device, format decode.PixelFormat, width, height int, log *zap.SugaredLogger) (*Ring, error) {
	r := &Ring{dev: dev, format: format, width: width, height: height, log: log, present: -1}
	for i := 0; i < slots; i++ {
		s, err := dev.CreateSlot(format, width, height)
		if err != nil {
			return nil, fmt.Errorf("gpuring: allocate slot %d: %w", i, err)
		}
		r.slotObjs[i] = s
	}
	r.write = r.nextFreeSlot()
	return r, nil
}

// nextFreeSlot returns a slot index held by neither the consumer
// (present) nor the unconsumed-ready queue, or -1 if all three slots are
// spoken for.
func (r *Ring) nextFreeSlot() int {
	var occupied [slots]bool
	if r.present >= 0 {
		occupied[r.present] = true
	}
	for _, idx := range r.ready {
		occupied[idx] = true
	}
	for i := 0; i < slots; i++ {
		if !occupied[i] {
			return i
		}
	}
	return -1
}

// Upload runs the C6 upload algorithm for frame: validate plane sizes
// (dropping a mismatched frame), drop if the ring has no free slot (the
// consumer hasn't acquired fast enough to free one up), upload both
// planes through the slot's textures (which row-pad them), then enqueue
// the slot as ready for the next Acquire.
//
// Returns nil on either a successful upload or an intentional drop —
// both are normal operation, not errors; check Stats() to distinguish.
func (r *Ring) Upload(frame *decode.VideoFrame) error {
	if err := frame.Validate(); err != nil {
		diag.LogPlaneMismatchOnce(func() {
			if r.log != nil {
				r.log.Warnw("gpuring: dropping frame with mismatched plane sizes", "error", err)
			}
		})
		r.drops++
		diag.RingDrops.Inc()
		return nil
	}

	if r.write < 0 {
		r.drops++
		diag.RingDrops.Inc()
		return nil
	}

	target := r.write
	yRowBytes, uvRowBytes, rows, uvRows := planeLayout(frame)

	slot := r.slotObjs[target]
	if err := slot.Y.Upload(frame.YPlane, yRowBytes, rows); err != nil {
		return fmt.Errorf("gpuring: Y upload: %w", err)
	}
	if err := slot.UV.Upload(frame.UVPlane, uvRowBytes, uvRows); err != nil {
		return fmt.Errorf("gpuring: UV upload: %w", err)
	}

	r.ready = append(r.ready, target)
	r.uploads++
	diag.RingUploads.Inc()
	r.write = r.nextFreeSlot()
	return nil
}

// HasReady reports whether at least one uploaded frame is waiting for
// the consumer to Acquire it.
func (r *Ring) HasReady() bool { return len(r.ready) > 0 }

// Acquire hands the oldest unconsumed frame to the consumer, freeing
// whatever slot it previously held for reuse by Upload. Returns
// (zero Slot, false) if nothing new has been uploaded since the last
// Acquire — the consumer should keep presenting PresentSlot().
func (r *Ring) Acquire() (Slot, bool) {
	if len(r.ready) == 0 {
		return Slot{}, false
	}
	r.present = r.ready[0]
	r.ready = r.ready[1:]
	r.write = r.nextFreeSlot()
	return r.slotObjs[r.present], true
}

// planeLayout returns (yRowBytes, uvRowBytes, yRows, uvRows) for frame.
func planeLayout(frame *decode.VideoFrame) (int, int, int, int) {
	w, h := frame.Width, frame.Height
	cw, ch := (w+1)/2, (h+1)/2
	if frame.Format == decode.FormatP010 {
		return w * 2, cw * 4, h, ch
	}
	return w, cw * 2, h, ch
}

// PresentIndex returns the slot index currently bound for presentation,
// or -1 if Acquire has never returned true.
func (r *Ring) PresentIndex() int { return r.present }

// PresentSlot returns the textures currently bound for presentation.
func (r *Ring) PresentSlot() Slot {
	if r.present < 0 {
		return Slot{}
	}
	return r.slotObjs[r.present]
}

// Stats reports cumulative uploads and drops for this ring's lifetime.
func (r *Ring) Stats() (uploads, drops int64) { return r.uploads, r.drops }
