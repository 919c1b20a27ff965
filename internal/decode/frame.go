// Package decode implements the per-source decode worker and the
// decode manager registry (spec components C3 and C4): one persistent
// decoder thread per source path, publishing into a latest-frame slot
// under three drive modes (play, seek, scrub).
package decode

import (
	"fmt"

	"previewcore/internal/perr"
)

// PixelFormat tags a decoded frame's plane layout.
type PixelFormat int

const (
	FormatNV12 PixelFormat = iota
	FormatP010
)

func (f PixelFormat) String() string {
	switch f {
	case FormatNV12:
		return "NV12"
	case FormatP010:
		return "P010"
	default:
		return "unknown"
	}
}

// VideoFrame is a decoded YUV frame ready for the GPU plane ring.
type VideoFrame struct {
	Format    PixelFormat
	Width     int
	Height    int
	Timestamp float64 // media seconds
	YPlane    []byte
	UVPlane   []byte
}

// ceilHalf returns ceil(n/2).
func ceilHalf(n int) int { return (n + 1) / 2 }

// ExpectedPlaneSizes returns the (|Y|, |UV|) byte counts a well-formed
// frame of the given format and dimensions must have, per spec.md §3.
func ExpectedPlaneSizes(format PixelFormat, width, height int) (yBytes, uvBytes int) {
	cw, ch := ceilHalf(width), ceilHalf(height)
	switch format {
	case FormatNV12:
		return width * height, cw * ch * 2
	case FormatP010:
		return width * height * 2, cw * ch * 4
	default:
		return 0, 0
	}
}

// Validate checks the frame's plane sizes against ExpectedPlaneSizes.
// Spec.md §7 PlaneSizeMismatch: callers must drop (not upload) a frame
// that fails this check.
func (f VideoFrame) Validate() error {
	wantY, wantUV := ExpectedPlaneSizes(f.Format, f.Width, f.Height)
	if len(f.YPlane) != wantY || len(f.UVPlane) != wantUV {
		return fmt.Errorf("%w: format=%s w=%d h=%d want Y=%d UV=%d got Y=%d UV=%d",
			perr.ErrPlaneSizeMismatch, f.Format, f.Width, f.Height, wantY, wantUV, len(f.YPlane), len(f.UVPlane))
	}
	return nil
}
