package decode

import (
	"fmt"

	astiav "github.com/asticode/go-astiav"
)

// planeScaler converts a decoded frame to tightly packed NV12 or P010
// planes via FFmpeg's software scaler, generalizing the teacher's
// bgraScaler (video.go) from a single packed-BGRA destination to the two
// semi-planar YUV destinations this engine needs.
type planeScaler struct {
	ssc        *astiav.SoftwareScaleContext
	dst        *astiav.Frame
	srcW, srcH int
	srcPix     astiav.PixelFormat
	dstPix     astiav.PixelFormat
}

func dstPixelFormat(f PixelFormat) astiav.PixelFormat {
	if f == FormatP010 {
		return astiav.PixelFormatP010Le
	}
	return astiav.PixelFormatNv12
}

func (s *planeScaler) ensure(src *astiav.Frame, want PixelFormat) error {
	sw, sh := src.Width(), src.Height()
	sp := src.PixelFormat()
	dp := dstPixelFormat(want)

	if s.ssc != nil && sw == s.srcW && sh == s.srcH && sp == s.srcPix && dp == s.dstPix {
		return nil
	}
	s.close()

	flags := astiav.NewSoftwareScaleContextFlags()
	ssc, err := astiav.CreateSoftwareScaleContext(sw, sh, sp, sw, sh, dp, flags)
	if err != nil {
		return fmt.Errorf("CreateSoftwareScaleContext(%dx%d %v -> %v): %w", sw, sh, sp, dp, err)
	}

	dst := astiav.AllocFrame()
	dst.SetWidth(sw)
	dst.SetHeight(sh)
	dst.SetPixelFormat(dp)
	if err := dst.AllocBuffer(1); err != nil {
		dst.Free()
		ssc.Free()
		return fmt.Errorf("dst.AllocBuffer: %w", err)
	}

	s.ssc, s.dst = ssc, dst
	s.srcW, s.srcH, s.srcPix, s.dstPix = sw, sh, sp, dp
	return nil
}

// scale converts src into a VideoFrame with tightly packed Y/UV planes
// (no row padding), row-copying out of FFmpeg's linesize-padded buffers
// the same way the teacher copies its packed BGRA image.
func (s *planeScaler) scale(src *astiav.Frame, want PixelFormat) (*VideoFrame, error) {
	if err := s.ensure(src, want); err != nil {
		return nil, err
	}
	if err := s.ssc.ScaleFrame(src, s.dst); err != nil {
		return nil, fmt.Errorf("ScaleFrame: %w", err)
	}

	w, h := s.srcW, s.srcH
	cw, ch := ceilHalf(w), ceilHalf(h)
	linesizes := s.dst.Linesize()

	yRowBytes := w
	uvRowBytes := cw * 2
	if want == FormatP010 {
		yRowBytes = w * 2
		uvRowBytes = cw * 4
	}

	yPlane, err := packPlane(s.dst, 0, yRowBytes, h)
	if err != nil {
		return nil, fmt.Errorf("pack Y plane: %w", err)
	}
	uvPlane, err := packPlane(s.dst, 1, uvRowBytes, ch)
	if err != nil {
		return nil, fmt.Errorf("pack UV plane: %w", err)
	}
	_ = linesizes

	return &VideoFrame{
		Format:  want,
		Width:   w,
		Height:  h,
		YPlane:  yPlane,
		UVPlane: uvPlane,
	}, nil
}

// packPlane copies plane idx out of f row by row, stripping FFmpeg's
// linesize padding so the result is exactly rowBytes*rows long.
func packPlane(f *astiav.Frame, idx int, rowBytes, rows int) ([]byte, error) {
	src, err := f.Data().Bytes(idx)
	if err != nil {
		return nil, err
	}
	linesize := f.Linesize()[idx]
	out := make([]byte, rowBytes*rows)
	for row := 0; row < rows; row++ {
		srcOff := row * linesize
		if srcOff+rowBytes > len(src) {
			break
		}
		copy(out[row*rowBytes:(row+1)*rowBytes], src[srcOff:srcOff+rowBytes])
	}
	return out, nil
}

func (s *planeScaler) close() {
	if s.dst != nil {
		s.dst.Free()
		s.dst = nil
	}
	if s.ssc != nil {
		s.ssc.Free()
		s.ssc = nil
	}
}
