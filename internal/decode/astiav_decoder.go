package decode

import (
	"errors"
	"fmt"
	"io"

	astiav "github.com/asticode/go-astiav"

	"previewcore/internal/perr"
)

// AstiavDecoder decodes one source path via FFmpeg (go-astiav), the same
// library the teacher app uses for its camera streams. Where the teacher
// always scales to BGRA for Qt painting (video.go's bgraScaler), this
// decoder scales to NV12 or P010 so the result can flow straight into
// the GPU plane ring untouched.
type AstiavDecoder struct {
	path string
	cfg  DecoderConfig

	fc   *astiav.FormatContext
	vctx *astiav.CodecContext
	vst  *astiav.Stream

	scaler planeScaler

	pkt *astiav.Packet
	raw *astiav.Frame

	fps    float64
	format PixelFormat
}

// NewAstiavDecoder opens path and prepares a video decode + scale
// pipeline targeting cfg.PreferredFormat (NV12 by default).
func NewAstiavDecoder(path string, cfg DecoderConfig) (Decoder, error) {
	format := FormatNV12
	if cfg.PreferredFormat != nil {
		format = *cfg.PreferredFormat
	}

	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, fmt.Errorf("%w: AllocFormatContext", perr.ErrFatalDecoderInit)
	}
	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("%w: OpenInput(%s): %v", perr.ErrFatalDecoderInit, path, err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("%w: FindStreamInfo: %v", perr.ErrFatalDecoderInit, err)
	}

	vIdx := -1
	for i, s := range fc.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeVideo {
			vIdx = i
			break
		}
	}
	if vIdx < 0 {
		fc.Free()
		return nil, fmt.Errorf("%w: no video stream in %s", perr.ErrFatalDecoderInit, path)
	}
	vst := fc.Streams()[vIdx]
	vpar := vst.CodecParameters()

	vdec := astiav.FindDecoder(vpar.CodecID())
	if vdec == nil {
		fc.Free()
		return nil, fmt.Errorf("%w: FindDecoder nil for %s", perr.ErrFatalDecoderInit, path)
	}
	vctx := astiav.AllocCodecContext(vdec)
	if vctx == nil {
		fc.Free()
		return nil, fmt.Errorf("%w: AllocCodecContext nil", perr.ErrFatalDecoderInit)
	}
	if err := vpar.ToCodecContext(vctx); err != nil {
		vctx.Free()
		fc.Free()
		return nil, fmt.Errorf("%w: ToCodecContext: %v", perr.ErrFatalDecoderInit, err)
	}

	vopts := astiav.NewDictionary()
	defer vopts.Free()
	if !cfg.HardwareAcceleration {
		_ = vopts.Set("hwaccel", "none", 0)
	}
	if err := vctx.Open(vdec, vopts); err != nil {
		vctx.Free()
		fc.Free()
		return nil, fmt.Errorf("%w: open video codec: %v", perr.ErrFatalDecoderInit, err)
	}

	r := vst.AvgFrameRate()
	fps := 30.0
	if r.Num() > 0 && r.Den() > 0 {
		fps = float64(r.Num()) / float64(r.Den())
	}

	return &AstiavDecoder{
		path:   path,
		cfg:    cfg,
		fc:     fc,
		vctx:   vctx,
		vst:    vst,
		pkt:    astiav.AllocPacket(),
		raw:    astiav.AllocFrame(),
		fps:    fps,
		format: format,
	}, nil
}

// DecodeFrame reads and decodes packets until it produces a frame at or
// past targetSec (within half a frame), or runs out of readable packets
// for this call. Frames earlier than that are decoded and discarded; it
// never seeks backwards. Returns
// (nil, nil) — a transient miss — when nothing is ready yet; the worker
// is responsible for the retry budget (spec.md §4.3).
func (d *AstiavDecoder) DecodeFrame(targetSec float64) (*VideoFrame, error) {
	for {
		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, nil // transient read hiccup; caller retries
		}
		if d.pkt.StreamIndex() != d.vst.Index() {
			d.pkt.Unref()
			continue
		}
		if err := d.vctx.SendPacket(d.pkt); err != nil && !errors.Is(err, astiav.ErrEagain) {
			d.pkt.Unref()
			continue
		}
		d.pkt.Unref()

		err := d.vctx.ReceiveFrame(d.raw)
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			continue
		}
		if err != nil {
			return nil, nil // count as a miss; worker's miss counter handles thresholds
		}
		frameSec := targetSec
		tb := d.vst.TimeBase()
		if tb.Den() > 0 {
			frameSec = float64(d.raw.Pts()) * float64(tb.Num()) / float64(tb.Den())
		}
		if frameSec < targetSec-0.5/d.fps {
			d.raw.Unref()
			continue
		}
		defer d.raw.Unref()

		frame, err := d.scaler.scale(d.raw, d.format)
		if err != nil {
			return nil, fmt.Errorf("plane scale: %w", err)
		}
		frame.Timestamp = frameSec
		return frame, nil
	}
}

func (d *AstiavDecoder) GetProperties() DecoderProperties {
	return DecoderProperties{
		Width:  d.vctx.Width(),
		Height: d.vctx.Height(),
		FPS:    d.fps,
		Format: d.format,
	}
}

func (d *AstiavDecoder) SeekTo(sec float64) error {
	tb := d.vst.TimeBase()
	ts := int64(0)
	if tb.Den() > 0 {
		ts = int64(sec * float64(tb.Den()) / float64(tb.Num()))
	}
	if err := d.fc.SeekFrame(d.vst.Index(), ts, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return err
	}
	d.vctx.FlushBuffers()
	return nil
}

func (d *AstiavDecoder) SupportsZeroCopy() bool { return false }

func (d *AstiavDecoder) Close() error {
	d.scaler.close()
	if d.raw != nil {
		d.raw.Free()
	}
	if d.pkt != nil {
		d.pkt.Free()
	}
	if d.vctx != nil {
		d.vctx.Free()
	}
	if d.fc != nil {
		d.fc.Free()
	}
	return nil
}
