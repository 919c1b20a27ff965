package decode

// DecoderConfig mirrors spec.md §6's hardware decoder contract.
type DecoderConfig struct {
	HardwareAcceleration bool
	PreferredFormat      *PixelFormat
	ZeroCopy             bool
}

// DecoderProperties is what GetProperties reports.
type DecoderProperties struct {
	Width, Height int
	FPS           float64
	Format        PixelFormat
}

// Decoder is the hardware/software decoder capability set from spec.md
// §6. Workers own exactly one Decoder for their source's lifetime.
type Decoder interface {
	// DecodeFrame attempts to produce the frame closest to targetSec. A
	// nil frame with a nil error means "no frame yet" (spec.md's
	// TransientDecodeMiss) — the worker retries within its tick budget.
	DecodeFrame(targetSec float64) (*VideoFrame, error)
	GetProperties() DecoderProperties
	SeekTo(sec float64) error
	SupportsZeroCopy() bool
	Close() error
}

// DecoderFactory creates a Decoder for path. Swapped out in tests for a
// fake; production wiring uses NewAstiavDecoder.
type DecoderFactory func(path string, cfg DecoderConfig) (Decoder, error)
