// Package audioengine implements the audio engine contract (spec
// component C8): a mixer of active audio clips driven by the playback
// clock, playing out through an oto.Context the same way the teacher's
// audio.go opens its global Oto context, generalized from a single
// per-camera G.711 stream to a multi-clip float mixer with an
// i16/f32 sample-format fan-out on output — the same two formats the
// teacher's oto.NewContext call picks between, since oto itself has no
// unsigned 16-bit format to target.
package audioengine

import (
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"go.uber.org/zap"

	"previewcore/internal/diag"
	"previewcore/internal/perr"
)

// SampleFormat mirrors the external audio device contract's i16/f32
// output variants (spec.md §6). oto has no unsigned 16-bit format, so
// unlike the device contract's full i16/u16/f32 trio, only the two oto
// can actually open a stream in are offered here.
type SampleFormat int

const (
	FormatF32 SampleFormat = iota
	FormatI16
)

// Engine owns one output device stream and mixes every clip reachable
// from the clock into it. Read is called by oto's internal playback
// goroutine; it never blocks on decode or disk, only on arithmetic.
type Engine struct {
	mu sync.Mutex

	ctx         *oto.Context
	player      oto.Player
	log         *zap.SugaredLogger
	sampleRate  int
	channels    int
	format      SampleFormat
	unavailable bool

	clips      []ActiveAudioClip
	playing    bool
	anchorWall time.Time
	anchorSec  float64

	scratch []float64
}

// New opens the default output device at sampleRate/channels. If the
// device cannot be opened, the engine sets its unavailable flag and
// every subsequent operation becomes a silent no-op, per
// ErrAudioDeviceUnavailable's policy: playback continues visually.
func New(sampleRate, channels int, format SampleFormat, log *zap.SugaredLogger) *Engine {
	e := &Engine{sampleRate: sampleRate, channels: channels, format: format, log: log}

	otoFormat := oto.FormatFloat32LE
	if format == FormatI16 {
		otoFormat = oto.FormatSignedInt16LE
	}
	ctx, ready, err := oto.NewContext(sampleRate, channels, otoFormat)
	if err != nil {
		e.log.Warnw("audio engine: device unavailable", "error", err, "wrapped", perr.ErrAudioDeviceUnavailable)
		e.unavailable = true
		diag.AudioDeviceUnavailable.Set(1)
		return e
	}
	go func() { <-ready }()

	e.ctx = ctx
	e.player = ctx.NewPlayer(e)
	return e
}

// Start begins playback at atSec against clips (pre-sorted by
// StartTimelineSec).
func (e *Engine) Start(atSec float64, clips []ActiveAudioClip) {
	if e.unavailable {
		return
	}
	e.mu.Lock()
	e.clips = clips
	e.anchorSec = atSec
	e.anchorWall = time.Now()
	e.playing = true
	e.mu.Unlock()
	e.player.Play()
}

// Pause freezes the mix at atSec.
func (e *Engine) Pause(atSec float64) {
	if e.unavailable {
		return
	}
	e.mu.Lock()
	e.anchorSec = atSec
	e.playing = false
	e.mu.Unlock()
	e.player.Pause()
}

// Seek re-anchors playback to atSec without carrying any resampler
// state across the jump, per spec.md §4.8.
func (e *Engine) Seek(atSec float64) {
	if e.unavailable {
		return
	}
	e.mu.Lock()
	e.anchorSec = atSec
	e.anchorWall = time.Now()
	e.mu.Unlock()
}

// SetClips replaces the active clip list (e.g. after a timeline edit)
// without otherwise disturbing playback state.
func (e *Engine) SetClips(clips []ActiveAudioClip) {
	e.mu.Lock()
	e.clips = clips
	e.mu.Unlock()
}

// currentTimelineSec returns the timeline second the mix should render
// for "now", given the play/pause anchor.
func (e *Engine) currentTimelineSec() float64 {
	if !e.playing {
		return e.anchorSec
	}
	return e.anchorSec + time.Since(e.anchorWall).Seconds()
}

// Read implements io.Reader for oto.Context.NewPlayer: it renders
// exactly len(p) bytes of mixed, format-converted audio starting at the
// engine's current timeline position and advances that position by the
// equivalent duration.
func (e *Engine) Read(p []byte) (int, error) {
	bytesPerFrame := e.channels * bytesPerSample(e.format)
	if bytesPerFrame == 0 {
		return len(p), nil
	}
	frames := len(p) / bytesPerFrame

	e.mu.Lock()
	t0 := e.currentTimelineSec()
	clips := e.clips
	if len(e.scratch) < e.channels {
		e.scratch = make([]float64, e.channels)
	}
	scratch := e.scratch
	e.mu.Unlock()

	off := 0
	for f := 0; f < frames; f++ {
		t := t0 + float64(f)/float64(e.sampleRate)
		MixFrame(clips, t, scratch)
		off += encodeFrame(p[off:], scratch, e.format)
	}

	e.mu.Lock()
	if e.playing {
		e.anchorSec = t0 + float64(frames)/float64(e.sampleRate)
		e.anchorWall = time.Now()
	}
	e.mu.Unlock()

	return off, nil
}

func bytesPerSample(f SampleFormat) int {
	switch f {
	case FormatF32:
		return 4
	case FormatI16:
		return 2
	default:
		return 4
	}
}

// encodeFrame writes one interleaved frame of samples (already mixed
// and clamped to [-1,1]) into dst in the engine's output format,
// returning the number of bytes written.
func encodeFrame(dst []byte, samples []float64, format SampleFormat) int {
	n := 0
	for _, s := range samples {
		switch format {
		case FormatF32:
			putFloat32LE(dst[n:], float32(s))
			n += 4
		case FormatI16:
			v := int16(s * 32767)
			putUint16LE(dst[n:], uint16(v))
			n += 2
		}
	}
	return n
}

func putUint16LE(dst []byte, v uint16) {
	if len(dst) < 2 {
		return
	}
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
}

func putFloat32LE(dst []byte, f float32) {
	if len(dst) < 4 {
		return
	}
	bits := math.Float32bits(f)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}
