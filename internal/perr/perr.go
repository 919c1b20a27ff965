// Package perr names the error taxonomy shared across the preview engine.
//
// Every tag corresponds 1:1 with the policy table in the design notes: most
// are swallowed at the point of occurrence and never reach a caller, but
// giving them a distinct sentinel lets call sites errors.Is/errors.As
// instead of matching on message text.
package perr

import "errors"

var (
	// ErrTransientDecodeMiss means the decoder produced no frame this tick.
	// Retried within the same tick's budget; never surfaced past the worker.
	ErrTransientDecodeMiss = errors.New("previewcore: transient decode miss")

	// ErrFatalDecoderInit means a decoder could not be created for a source
	// path. The worker that hit this terminates.
	ErrFatalDecoderInit = errors.New("previewcore: fatal decoder init failure")

	// ErrPlaneSizeMismatch means decoded plane byte lengths disagree with
	// the expected size for (format, width, height). The frame is dropped.
	ErrPlaneSizeMismatch = errors.New("previewcore: plane size mismatch")

	// ErrGpuRingFull means the ring writer caught up to the presenter's
	// read slot. The frame being uploaded is dropped, not queued.
	ErrGpuRingFull = errors.New("previewcore: gpu ring full")

	// ErrUnsupportedTextureFeature means the device lacks 16-bit normalized
	// texture formats; callers should fall back to the uint path.
	ErrUnsupportedTextureFeature = errors.New("previewcore: unsupported texture feature")

	// ErrTimelineInvalidOp means a graph command violated an invariant
	// (id collision, missing track, out-of-range placement). The graph is
	// left unmodified.
	ErrTimelineInvalidOp = errors.New("previewcore: invalid timeline operation")

	// ErrAudioDeviceUnavailable means no output device could be opened.
	// Playback continues visually with audio silently disabled.
	ErrAudioDeviceUnavailable = errors.New("previewcore: audio device unavailable")

	// ErrWorkerAbsent means a command was sent to a path whose worker
	// already terminated after ErrFatalDecoderInit.
	ErrWorkerAbsent = errors.New("previewcore: decode worker absent")
)
