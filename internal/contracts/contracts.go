// Package contracts declares the engine's external collaborators
// (spec.md §6): subsystems the core depends on but never implements.
// Media probing, offline export, the project database and the
// background job runtime all live outside this repository's scope;
// these interfaces exist so call sites can be written and tested
// against a fake without waiting on a real implementation.
package contracts

import "context"

// MediaKind tags what a probed source turned out to be.
type MediaKind int

const (
	KindVideo MediaKind = iota
	KindImage
	KindAudio
)

// MediaInfo is what a media probe returns for a source path.
type MediaInfo struct {
	Width, Height  int
	DurationSec    float64
	FPSNum, FPSDen uint32
	AudioChannels  int
	SampleRate     int
	Kind           MediaKind
}

// MediaProber inspects a source without decoding it frame by frame.
// Real implementations typically shell out to or link ffprobe.
type MediaProber interface {
	Probe(ctx context.Context, path string) (MediaInfo, error)
}

// ExportSegmentKind tags one segment of an offline export plan.
type ExportSegmentKind int

const (
	SegmentVideo ExportSegmentKind = iota
	SegmentImage
	SegmentBlack
)

// ExportSegment is one entry in an export plan's videoSegments list.
type ExportSegment struct {
	Kind        ExportSegmentKind
	Path        string // unused for SegmentBlack
	StartSec    float64
	DurationSec float64
}

// ExportAudioClip mirrors ActiveAudioClip's shape for the offline
// export path, which mixes independently of the realtime engine.
type ExportAudioClip struct {
	StartSec    float64
	SourcePath  string
	DurationSec float64
}

// ExportPlan is the declarative contract handed to the encoder
// subprocess: what to render, not how.
type ExportPlan struct {
	VideoSegments []ExportSegment
	AudioClips    []ExportAudioClip
	Codec         string
	CRF           int
	Preset        string
	OutputPath    string
}

// ExportProgress reports encoder progress as a single scalar and an
// optional human-readable ETA.
type ExportProgress struct {
	Fraction float64 // 0..1
	ETA      string
}

// Encoder runs an ExportPlan out of process and streams progress back.
// The core never blocks on this; UI surfaces progress asynchronously.
type Encoder interface {
	Export(ctx context.Context, plan ExportPlan, progress chan<- ExportProgress) error
}

// AssetRecord is one row the project database would hand back for an
// asset referenced from the timeline graph.
type AssetRecord struct {
	AssetID          string
	Kind             MediaKind
	SrcPath          string
	Width, Height    int
	DurationInFrames int64
	FPS              Fps
}

// Fps mirrors timeline.Fps's shape without importing the timeline
// package, keeping this boundary interface free of a dependency on
// core engine internals.
type Fps struct{ Num, Den uint32 }

// AssetCatalog is the persisted asset/project database. The core reads
// nothing from it directly — it only ever consumes the in-memory
// timeline graph — but a host process needs this contract to resolve
// assetId references when opening a project.
type AssetCatalog interface {
	Asset(ctx context.Context, assetID string) (AssetRecord, error)
	ListAssets(ctx context.Context) ([]AssetRecord, error)
}

// JobKind tags a background job's purpose.
type JobKind int

const (
	JobWaveform JobKind = iota
	JobThumbnail
	JobProxy
)

// JobHandle is an opaque reference to a submitted background job.
type JobHandle string

// JobRunner submits and tracks background generation work (waveforms,
// thumbnails, proxies) the UI polls for; never on this engine's hot
// decode/present path.
type JobRunner interface {
	Submit(ctx context.Context, kind JobKind, assetID string) (JobHandle, error)
	Status(ctx context.Context, handle JobHandle) (done bool, err error)
}

// AudioDeviceInfo is what opening the default output device reports.
type AudioDeviceInfo struct {
	SampleRate int
	Channels   int
}

// AudioDevice is the output-device boundary for audio playback. Nothing
// in this repository implements it: audioengine.Engine opens its oto
// output directly, has no Info or Close method, and its Start also takes
// the active clip list.
type AudioDevice interface {
	Info() AudioDeviceInfo
	Start(atSec float64)
	Pause(atSec float64)
	Seek(atSec float64)
	Close() error
}
