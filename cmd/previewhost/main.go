// Command previewhost is a minimal SDL2 window around the preview
// engine: it opens one video file as a single-clip timeline and drives
// the realtime decode/present/audio pipeline against it, exercising the
// same keyboard surface spec.md §6 assigns to the core.
package main

import (
	"flag"
	"log"
	"runtime"
	"strings"

	astiav "github.com/asticode/go-astiav"
	"github.com/veandco/go-sdl2/sdl"

	"previewcore/internal/audioengine"
	"previewcore/internal/config"
	"previewcore/internal/decode"
	"previewcore/internal/engine"
	"previewcore/internal/gpuring"
	"previewcore/internal/logging"
	"previewcore/internal/timeline"
)

var version string
var build string

func main() {
	debugFlag := flag.Bool("debug", false, "verbose logging")
	debugFFmpeg := flag.Bool("debugstreams", false, "verbose ffmpeg logging")
	srcPath := flag.String("src", "", "path to a video file to load as a single-clip timeline")
	flag.Parse()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log, err := logging.New(*debugFlag)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Infow("starting previewhost", "version", version, "build", build)

	if *debugFFmpeg {
		astiav.SetLogLevel(astiav.LogLevelDebug)
		astiav.SetLogCallback(func(c astiav.Classer, l astiav.LogLevel, fmtStr, msg string) {
			log.Debugw("ffmpeg", "msg", strings.TrimSpace(msg), "level", l)
		})
	}

	if *srcPath == "" {
		log.Fatal("a -src path is required")
	}

	env, err := config.ResolveEnvironment()
	if err != nil {
		log.Fatalw("resolving environment", "error", err)
	}
	hostCfg, err := config.Load(env.SettingsFile)
	if err != nil {
		log.Warnw("config load failed, using defaults", "error", err)
		hostCfg = config.Default()
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		log.Fatalw("sdl init", "error", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("previewcore", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(hostCfg.WindowWidth), int32(hostCfg.WindowHeight), sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		log.Fatalw("sdl create window", "error", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		log.Fatalw("sdl create renderer", "error", err)
	}
	defer renderer.Destroy()

	graph := singleClipGraph(*srcPath)

	dev := gpuring.NewSDLDevice(renderer)
	eng := engine.New(graph, decode.NewAstiavDecoder, dev, log)
	defer eng.Close()

	audio := audioengine.New(hostCfg.AudioSampleRate, hostCfg.AudioChannels, parseAudioFormat(hostCfg.AudioSampleFormat), log)
	eng.Audio = audio

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN {
					handleKey(eng, e.Keysym)
				}
			}
		}

		if _, err := eng.Tick(); err != nil {
			log.Warnw("engine tick", "error", err)
		}

		renderer.SetDrawColor(0, 0, 0, 255)
		renderer.Clear()
		renderer.Present()
		sdl.Delay(16)
	}
}

// handleKey implements the keyboard surface from spec.md §6: Space
// toggles play/pause, K/Ctrl+S splits the selection, Delete/Backspace
// removes it, and 1-4 cycle the presenter's shader debug mode.
func handleKey(eng *engine.Engine, k sdl.Keysym) {
	switch k.Sym {
	case sdl.K_SPACE:
		eng.TogglePlayPause()
	case sdl.K_k:
		if _, err := eng.SplitSelectedClip(); err != nil {
			log.Printf("split: %v", err)
		}
	case sdl.K_s:
		if k.Mod&sdl.KMOD_CTRL != 0 {
			if _, err := eng.SplitSelectedClip(); err != nil {
				log.Printf("split: %v", err)
			}
		}
	case sdl.K_DELETE, sdl.K_BACKSPACE:
		if err := eng.RemoveSelection(); err != nil {
			log.Printf("remove selection: %v", err)
		}
	case sdl.K_1, sdl.K_2, sdl.K_3, sdl.K_4:
		eng.CycleShaderMode()
	}
}

func parseAudioFormat(s string) audioengine.SampleFormat {
	switch s {
	case "i16":
		return audioengine.FormatI16
	default:
		return audioengine.FormatF32
	}
}

// singleClipGraph builds a minimal one-track, one-clip timeline around
// path. A real host resolves this from the project database
// (contracts.AssetCatalog); this stands in for that until a project
// file format is wired up.
func singleClipGraph(path string) *timeline.Graph {
	const assumedDurationFrames = 300 * 60 // placeholder until MediaProber is wired

	g := timeline.NewGraph("preview", 1920, 1080, timeline.Fps{Num: 30, Den: 1}, assumedDurationFrames)
	g.Tracks = []timeline.Track{
		{ID: "v0", Name: "Video 1", Kind: timeline.TrackVideo},
	}
	err := g.ApplyCommand(timeline.InsertNode{
		TrackID: "v0",
		Node: timeline.TimelineNode{
			ID:   timeline.NewNodeID(),
			Kind: timeline.NodeClip,
			Clip: &timeline.Clip{
				AssetID:       path,
				MediaRange:    timeline.FrameRange{Start: 0, Duration: assumedDurationFrames},
				TimelineRange: timeline.FrameRange{Start: 0, Duration: assumedDurationFrames},
				PlaybackRate:  1,
			},
		},
	})
	if err != nil {
		panic(err) // a fresh single-node graph cannot violate InsertNode's invariants
	}
	return g
}
