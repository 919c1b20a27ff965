// Package config loads and persists the preview host's settings,
// following the teacher's atomic write-to-temp-then-rename pattern
// (config.go's SaveConfig/UpdateCameraGeometry) adapted from a
// per-camera window layout file to this engine's decode/GPU/audio
// tuning knobs.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v2"
)

const appName = "previewcore"

// Environment holds the resolved filesystem locations a host process
// needs, mirroring the teacher's Environment struct.
type Environment struct {
	ConfigDir    string
	SettingsFile string
	HomeDir      string
	TmpDir       string
	OS           string
}

// ResolveEnvironment computes the standard config locations under the
// user's home directory.
func ResolveEnvironment() (Environment, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Environment{}, err
	}
	configDir := filepath.Join(home, ".config", appName)
	return Environment{
		ConfigDir:    configDir,
		SettingsFile: filepath.Join(configDir, "settings.yml"),
		HomeDir:      home,
		TmpDir:       os.TempDir(),
		OS:           runtime.GOOS,
	}, nil
}

// HostConfig is the preview host's persisted settings: decode,
// GPU ring, and audio tuning, plus last-opened-project bookkeeping.
type HostConfig struct {
	HardwareAcceleration bool     `yaml:"hardware_acceleration,omitempty"`
	PreferredPixelFormat string   `yaml:"preferred_pixel_format,omitempty"` // "nv12" | "p010"
	FrameCacheCapacity   int      `yaml:"frame_cache_capacity,omitempty"`
	AudioSampleRate      int      `yaml:"audio_sample_rate,omitempty"`
	AudioChannels        int      `yaml:"audio_channels,omitempty"`
	AudioSampleFormat    string   `yaml:"audio_sample_format,omitempty"` // "f32" | "i16"; oto has no unsigned 16-bit format
	WindowWidth          int      `yaml:"window_width,omitempty"`
	WindowHeight         int      `yaml:"window_height,omitempty"`
	RecentProjects       []string `yaml:"recent_projects,omitempty"`
	Debug                bool     `yaml:"debug,omitempty"`
}

// Default returns the settings a fresh install starts with.
func Default() HostConfig {
	return HostConfig{
		PreferredPixelFormat: "nv12",
		FrameCacheCapacity:   64,
		AudioSampleRate:      48000,
		AudioChannels:        2,
		AudioSampleFormat:    "f32",
		WindowWidth:          1280,
		WindowHeight:         720,
	}
}

var mu sync.Mutex

// Load reads HostConfig from path. A missing file is not an error: it
// returns Default().
func Load(path string) (HostConfig, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return HostConfig{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return HostConfig{}, err
	}
	return cfg, nil
}

// Save writes cfg to path via a write-to-temp-then-rename, so a crash
// mid-write never corrupts the previous settings file.
func Save(path string, cfg HostConfig) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(&cfg); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
