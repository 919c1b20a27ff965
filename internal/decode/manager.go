package decode

import (
	"math"
	"sync"

	"go.uber.org/zap"
)

// seekBucket quantizes a media time to the resolution spec.md uses to
// debounce repeated seeks to the same neighborhood while scrubbing.
func seekBucket(mediaSec, fps float64) int64 {
	if fps <= 0 {
		fps = 30
	}
	return int64(math.Round(mediaSec * fps))
}

// dedupeKey identifies a command that would be redundant with the last
// one sent for a given path: (mode, path, seekBucket). Playing carries
// no bucket since it's driven by wall-clock anchoring, not a point.
type dedupeKey struct {
	mode   Mode
	path   string
	bucket int64
}

// Manager is the registry of decode workers keyed by source path
// (spec component C4). One worker per distinct path exists at a time;
// callers route commands and drain frames through here rather than
// holding worker references directly.
type Manager struct {
	mu      sync.Mutex
	workers map[string]*Worker
	lastKey map[string]dedupeKey
	factory DecoderFactory
	cfg     DecoderConfig
	log     *zap.SugaredLogger
}

// NewManager builds a registry that creates workers via factory.
func NewManager(factory DecoderFactory, cfg DecoderConfig, log *zap.SugaredLogger) *Manager {
	return &Manager{
		workers: make(map[string]*Worker),
		lastKey: make(map[string]dedupeKey),
		factory: factory,
		cfg:     cfg,
		log:     log,
	}
}

// ensureWorker returns the worker for path, creating one if absent. The
// bool return is false if the worker's decoder failed to initialize
// (spec.md's FatalDecoderInit); the manager evicts such workers so a
// later call retries fresh.
func (m *Manager) ensureWorker(path string) (*Worker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.workers[path]; ok {
		return w, true
	}
	w := NewWorker(path, m.factory, m.cfg, m.log)
	if w.InitErr != nil {
		return nil, false
	}
	m.workers[path] = w
	return w, true
}

// Dispatch routes a command to the worker for path, creating the worker
// on demand and applying the (mode, path, seekBucket) debounce rule:
// a command identical in kind/path/bucket to the last one sent for this
// path is dropped rather than re-enqueued.
func (m *Manager) Dispatch(path string, mode Mode, fps float64, cmd Command) bool {
	w, ok := m.ensureWorker(path)
	if !ok {
		return false
	}

	bucket := int64(0)
	if mode == ModeSeeking || mode == ModeScrubbing {
		if s, ok := cmd.(CmdSeek); ok {
			bucket = seekBucket(s.TargetPts, fps)
		} else if s, ok := cmd.(CmdScrub); ok {
			bucket = seekBucket(s.TargetPts, fps)
		}
	}
	key := dedupeKey{mode: mode, path: path, bucket: bucket}

	m.mu.Lock()
	if m.lastKey[path] == key {
		m.mu.Unlock()
		return true
	}
	m.lastKey[path] = key
	m.mu.Unlock()

	w.Send(cmd)
	return true
}

// TakeLatest drains the most recent decoded frame for path, if any.
func (m *Manager) TakeLatest(path string) (*VideoFrame, bool) {
	m.mu.Lock()
	w, ok := m.workers[path]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	f := w.TakeLatest()
	if f == nil {
		return nil, false
	}
	return f, true
}

// Retire stops and removes the worker for path, if one exists. Used
// when a source falls out of the timeline's active window.
func (m *Manager) Retire(path string) {
	m.mu.Lock()
	w, ok := m.workers[path]
	if ok {
		delete(m.workers, path)
		delete(m.lastKey, path)
	}
	m.mu.Unlock()
	if ok {
		w.Stop()
	}
}

// RetireAllExcept stops and removes every worker whose path is not in
// keep, so sources outside the active set get torn down (spec.md §4.4).
func (m *Manager) RetireAllExcept(keep map[string]struct{}) {
	m.mu.Lock()
	var toStop []*Worker
	for path, w := range m.workers {
		if _, ok := keep[path]; !ok {
			toStop = append(toStop, w)
			delete(m.workers, path)
			delete(m.lastKey, path)
		}
	}
	m.mu.Unlock()
	for _, w := range toStop {
		w.Stop()
	}
}

// Close stops every worker in the registry.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Worker, 0, len(m.workers))
	for path, w := range m.workers {
		all = append(all, w)
		delete(m.workers, path)
		delete(m.lastKey, path)
	}
	m.mu.Unlock()
	for _, w := range all {
		w.Stop()
	}
}
