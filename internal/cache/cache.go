// Package cache implements the frame cache (spec component C5): a
// bounded LRU keyed by (source path, quantized time, width, height) so
// repeated visits to the same scrub position reuse a decode instead of
// re-running the decoder.
package cache

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"previewcore/internal/decode"
	"previewcore/internal/diag"
)

// DefaultCapacity is the frame cache's slot count. 64 recent frames is
// enough to cover a scrub gesture's back-and-forth without holding more
// decoded pixel data resident than a single timeline view needs.
const DefaultCapacity = 64

// Key identifies a cached decode. TimeBucket quantizes media seconds to
// tenths of a second so nearby scrub positions share a cache entry
// instead of missing on floating point jitter.
type Key struct {
	Path       string
	TimeBucket int64
	Width      int
	Height     int
}

// BucketTime quantizes a media time in seconds to Key's tenth-of-a-second
// resolution.
func BucketTime(mediaSec float64) int64 {
	return int64(math.Round(mediaSec * 10))
}

// FrameCache is a thread-safe, bounded, least-recently-used cache of
// decoded frames.
type FrameCache struct {
	lru *lru.Cache[Key, *decode.VideoFrame]
}

// New builds a frame cache with the given slot capacity.
func New(capacity int) (*FrameCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[Key, *decode.VideoFrame](capacity)
	if err != nil {
		return nil, err
	}
	return &FrameCache{lru: c}, nil
}

// Get looks up the frame decoded at (path, mediaSec, width, height).
func (c *FrameCache) Get(path string, mediaSec float64, width, height int) (*decode.VideoFrame, bool) {
	key := Key{Path: path, TimeBucket: BucketTime(mediaSec), Width: width, Height: height}
	frame, ok := c.lru.Get(key)
	if ok {
		diag.CacheHits.Inc()
	} else {
		diag.CacheMisses.Inc()
	}
	return frame, ok
}

// Put stores frame under the key derived from (path, mediaSec). Evicts
// the least recently used entry if the cache is at capacity.
func (c *FrameCache) Put(path string, mediaSec float64, frame *decode.VideoFrame) {
	key := Key{Path: path, TimeBucket: BucketTime(mediaSec), Width: frame.Width, Height: frame.Height}
	c.lru.Add(key, frame)
}

// Len returns the number of frames currently cached.
func (c *FrameCache) Len() int { return c.lru.Len() }

// Purge discards every cached entry for path, used when a source is
// retired from the timeline's active window.
func (c *FrameCache) Purge(path string) {
	for _, key := range c.lru.Keys() {
		if key.Path == path {
			c.lru.Remove(key)
		}
	}
}
