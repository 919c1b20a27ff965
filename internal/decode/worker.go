package decode

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"previewcore/internal/diag"
)

// PrefetchBudgetPerTick bounds how many extra decode attempts a worker
// makes on the same target time before giving up for this tick, letting
// hardware decode pipelines that need several feeds before they emit a
// picture catch up. Matches the original implementation's
// PREFETCH_BUDGET_PER_TICK constant exactly.
const PrefetchBudgetPerTick = 6

const (
	activeTickSleep = 4 * time.Millisecond
	pausedTickSleep = 6 * time.Millisecond
)

// Tune the failure model's miss-threshold policy (spec.md §4.3): if a
// worker racks up missThreshold per-frame decode errors inside
// missWindow, it re-creates its decoder once and keeps going.
const (
	missThreshold = 30
	missWindow    = 2 * time.Second
)

// Mode mirrors spec.md's EngineState.mode as seen by a single worker.
type Mode int

const (
	ModePaused Mode = iota
	ModePlaying
	ModeSeeking
	ModeScrubbing
)

// Command is the worker's command-channel payload.
type Command interface{ isCommand() }

type CmdPlay struct {
	StartPts float64
	Rate     float64
}
type CmdSeek struct{ TargetPts float64 }
type CmdScrub struct{ TargetPts float64 }
type CmdPause struct{}
type CmdStop struct{}

func (CmdPlay) isCommand() {}
func (CmdSeek) isCommand() {}
func (CmdScrub) isCommand() {}
func (CmdPause) isCommand() {}
func (CmdStop) isCommand() {}

// commandQueue is an unbounded, non-blocking single-producer-multiple
// fifo, matching spec.md §5's requirement that command send never
// blocks the UI thread.
type commandQueue struct {
	mu      sync.Mutex
	pending []Command
}

func (q *commandQueue) push(c Command) {
	q.mu.Lock()
	q.pending = append(q.pending, c)
	q.mu.Unlock()
}

func (q *commandQueue) drain() []Command {
	q.mu.Lock()
	out := q.pending
	q.pending = nil
	q.mu.Unlock()
	return out
}

// Worker owns one decoder for one source path: a dedicated goroutine
// consuming commands and publishing into a single-slot mailbox that the
// main thread drains on every frame tick.
type Worker struct {
	path    string
	decoder Decoder
	log     *zap.SugaredLogger
	factory DecoderFactory
	cfg     DecoderConfig

	cmds commandQueue
	slot atomic.Pointer[VideoFrame]

	stop chan struct{}
	done chan struct{}

	mode       Mode
	rate       float64
	anchorPts  float64
	anchorWall time.Time

	missCount      int
	missWindowFrom time.Time
	recreatedOnce  bool

	// InitErr is set if decoder construction failed; the worker never
	// starts its loop in that case (spec.md: FatalDecoderInit).
	InitErr error
}

// NewWorker creates the decoder for path and starts its loop goroutine.
// If decoder creation fails, InitErr is set and the worker is otherwise
// inert (Send/TakeLatest become no-ops); callers should check InitErr
// once and then drop the worker, per the failure model.
func NewWorker(path string, factory DecoderFactory, cfg DecoderConfig, log *zap.SugaredLogger) *Worker {
	w := &Worker{
		path:    path,
		factory: factory,
		cfg:     cfg,
		log:     log,
		rate:    1,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	dec, err := factory(path, cfg)
	if err != nil {
		w.InitErr = err
		log.Errorw("decode worker: fatal decoder init", "path", path, "error", err)
		close(w.done)
		return w
	}
	w.decoder = dec

	go w.loop()
	return w
}

// Send enqueues a command without blocking.
func (w *Worker) Send(c Command) {
	if w.InitErr != nil {
		return
	}
	w.cmds.push(c)
}

// TakeLatest atomically swaps out the latest published frame, leaving
// the slot empty. Returns nil if nothing new has been published since
// the last take.
func (w *Worker) TakeLatest() *VideoFrame {
	return w.slot.Swap(nil)
}

// Stop drains the worker with a best-effort 250ms join ceiling, per
// spec.md §5's cancellation model.
func (w *Worker) Stop() {
	if w.InitErr != nil {
		return
	}
	close(w.stop)
	select {
	case <-w.done:
	case <-time.After(250 * time.Millisecond):
		w.log.Warnw("decode worker: stop join exceeded 250ms ceiling", "path", w.path)
	}
}

func (w *Worker) loop() {
	defer close(w.done)
	defer w.decoder.Close()

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		for _, cmd := range w.cmds.drain() {
			w.applyCommand(cmd)
			if _, isStop := cmd.(CmdStop); isStop {
				return
			}
		}

		switch w.mode {
		case ModePlaying:
			dt := time.Since(w.anchorWall).Seconds()
			target := w.anchorPts + dt*w.rate
			w.tick(target)
			time.Sleep(activeTickSleep)
		case ModeSeeking, ModeScrubbing:
			w.tick(w.anchorPts)
			time.Sleep(activeTickSleep)
		case ModePaused:
			time.Sleep(pausedTickSleep)
		}
	}
}

func (w *Worker) applyCommand(cmd Command) {
	switch c := cmd.(type) {
	case CmdPlay:
		if w.mode != ModePlaying {
			w.anchorPts = c.StartPts
			w.anchorWall = time.Now()
			w.mode = ModePlaying
		}
		w.rate = c.Rate
	case CmdSeek:
		w.mode = ModeSeeking
		w.anchorPts = c.TargetPts
	case CmdScrub:
		w.mode = ModeScrubbing
		w.anchorPts = c.TargetPts
	case CmdPause:
		w.mode = ModePaused
	case CmdStop:
		// handled by caller (loop returns)
	}
}

// tick performs up to 1+PrefetchBudgetPerTick decode attempts at target,
// publishing the first successful frame. A failed call never blocks the
// loop past this tick's budget.
func (w *Worker) tick(target float64) {
	attempts := 1 + PrefetchBudgetPerTick
	for i := 0; i < attempts; i++ {
		frame, err := w.decoder.DecodeFrame(target)
		if err != nil {
			w.recordMiss()
			continue
		}
		if frame == nil {
			diag.DecodeMisses.Inc()
			continue
		}
		w.slot.Store(frame)
		return
	}
}

func (w *Worker) recordMiss() {
	now := time.Now()
	if w.missWindowFrom.IsZero() || now.Sub(w.missWindowFrom) > missWindow {
		w.missWindowFrom = now
		w.missCount = 0
	}
	w.missCount++
	diag.DecodeMisses.Inc()

	if w.missCount >= missThreshold && !w.recreatedOnce {
		w.recreatedOnce = true
		w.log.Warnw("decode worker: recreating decoder after sustained misses", "path", w.path, "misses", w.missCount)
		diag.WorkerRestarts.Inc()
		newDec, err := w.factory(w.path, w.cfg)
		if err != nil {
			w.log.Errorw("decode worker: decoder recreation failed", "path", w.path, "error", err)
			return
		}
		w.decoder.Close()
		w.decoder = newDec
		w.missCount = 0
	}
}
