package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/invaders/status"
)

// worker owns one sink and executes its private queue one command at a time
//
// Busy flag handoff: the dispatcher is the only goroutine that sets busy
// (false->true, by claim when it assigns a Play) and this worker is the
// only goroutine that clears it (true->false, after the clip ends or fails).
// Never add a third writer: routing relies on a claimed worker staying busy
// until its own release. The flag is private to the worker; busyMetric and
// clip mirror it into the status registry, which may be shared
type worker struct {
	id         int
	inbox      chan PlaybackCommand
	busy       atomic.Bool
	busyMetric *atomic.Bool
	clip       *status.AtomicString
	sink   Sink
	source Source
	mode   StopMode
	log    zerolog.Logger
	stats  *counters

	// stopPending coalesces StopAll: set by the dispatcher before enqueueing,
	// cleared here on dequeue, so at most one StopAll sits in the inbox
	stopPending atomic.Bool

	// cancel interrupts the current play; only used in preemptive mode
	mu     sync.Mutex
	cancel context.CancelFunc

	done chan struct{}
}

func newWorker(id int, sink Sink, source Source, mode StopMode, reg *status.Registry, stats *counters, log zerolog.Logger) *worker {
	return &worker{
		id:         id,
		inbox:      make(chan PlaybackCommand, workerQueueSize),
		busyMetric: reg.Bools.Get(WorkerBusyKey(id)),
		clip:       reg.Strings.Get(WorkerClipKey(id)),
		sink:       sink,
		source:     source,
		mode:       mode,
		log:        log.With().Int("worker", id).Logger(),
		stats:      stats,
		done:       make(chan struct{}),
	}
}

// run processes the inbox until it is closed and drained
func (w *worker) run() {
	defer close(w.done)
	defer func() {
		if err := w.sink.Close(); err != nil {
			w.log.Warn().Err(err).Msg("sink close failed")
		}
	}()

	for cmd := range w.inbox {
		switch cmd.Kind {
		case CmdPlay:
			w.play(cmd)
		case CmdStopAll:
			w.stopPending.Store(false)
			w.sink.Stop()
			w.stats.stopped.Add(1)
		}
	}
	w.log.Debug().Msg("worker exited")
}

// play runs one clip and always releases the busy flag, whatever happens inside
func (w *worker) play(cmd PlaybackCommand) {
	defer w.release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Publish cancel before checking stopPending; the dispatcher sets
	// stopPending before calling interrupt, so one of the two sides sees the other
	w.setCancel(cancel)
	defer w.setCancel(nil)

	if w.mode == StopPreemptive && w.stopPending.Load() {
		w.stats.interrupted.Add(1)
		w.log.Debug().Str("clip", cmd.Clip).Stringer("req", cmd.ID).Msg("play skipped by pending stop")
		return
	}

	log := w.log.With().Str("clip", cmd.Clip).Stringer("req", cmd.ID).Logger()
	log.Debug().Str("path", cmd.Path).Msg("play start")

	err := w.playClip(ctx, cmd)
	switch {
	case err == nil:
		w.stats.played.Add(1)
		log.Debug().Msg("play done")
	case errors.Is(err, context.Canceled):
		w.stats.interrupted.Add(1)
		log.Debug().Msg("play interrupted")
	default:
		w.stats.failed.Add(1)
		log.Warn().Err(err).Str("path", cmd.Path).Msg("clip skipped")
	}
}

// playClip decodes and blocks in the sink; panics become errors so a bad
// file or decoder bug cannot take the worker down
func (w *worker) playClip(ctx context.Context, cmd PlaybackCommand) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrDecodeFailure, r)
		}
	}()

	start := time.Now()
	buf, err := w.source.Load(cmd.Path)
	if err != nil {
		return err
	}
	w.stats.decodeMs.Smooth(float64(time.Since(start).Microseconds())/1000, decodeMsAlpha)

	if err := ctx.Err(); err != nil {
		return err
	}
	return w.sink.Play(ctx, buf.Streamer(0, buf.Len()), buf.Format())
}

// claim marks an idle worker busy for clip; false if it was already busy
// Dispatcher only
func (w *worker) claim(clip string) bool {
	if !w.busy.CompareAndSwap(false, true) {
		return false
	}
	w.clip.Store(clip)
	w.busyMetric.Store(true)
	return true
}

// release clears the metrics before the flag so a later claim's metrics are not overwritten
func (w *worker) release() {
	w.clip.Clear()
	w.busyMetric.Store(false)
	w.busy.Store(false)
}

func (w *worker) setCancel(cancel context.CancelFunc) {
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
}

// interrupt cancels the in-flight play, if any; safe from any goroutine
// It never touches the sink, which stays owned by the worker goroutine
func (w *worker) interrupt() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
}

// isBusy reads the routing flag
func (w *worker) isBusy() bool {
	return w.busy.Load()
}
