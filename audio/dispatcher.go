package audio

import (
	"github.com/rs/zerolog"

	"github.com/lixenwraith/invaders/constant"
)

const (
	// workerQueueSize fits one claimed Play plus one coalesced StopAll,
	// so dispatcher sends into a worker inbox never block
	workerQueueSize = constant.AudioWorkerQueueSize

	// decodeMsAlpha weights the decode-time moving average
	decodeMsAlpha = 0.2
)

// dispatcher routes requests from the single inbound queue to workers
// All fields are owned by the run goroutine after start
type dispatcher struct {
	inbox   <-chan request
	workers []*worker
	mode    StopMode
	log     zerolog.Logger
	stats   *counters
	done    chan struct{}
}

func newDispatcher(inbox <-chan request, workers []*worker, mode StopMode, stats *counters, log zerolog.Logger) *dispatcher {
	return &dispatcher{
		inbox:   inbox,
		workers: workers,
		mode:    mode,
		log:     log,
		stats:   stats,
		done:    make(chan struct{}),
	}
}

// run drains the inbound queue in arrival order until it is closed,
// then closes every worker queue and joins the workers
func (d *dispatcher) run() {
	defer close(d.done)

	for req := range d.inbox {
		d.handle(req)
	}

	d.log.Debug().Int("workers", len(d.workers)).Msg("inbound queue closed, draining workers")
	for _, w := range d.workers {
		close(w.inbox)
	}
	for _, w := range d.workers {
		<-w.done
	}
}

func (d *dispatcher) handle(req request) {
	switch req.cmd.Kind {
	case CmdPlay:
		out := d.route(req.cmd)
		if req.reply != nil {
			req.reply <- out
		}
	case CmdStopAll:
		d.broadcastStop(req.cmd)
	}
}

// route hands cmd to the lowest-indexed idle worker, or drops it
func (d *dispatcher) route(cmd PlaybackCommand) Outcome {
	for i, w := range d.workers {
		if !w.claim(cmd.Clip) {
			continue
		}
		w.inbox <- cmd
		return Outcome{ID: cmd.ID, Worker: i}
	}

	d.stats.dropped.Add(1)
	d.log.Debug().Str("clip", cmd.Clip).Stringer("req", cmd.ID).Msg("pool exhausted, play dropped")
	return Outcome{ID: cmd.ID, Worker: -1, Dropped: true}
}

// broadcastStop sends StopAll to every worker regardless of busy state
// In cooperative mode it queues behind an in-flight clip and cannot shorten it
func (d *dispatcher) broadcastStop(cmd PlaybackCommand) {
	for _, w := range d.workers {
		if w.stopPending.CompareAndSwap(false, true) {
			w.inbox <- cmd
		}
		if d.mode == StopPreemptive {
			w.interrupt()
		}
	}
	d.log.Debug().Stringer("req", cmd.ID).Str("mode", string(d.mode)).Msg("stop broadcast")
}
