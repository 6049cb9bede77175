package audio

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/invaders/status"
)

// Metric keys published into the status registry
const (
	MetricRequests    = "audio.requests"
	MetricPlayed      = "audio.played"
	MetricDropped     = "audio.dropped"
	MetricFailed      = "audio.failed"
	MetricRejected    = "audio.rejected"
	MetricStopped     = "audio.stopped"
	MetricInterrupted = "audio.interrupted"
	MetricDecodeMs    = "audio.decode_ms"
	MetricBackend     = "audio.backend"
)

// WorkerBusyKey is the status key of a worker's busy flag
func WorkerBusyKey(id int) string {
	return fmt.Sprintf("audio.worker.%d.busy", id)
}

// WorkerClipKey is the status key of the clip a worker is assigned
func WorkerClipKey(id int) string {
	return fmt.Sprintf("audio.worker.%d.clip", id)
}

// Stats is a point-in-time copy of the service counters
type Stats struct {
	Requests    int64 // play requests accepted onto the inbound queue
	Played      int64 // clips that ran to completion
	Dropped     int64 // plays discarded with every worker busy
	Failed      int64 // clips skipped on decode or sink failure
	Rejected    int64 // enqueue attempts refused (queue full)
	Stopped     int64 // StopAll commands executed by workers
	Interrupted int64 // clips cut short by preemptive stop
}

// counters caches metric pointers so hot paths skip the map lookup
type counters struct {
	requests    *atomic.Int64
	played      *atomic.Int64
	dropped     *atomic.Int64
	failed      *atomic.Int64
	rejected    *atomic.Int64
	stopped     *atomic.Int64
	interrupted *atomic.Int64
	decodeMs    *status.AtomicFloat
}

func newCounters(reg *status.Registry) *counters {
	return &counters{
		requests:    reg.Ints.Get(MetricRequests),
		played:      reg.Ints.Get(MetricPlayed),
		dropped:     reg.Ints.Get(MetricDropped),
		failed:      reg.Ints.Get(MetricFailed),
		rejected:    reg.Ints.Get(MetricRejected),
		stopped:     reg.Ints.Get(MetricStopped),
		interrupted: reg.Ints.Get(MetricInterrupted),
		decodeMs:    reg.Floats.Get(MetricDecodeMs),
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Requests:    c.requests.Load(),
		Played:      c.played.Load(),
		Dropped:     c.dropped.Load(),
		Failed:      c.failed.Load(),
		Rejected:    c.rejected.Load(),
		Stopped:     c.stopped.Load(),
		Interrupted: c.interrupted.Load(),
	}
}
