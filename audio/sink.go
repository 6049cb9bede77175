package audio

import (
	"context"

	"github.com/gopxl/beep"
)

// Sink plays decoded streams on an output device
// A sink belongs to exactly one worker goroutine; no method is ever called concurrently
type Sink interface {
	// Play blocks until s is exhausted or ctx is cancelled
	// On cancellation the stream is halted and ctx.Err() returned
	Play(ctx context.Context, s beep.Streamer, format beep.Format) error

	// Stop halts whatever the sink is playing; no-op when idle
	Stop()

	// Close releases per-sink resources; the sink is not used afterwards
	Close() error
}

// SinkFactory creates the sink owned by worker id
type SinkFactory func(id int) (Sink, error)
