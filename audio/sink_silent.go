package audio

import (
	"context"
	"time"

	"github.com/gopxl/beep"
)

// silentSink plays nothing but holds the worker for the clip's duration,
// keeping pool occupancy and drop behaviour identical to a real device
type silentSink struct{}

// Play waits out the stream's duration or ctx
func (silentSink) Play(ctx context.Context, st beep.Streamer, format beep.Format) error {
	d := streamDuration(st, format)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (silentSink) Stop() {}

func (silentSink) Close() error { return nil }

// streamDuration measures the remaining length of st
// Seekable streams answer from Len; anything else is drained and counted
func streamDuration(st beep.Streamer, format beep.Format) time.Duration {
	if format.SampleRate <= 0 {
		return 0
	}
	if ss, ok := st.(beep.StreamSeeker); ok {
		return format.SampleRate.D(ss.Len() - ss.Position())
	}

	var total int
	buf := make([][2]float64, 512)
	for {
		n, ok := st.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	return format.SampleRate.D(total)
}
