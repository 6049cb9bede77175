package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/invaders/constant"
)

// speaker is process-global: one device, one internal mixer
// Each worker sink adds its own Ctrl-wrapped stream to that mixer
var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
	speakerOpen bool
)

// openSpeaker initializes the beep speaker once per process
func openSpeaker(sr beep.SampleRate, buffer time.Duration) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerOpen {
		return nil
	}

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return err
	}
	speakerRate = sr
	speakerOpen = true
	return nil
}

// speakerSampleRate returns the rate the device was opened with
func speakerSampleRate() beep.SampleRate {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	return speakerRate
}

// closeSpeaker stops every stream and releases the device
func closeSpeaker() error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if !speakerOpen {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	speakerOpen = false
	return nil
}

// speakerSink plays through the shared beep speaker
type speakerSink struct {
	rate beep.SampleRate
	ctrl *beep.Ctrl // current clip, nil when idle
}

func newSpeakerSink(rate beep.SampleRate) *speakerSink {
	return &speakerSink{rate: rate}
}

// Play queues s on the speaker and waits for the trailing callback
func (s *speakerSink) Play(ctx context.Context, st beep.Streamer, format beep.Format) error {
	src := st
	if format.SampleRate != s.rate {
		src = beep.Resample(constant.AudioResampleQual, format.SampleRate, s.rate, st)
	}

	done := make(chan struct{})
	ctrl := &beep.Ctrl{Streamer: src}
	s.ctrl = ctrl
	defer func() { s.ctrl = nil }()

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		halt(ctrl)
		return ctx.Err()
	}
}

// Stop halts the current clip, if any
func (s *speakerSink) Stop() {
	if s.ctrl != nil {
		halt(s.ctrl)
	}
}

// Close stops the current clip; the device itself is closed by the backend
func (s *speakerSink) Close() error {
	s.Stop()
	return nil
}

// halt detaches the stream under the speaker lock
// A Ctrl with a nil Streamer reports drained, so the Seq moves on to its callback
func halt(ctrl *beep.Ctrl) {
	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}
