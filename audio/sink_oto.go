package audio

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/invaders/constant"
)

// newOtoContext opens the oto device for stereo float32 output
// oto allows one context per process; the backend holds it
func newOtoContext(rate int, buffer time.Duration) (*oto.Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: constant.AudioChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	return ctx, nil
}

// otoSink plays each clip through a dedicated oto player
type otoSink struct {
	ctx    *oto.Context
	rate   beep.SampleRate
	player *oto.Player // current clip, nil when idle
}

func newOtoSink(ctx *oto.Context, rate beep.SampleRate) *otoSink {
	return &otoSink{ctx: ctx, rate: rate}
}

// Play feeds s to a new player and polls until it drains
func (s *otoSink) Play(ctx context.Context, st beep.Streamer, format beep.Format) error {
	src := st
	if format.SampleRate != s.rate {
		src = beep.Resample(constant.AudioResampleQual, format.SampleRate, s.rate, st)
	}

	player := s.ctx.NewPlayer(&pcmReader{src: src})
	s.player = player
	defer func() {
		s.player = nil
		_ = player.Close()
	}()

	player.Play()

	ticker := time.NewTicker(constant.AudioPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				return player.Err()
			}
		}
	}
}

// Stop pauses the current player; Play's poll loop then sees it idle and returns
func (s *otoSink) Stop() {
	if s.player != nil {
		s.player.Pause()
	}
}

// Close stops the current clip; the context is owned by the backend
func (s *otoSink) Close() error {
	s.Stop()
	return nil
}

// pcmReader adapts a beep stream to interleaved stereo float32 LE bytes
type pcmReader struct {
	src beep.Streamer
	buf [][2]float64
}

const otoFrameBytes = constant.AudioChannels * constant.AudioBytesPerSamp

func (r *pcmReader) Read(p []byte) (int, error) {
	frames := len(p) / otoFrameBytes
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	n, ok := r.src.Stream(buf)
	if !ok && n == 0 {
		if err := r.src.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		off := i * otoFrameBytes
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(buf[i][0])))
		binary.LittleEndian.PutUint32(p[off+constant.AudioBytesPerSamp:], math.Float32bits(float32(buf[i][1])))
	}
	return n * otoFrameBytes, nil
}
