package audio

import (
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"github.com/rs/zerolog"
)

// Backend owns the process-wide output device and hands out per-worker sinks
type Backend struct {
	Type BackendType
	Rate beep.SampleRate

	otoCtx *oto.Context
}

// OpenBackend opens the configured backend
// Auto tries speaker, then oto, then falls back to silent; a disabled config is always silent
// Explicit speaker/oto selections return their open error instead of degrading
func OpenBackend(cfg Config, log zerolog.Logger) (*Backend, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	if !cfg.Enabled {
		return &Backend{Type: BackendSilent, Rate: rate}, nil
	}

	want, err := ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	switch want {
	case BackendSilent:
		return &Backend{Type: BackendSilent, Rate: rate}, nil
	case BackendSpeaker:
		return openSpeakerBackend(rate, cfg.Buffer)
	case BackendOto:
		return openOtoBackend(rate, cfg.Buffer)
	}

	// Priority: speaker > oto > silent
	var errs []error
	b, err := openSpeakerBackend(rate, cfg.Buffer)
	if err == nil {
		return b, nil
	}
	errs = append(errs, err)

	b, err = openOtoBackend(rate, cfg.Buffer)
	if err == nil {
		return b, nil
	}
	errs = append(errs, err)

	log.Warn().Err(errors.Join(errs...)).Msg("no audio device, continuing in silent mode")
	return &Backend{Type: BackendSilent, Rate: rate}, nil
}

func openSpeakerBackend(rate beep.SampleRate, buffer time.Duration) (*Backend, error) {
	if err := openSpeaker(rate, buffer); err != nil {
		return nil, fmt.Errorf("%w: speaker: %v", ErrNoAudioBackend, err)
	}
	return &Backend{Type: BackendSpeaker, Rate: speakerSampleRate()}, nil
}

func openOtoBackend(rate beep.SampleRate, buffer time.Duration) (*Backend, error) {
	ctx, err := newOtoContext(int(rate), buffer)
	if err != nil {
		return nil, fmt.Errorf("%w: oto: %v", ErrNoAudioBackend, err)
	}
	return &Backend{Type: BackendOto, Rate: rate, otoCtx: ctx}, nil
}

// NewSink implements SinkFactory
func (b *Backend) NewSink(id int) (Sink, error) {
	switch b.Type {
	case BackendSpeaker:
		return newSpeakerSink(b.Rate), nil
	case BackendOto:
		return newOtoSink(b.otoCtx, b.Rate), nil
	default:
		return silentSink{}, nil
	}
}

// Close releases the device; called after every worker has exited
func (b *Backend) Close() error {
	switch b.Type {
	case BackendSpeaker:
		return closeSpeaker()
	case BackendOto:
		return b.otoCtx.Suspend()
	}
	return nil
}
