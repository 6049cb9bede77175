package synth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/invaders/constant"
)

// ErrUnknownEffect is returned for names with no recipe
var ErrUnknownEffect = errors.New("unknown effect")

type recipe func(rate beep.SampleRate) beep.Streamer

var recipes = map[string]recipe{
	"explosion": explosion,
	"lose":      lose,
	"move":      move,
	"pew":       pew,
	"startup":   startup,
	"win":       win,
}

// Names returns every effect with a recipe, sorted
func Names() []string {
	names := make([]string, 0, len(recipes))
	for name := range recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Effect returns a fresh streamer for the named effect
func Effect(name string, rate beep.SampleRate) (beep.Streamer, error) {
	r, ok := recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	return r(rate), nil
}

// pew is a descending square sweep
func pew(rate beep.SampleRate) beep.Streamer {
	const steps = 8
	step := constant.PewDuration / steps
	parts := make([]beep.Streamer, 0, steps)
	for i := 0; i < steps; i++ {
		freq := 1400.0 - float64(i)*130.0
		parts = append(parts, NewOscillator(freq, step, WaveSquare, rate))
	}
	sweep := NewEnvelope(beep.Seq(parts...), constant.PewDuration, constant.PewAttack, constant.PewRelease, rate)
	return Volume(sweep, 0.4)
}

// move is a short low blip
func move(rate beep.SampleRate) beep.Streamer {
	return Volume(Tone(110, WaveSquare, constant.MoveDuration, constant.MoveAttack, constant.MoveRelease, rate), 0.5)
}

// explosion is decaying noise over a low rumble
func explosion(rate beep.SampleRate) beep.Streamer {
	d := constant.ExplosionDuration
	noise := Tone(0, WaveNoise, d, constant.ExplosionAttack, constant.ExplosionRelease, rate)
	rumble := Tone(55, WaveSaw, d, constant.ExplosionAttack, constant.ExplosionRelease, rate)
	return beep.Take(rate.N(d), beep.Mix(Volume(noise, 0.6), Volume(rumble, 0.3)))
}

// startup is a rising C major arpeggio
func startup(rate beep.SampleRate) beep.Streamer {
	return jingle(rate, WaveSquare, 0.35, 523.25, 659.25, 783.99, 1046.50)
}

// win is a bright rising arpeggio
func win(rate beep.SampleRate) beep.Streamer {
	return jingle(rate, WaveSine, 0.6, 783.99, 1046.50, 1318.51, 1567.98)
}

// lose is a falling minor line
func lose(rate beep.SampleRate) beep.Streamer {
	return jingle(rate, WaveSaw, 0.4, 392.00, 329.63, 261.63, 220.00)
}

func jingle(rate beep.SampleRate, wave WaveType, vol float64, freqs ...float64) beep.Streamer {
	notes := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		notes = append(notes, Tone(f, wave, constant.NoteDuration, constant.NoteAttack, constant.NoteRelease, rate))
	}
	return Volume(beep.Seq(notes...), vol)
}

// Format returns the stereo 16-bit format clips are written in
func Format(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: constant.AudioChannels, Precision: 2}
}

// WriteWAV encodes s to path, creating parent directories
func WriteWAV(path string, s beep.Streamer, format beep.Format) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return wav.Encode(f, s, format)
}

// Generate writes <dir>/<name>.wav for each named effect, or all when names is empty
// Returns the written paths in order
func Generate(dir string, rate beep.SampleRate, names ...string) ([]string, error) {
	if len(names) == 0 {
		names = Names()
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		s, err := Effect(name, rate)
		if err != nil {
			return paths, err
		}
		p := filepath.Join(dir, name+".wav")
		if err := WriteWAV(p, s, Format(rate)); err != nil {
			return paths, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Duration returns the nominal length of the named effect
func Duration(name string) (time.Duration, error) {
	switch name {
	case "pew":
		return constant.PewDuration, nil
	case "move":
		return constant.MoveDuration, nil
	case "explosion":
		return constant.ExplosionDuration, nil
	case "startup", "win", "lose":
		return 4 * constant.NoteDuration, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
}
