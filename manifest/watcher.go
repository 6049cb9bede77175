package manifest

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/invaders/constant"
	"github.com/lixenwraith/invaders/core"
)

// Target is what a reload updates; *audio.Engine satisfies it
type Target interface {
	Registrar
	InvalidateCache(path string)
}

// Watcher re-applies the manifest file to a Target whenever it changes
// The parent directory is watched since editors often replace files by rename.
// Entries removed from the file stay registered until restart
type Watcher struct {
	path     string
	target   Target
	debounce time.Duration
	log      zerolog.Logger
	fsw      *fsnotify.Watcher

	reloads atomic.Int64
	started atomic.Bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWatcher prepares a watch on path; call Start to begin delivering reloads
func NewWatcher(path string, target Target, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     filepath.Clean(path),
		target:   target,
		debounce: constant.ManifestDebounce,
		log:      log.With().Str("component", "manifest").Logger(),
		fsw:      fsw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the event loop
func (w *Watcher) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	core.Go(w.loop)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce bursts of writes from a single save
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")

		case <-fire:
			fire = nil
			_ = w.Reload()
		}
	}
}

// Reload reads the manifest and applies it, flushing decoded clips first
// A broken file leaves the previous registrations in place
func (w *Watcher) Reload() error {
	m, err := Load(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("manifest reload failed")
		return err
	}
	w.target.InvalidateCache("")
	n := m.Apply(w.target)
	w.reloads.Add(1)
	w.log.Info().Int("clips", n).Str("path", w.path).Msg("manifest reloaded")
	return nil
}

// Reloads returns the number of successful reloads
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

// Close stops the loop and releases the OS watch; safe to call more than once
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
		if w.started.Load() {
			<-w.done
		}
	})
	return err
}
