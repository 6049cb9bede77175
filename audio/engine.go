package audio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/invaders/core"
	"github.com/lixenwraith/invaders/status"
)

// Engine is the sound-effect dispatch service: a clip registry, a fixed pool
// of playback workers and the dispatcher between them
// Construct once per process with NewEngine and tear down once with Shutdown
type Engine struct {
	cfg      Config
	registry *ClipRegistry
	status   *status.Registry
	stats    *counters
	log      zerolog.Logger

	backend *Backend // nil when the sink factory was injected
	source  Source

	workers    []*worker
	dispatcher *dispatcher

	// mu guards closed against the inbox close in Shutdown; enqueue holds the read side
	mu     sync.RWMutex
	closed bool
	inbox  chan request
}

// Option customizes NewEngine
type Option func(*engineOptions)

type engineOptions struct {
	log      zerolog.Logger
	sinks    SinkFactory
	source   Source
	status   *status.Registry
	registry *ClipRegistry
}

// WithLogger sets the logger; default is zerolog.Nop()
func WithLogger(log zerolog.Logger) Option {
	return func(o *engineOptions) { o.log = log }
}

// WithSinkFactory bypasses backend detection; the caller owns any device
func WithSinkFactory(f SinkFactory) Option {
	return func(o *engineOptions) { o.sinks = f }
}

// WithSource replaces the default file source (optionally cached per cfg.CacheTTL)
func WithSource(src Source) Option {
	return func(o *engineOptions) { o.source = src }
}

// WithStatus publishes metrics into an existing registry
// Routing never reads the registry, so engines may share one; their worker keys then overlap
func WithStatus(reg *status.Registry) Option {
	return func(o *engineOptions) { o.status = reg }
}

// WithRegistry shares a pre-populated clip registry
func WithRegistry(r *ClipRegistry) Option {
	return func(o *engineOptions) { o.registry = r }
}

// NewEngine validates cfg, opens the output backend and starts cfg.PoolSize
// workers plus the dispatcher
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := engineOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.status == nil {
		o.status = status.NewRegistry()
	}
	if o.registry == nil {
		o.registry = NewClipRegistry()
	}

	e := &Engine{
		cfg:      cfg,
		registry: o.registry,
		status:   o.status,
		stats:    newCounters(o.status),
		log:      o.log.With().Str("component", "audio").Logger(),
		inbox:    make(chan request, cfg.InboxSize),
	}

	e.source = o.source
	if e.source == nil {
		e.source = FileSource{}
		if cfg.CacheTTL > 0 {
			e.source = NewCachedSource(FileSource{}, cfg.CacheTTL)
		}
	}

	sinks := o.sinks
	if sinks == nil {
		backend, err := OpenBackend(cfg, e.log)
		if err != nil {
			return nil, err
		}
		e.backend = backend
		sinks = backend.NewSink
		e.status.Strings.Get(MetricBackend).Store(string(backend.Type))
	} else {
		e.status.Strings.Get(MetricBackend).Store("custom")
	}

	mode := cfg.stopMode()
	e.workers = make([]*worker, 0, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		sink, err := sinks(i)
		if err != nil {
			e.abortStart()
			return nil, fmt.Errorf("create sink for worker %d: %w", i, err)
		}
		e.workers = append(e.workers, newWorker(i, sink, e.source, mode, e.status, e.stats, e.log))
	}

	for _, w := range e.workers {
		core.Go(w.run)
	}
	e.dispatcher = newDispatcher(e.inbox, e.workers, mode, e.stats, e.log)
	core.Go(e.dispatcher.run)

	e.log.Info().
		Int("pool_size", cfg.PoolSize).
		Str("stop_mode", string(mode)).
		Str("backend", e.status.Strings.Get(MetricBackend).Load()).
		Msg("audio engine started")
	return e, nil
}

// abortStart releases sinks and the backend when construction fails midway
func (e *Engine) abortStart() {
	for _, w := range e.workers {
		_ = w.sink.Close()
	}
	if e.backend != nil {
		_ = e.backend.Close()
	}
}

// Register maps name to path; inserts or overwrites
func (e *Engine) Register(name, path string) {
	e.registry.Register(name, path)
}

// Registry exposes the clip registry, e.g. for manifest reloads
func (e *Engine) Registry() *ClipRegistry {
	return e.registry
}

// Play requests name on the first idle worker, fire-and-forget
// Unknown names fail here with ErrUnknownClip. A full pool drops the request
// silently in the dispatcher; use TryPlay to observe that outcome
func (e *Engine) Play(name string) error {
	path, err := e.registry.Resolve(name)
	if err != nil {
		e.log.Error().Err(err).Msg("play of unregistered clip")
		return err
	}
	return e.enqueue(playRequest(name, path, nil))
}

// TryPlay enqueues like Play and waits for the dispatcher's routing decision,
// never for playback. Outcome.Dropped reports load shedding; it is not an error
func (e *Engine) TryPlay(ctx context.Context, name string) (Outcome, error) {
	path, err := e.registry.Resolve(name)
	if err != nil {
		e.log.Error().Err(err).Msg("play of unregistered clip")
		return Outcome{Worker: -1}, err
	}

	reply := make(chan Outcome, 1)
	if err := e.enqueue(playRequest(name, path, reply)); err != nil {
		return Outcome{Worker: -1}, err
	}

	select {
	case out := <-reply:
		return out, nil
	case <-ctx.Done():
		return Outcome{Worker: -1}, ctx.Err()
	}
}

// StopAll broadcasts a stop to every worker, fire-and-forget
func (e *Engine) StopAll() error {
	return e.enqueue(stopAllRequest())
}

// enqueue is a bounded non-blocking send onto the inbound queue
func (e *Engine) enqueue(req request) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}

	select {
	case e.inbox <- req:
		if req.cmd.Kind == CmdPlay {
			e.stats.requests.Add(1)
		}
		return nil
	default:
		e.stats.rejected.Add(1)
		return ErrQueueFull
	}
}

// Shutdown closes the inbound queue, lets the dispatcher drain it, then waits
// for every worker to finish its current command and exit
// Call exactly once; later calls and all other operations return ErrClosed.
// A pool that does not join within cfg.ShutdownTimeout yields ErrShutdownTimeout
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.closed = true
	close(e.inbox)
	e.mu.Unlock()

	timer := time.NewTimer(e.cfg.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-e.dispatcher.done:
	case <-timer.C:
		stuck := e.stuckWorkers()
		e.log.Error().Ints("workers", stuck).Dur("timeout", e.cfg.ShutdownTimeout).Msg("audio shutdown timed out")
		return fmt.Errorf("%w within %s: workers %v", ErrShutdownTimeout, e.cfg.ShutdownTimeout, stuck)
	}

	var err error
	if e.backend != nil {
		err = e.backend.Close()
	}
	e.log.Info().Msg("audio engine stopped")
	return err
}

// stuckWorkers lists workers that have not exited
func (e *Engine) stuckWorkers() []int {
	var ids []int
	for _, w := range e.workers {
		select {
		case <-w.done:
		default:
			ids = append(ids, w.id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Closed reports whether Shutdown has been called
func (e *Engine) Closed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// PoolSize returns the number of workers
func (e *Engine) PoolSize() int {
	return len(e.workers)
}

// Busy returns a snapshot of every worker's busy flag, by index
// A worker reads busy from the moment the dispatcher assigns it a clip, before decoding starts
func (e *Engine) Busy() []bool {
	out := make([]bool, len(e.workers))
	for i, w := range e.workers {
		out[i] = w.isBusy()
	}
	return out
}

// BusyCount returns how many workers are busy right now
func (e *Engine) BusyCount() int {
	n := 0
	for _, w := range e.workers {
		if w.isBusy() {
			n++
		}
	}
	return n
}

// Stats returns a snapshot of the counters
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

// Status exposes the metric registry the engine publishes into
func (e *Engine) Status() *status.Registry {
	return e.status
}

// InvalidateCache drops decoded clips when the default cached source is in use
func (e *Engine) InvalidateCache(path string) {
	if cs, ok := e.source.(*CachedSource); ok {
		cs.Invalidate(path)
	}
}

// Preload decodes the named clips into the cache ahead of their first play
// Without a cached source it only checks that every name resolves
// Every name is attempted; failures are joined
func (e *Engine) Preload(names ...string) error {
	var errs []error
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := e.registry.Resolve(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, path)
	}

	if cs, ok := e.source.(*CachedSource); ok {
		if err := cs.Preload(paths...); err != nil {
			errs = append(errs, err)
		}
		e.log.Debug().Int("clips", len(paths)).Int("cached", cs.Len()).Msg("clips preloaded")
	}
	return errors.Join(errs...)
}
