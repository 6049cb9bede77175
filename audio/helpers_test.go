package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testRate    = beep.SampleRate(8000)
	waitTimeout = 2 * time.Second
	waitTick    = 2 * time.Millisecond
)

var errFakeDecode = errors.New("fake decode failure")

// fakeSource serves short silent buffers; "bad.wav" fails and "panic.wav" panics
type fakeSource struct {
	loads atomic.Int64
}

func (s *fakeSource) Load(path string) (*beep.Buffer, error) {
	s.loads.Add(1)
	switch path {
	case "bad.wav":
		return nil, errors.Join(ErrDecodeFailure, errFakeDecode)
	case "panic.wav":
		panic("decoder exploded")
	}
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(format)
	buf.Append(generators.Silence(testRate.N(5 * time.Millisecond)))
	return buf, nil
}

// sinkHarness creates fake sinks and lets a test hold each worker inside Play
// With hold set, a play blocks until release(id), releaseAll or cancellation
type sinkHarness struct {
	hold bool

	started chan int // worker id, once per Play entry

	mu       sync.Mutex
	releases map[int]chan struct{}
	freed    bool

	stops  atomic.Int64
	closes atomic.Int64
}

func newSinkHarness(hold bool) *sinkHarness {
	return &sinkHarness{
		hold:     hold,
		started:  make(chan int, 256),
		releases: make(map[int]chan struct{}),
	}
}

func (h *sinkHarness) factory(id int) (Sink, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releases[id] = make(chan struct{}, 16)
	return &fakeSink{id: id, h: h}, nil
}

func (h *sinkHarness) releaseCh(id int) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releases[id]
}

// release lets worker id's current (or next) held play finish
func (h *sinkHarness) release(id int) {
	h.releaseCh(id) <- struct{}{}
}

// releaseAll stops holding: every current and future play finishes at once
func (h *sinkHarness) releaseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.freed {
		return
	}
	h.freed = true
	for _, ch := range h.releases {
		close(ch)
	}
}

// waitStarted consumes n play-start notifications and returns the worker ids
func (h *sinkHarness) waitStarted(t testing.TB, n int) []int {
	t.Helper()
	ids := make([]int, 0, n)
	for len(ids) < n {
		select {
		case id := <-h.started:
			ids = append(ids, id)
		case <-time.After(waitTimeout):
			t.Fatalf("only %d of %d plays started", len(ids), n)
		}
	}
	return ids
}

type fakeSink struct {
	id int
	h  *sinkHarness
}

func (s *fakeSink) Play(ctx context.Context, _ beep.Streamer, _ beep.Format) error {
	s.h.started <- s.id
	if !s.h.hold {
		return nil
	}
	select {
	case <-s.h.releaseCh(s.id):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeSink) Stop() {
	s.h.stops.Add(1)
}

func (s *fakeSink) Close() error {
	s.h.closes.Add(1)
	return nil
}

// testConfig returns a valid config for a pool of size n
func testConfig(n int, mode StopMode) Config {
	cfg := DefaultConfig()
	cfg.PoolSize = n
	cfg.StopMode = string(mode)
	cfg.Backend = string(BackendSilent)
	cfg.CacheTTL = 0
	cfg.ShutdownTimeout = waitTimeout
	return cfg
}

// newTestEngine starts an engine over fake sinks with pew, ping, pong, bad
// and boom registered; cleanup releases held plays and shuts down
func newTestEngine(t testing.TB, cfg Config, hold bool) (*Engine, *sinkHarness, *fakeSource) {
	t.Helper()

	h := newSinkHarness(hold)
	src := &fakeSource{}
	e, err := NewEngine(cfg, WithSinkFactory(h.factory), WithSource(src))
	require.NoError(t, err)

	e.Register("pew", "pew.wav")
	e.Register("ping", "a.wav")
	e.Register("pong", "b.wav")
	e.Register("bad", "bad.wav")
	e.Register("boom", "panic.wav")

	t.Cleanup(func() {
		h.releaseAll()
		if err := e.Shutdown(); err != nil && !errors.Is(err, ErrClosed) {
			t.Errorf("cleanup shutdown: %v", err)
		}
	})
	return e, h, src
}

// waitIdle blocks until worker id has released its busy flag
func waitIdle(t testing.TB, e *Engine, id int) {
	t.Helper()
	require.Eventually(t, func() bool { return !e.Busy()[id] }, waitTimeout, waitTick)
}

func zeroLogger() zerolog.Logger {
	return zerolog.Nop()
}
