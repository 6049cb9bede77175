package audio

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/invaders/status"
)

// ServiceName is the hub key of the audio service
const ServiceName = "audio"

// Service wraps Engine as a service.Service
// Handles graceful degradation when no audio backend is available
type Service struct {
	cfg    Config
	opts   []Option
	engine *Engine

	disabled atomic.Bool
}

// NewService creates the audio service; cfg and opts are used on Init
func NewService(cfg Config, opts ...Option) *Service {
	return &Service{cfg: cfg, opts: opts}
}

// Name implements service.Service
func (s *Service) Name() string {
	return ServiceName
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// Recognized args: zerolog.Logger, *status.Registry, *ClipRegistry
// A missing device is not fatal: the engine falls back to the silent backend
func (s *Service) Init(args ...any) error {
	opts := append([]Option(nil), s.opts...)
	for _, arg := range args {
		switch v := arg.(type) {
		case zerolog.Logger:
			opts = append(opts, WithLogger(v))
		case *status.Registry:
			opts = append(opts, WithStatus(v))
		case *ClipRegistry:
			opts = append(opts, WithRegistry(v))
		}
	}

	e, err := NewEngine(s.cfg, opts...)
	if err != nil {
		s.disabled.Store(true)
		return fmt.Errorf("audio init: %w", err)
	}
	s.engine = e
	return nil
}

// Start implements service.Service
// Workers are already running once Init returns
func (s *Service) Start() error {
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.engine == nil {
		return nil
	}
	if err := s.engine.Shutdown(); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	return nil
}

// IsDisabled returns true if Init failed
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Engine returns the underlying Engine (nil before Init or when disabled)
func (s *Service) Engine() *Engine {
	if s.disabled.Load() {
		return nil
	}
	return s.engine
}

// Player returns the minimal interface used by game code
// Returns nil if audio is unavailable
func (s *Service) Player() Player {
	if s.disabled.Load() || s.engine == nil {
		return nil
	}
	return s.engine
}

// Player defines the minimal audio interface used by game code
type Player interface {
	Play(name string) error
	StopAll() error
}
