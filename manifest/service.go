package manifest

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/invaders/audio"
)

// ServiceName is the hub key of the manifest service
const ServiceName = "manifest"

// Service loads the clip manifest into the audio engine on Init and, when
// watching, keeps it in sync on Start
type Service struct {
	path  string
	watch bool
	audio *audio.Service

	log      zerolog.Logger
	manifest *Manifest
	watcher  *Watcher
}

// NewService creates the manifest service for the file at path
func NewService(path string, watch bool, audioSvc *audio.Service) *Service {
	return &Service{
		path:  path,
		watch: watch,
		audio: audioSvc,
		log:   zerolog.Nop(),
	}
}

// Name implements service.Service
func (s *Service) Name() string {
	return ServiceName
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return []string{audio.ServiceName}
}

// Init implements service.Service
// A missing file falls back to Default; a malformed one is an error.
// Clips that fail to preload are logged, not fatal: they fail again on play
func (s *Service) Init(args ...any) error {
	for _, arg := range args {
		if l, ok := arg.(zerolog.Logger); ok {
			s.log = l.With().Str("component", "manifest").Logger()
		}
	}

	engine := s.audio.Engine()
	if engine == nil {
		return fmt.Errorf("manifest: audio engine unavailable")
	}

	m, err := Load(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Warn().Str("path", s.path).Msg("manifest not found, using built-in clips")
		m = Default()
		s.watch = false
	case err != nil:
		return err
	}
	s.manifest = m

	n := m.Apply(engine)
	s.log.Info().Int("clips", n).Str("path", s.path).Msg("manifest applied")

	if err := engine.Preload(m.Names()...); err != nil {
		s.log.Warn().Err(err).Msg("clip preload incomplete")
	}
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	if !s.watch {
		return nil
	}
	w, err := NewWatcher(s.path, s.audio.Engine(), s.log)
	if err != nil {
		return fmt.Errorf("manifest watch: %w", err)
	}
	w.Start()
	s.watcher = w
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

// Manifest returns the manifest applied on Init
func (s *Service) Manifest() *Manifest {
	return s.manifest
}

// Watching reports whether the file watch is active
func (s *Service) Watching() bool {
	return s.watcher != nil
}
