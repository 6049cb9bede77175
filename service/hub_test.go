package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects lifecycle calls across services in order
type recorder struct {
	calls []string
}

type fakeService struct {
	name     string
	deps     []string
	rec      *recorder
	initErr  error
	startErr error
	stopErr  error
	args     []any
}

func (s *fakeService) Name() string           { return s.name }
func (s *fakeService) Dependencies() []string { return s.deps }

func (s *fakeService) Init(args ...any) error {
	s.args = args
	s.rec.calls = append(s.rec.calls, "init:"+s.name)
	return s.initErr
}

func (s *fakeService) Start() error {
	s.rec.calls = append(s.rec.calls, "start:"+s.name)
	return s.startErr
}

func (s *fakeService) Stop() error {
	s.rec.calls = append(s.rec.calls, "stop:"+s.name)
	return s.stopErr
}

func TestHub_DependencyOrder(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "manifest", deps: []string{"audio"}, rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "audio", rec: rec}))

	require.NoError(t, h.InitAll("arg"))
	require.NoError(t, h.StartAll())
	require.NoError(t, h.StopAll())

	assert.Equal(t, []string{
		"init:audio", "init:manifest",
		"start:audio", "start:manifest",
		"stop:manifest", "stop:audio",
	}, rec.calls)

	audio := MustGet[*fakeService](h, "audio")
	assert.Equal(t, []any{"arg"}, audio.args)
	assert.Equal(t, []string{"audio", "manifest"}, h.Names())
}

func TestHub_DuplicateRegistration(t *testing.T) {
	h := NewHub()
	rec := &recorder{}
	require.NoError(t, h.Register(&fakeService{name: "audio", rec: rec}))
	assert.Error(t, h.Register(&fakeService{name: "audio", rec: rec}))
}

func TestHub_MissingDependency(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "manifest", deps: []string{"audio"}, rec: &recorder{}}))
	err := h.InitAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered service: audio")
}

func TestHub_Cycle(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "a", deps: []string{"b"}, rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "b", deps: []string{"a"}, rec: rec}))
	assert.ErrorContains(t, h.InitAll(), "circular dependency")
	assert.Empty(t, rec.calls)
}

func TestHub_InitFailureRollsBack(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "audio", rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "manifest", deps: []string{"audio"}, rec: rec, initErr: boom}))

	err := h.InitAll()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"init:audio", "init:manifest", "stop:audio"}, rec.calls)

	// Nothing left to stop
	rec.calls = nil
	require.NoError(t, h.StopAll())
	assert.Empty(t, rec.calls)
}

func TestHub_StartFailureStopsInitialized(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "audio", rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "manifest", deps: []string{"audio"}, rec: rec, startErr: boom}))

	require.NoError(t, h.InitAll())
	rec.calls = nil

	require.ErrorIs(t, h.StartAll(), boom)
	assert.Equal(t, []string{"start:audio", "start:manifest", "stop:manifest", "stop:audio"}, rec.calls)
}

func TestHub_StopAllJoinsErrors(t *testing.T) {
	rec := &recorder{}
	errA := errors.New("audio stuck")
	errM := errors.New("watch close")
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "audio", rec: rec, stopErr: errA}))
	require.NoError(t, h.Register(&fakeService{name: "manifest", deps: []string{"audio"}, rec: rec, stopErr: errM}))
	require.NoError(t, h.InitAll())

	err := h.StopAll()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errM)
	assert.Contains(t, rec.calls, "stop:audio", "every service is stopped despite earlier failures")
}

func TestMustGet_Panics(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "audio", rec: &recorder{}}))

	assert.Panics(t, func() { MustGet[*fakeService](h, "missing") })
	assert.Panics(t, func() { MustGet[error](h, "audio") })
}
