package audio

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV encodes n frames of silence at testRate into dir/name
func writeWAV(t *testing.T, dir, name string, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, generators.Silence(n), format))
	return path
}

func TestFileSource_DecodesWAV(t *testing.T) {
	dir := t.TempDir()
	n := testRate.N(100 * time.Millisecond)
	path := writeWAV(t, dir, "pew.wav", n)

	buf, err := FileSource{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, n, buf.Len())
	assert.Equal(t, testRate, buf.Format().SampleRate)
	assert.Equal(t, 2, buf.Format().NumChannels)
}

func TestFileSource_ExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeWAV(t, dir, "LOUD.WAV", 64)

	buf, err := FileSource{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, buf.Len())
}

func TestFileSource_Failures(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "broken.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("not a riff header"), 0644))

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0644))

	for name, path := range map[string]string{
		"missing":     filepath.Join(dir, "missing.wav"),
		"corrupt":     garbage,
		"unsupported": text,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FileSource{}.Load(path)
			assert.ErrorIs(t, err, ErrDecodeFailure)
		})
	}
}

func TestSupportedExt(t *testing.T) {
	for _, p := range []string{"a.wav", "b.MP3", "c.ogg", "d.oga", "e.flac"} {
		assert.True(t, SupportedExt(p), p)
	}
	for _, p := range []string{"a.txt", "b", "c.aiff"} {
		assert.False(t, SupportedExt(p), p)
	}
}

// countingSource counts decodes of the wrapped source
type countingSource struct {
	next  Source
	calls atomic.Int64
}

func (c *countingSource) Load(path string) (*beep.Buffer, error) {
	c.calls.Add(1)
	return c.next.Load(path)
}

func TestCachedSource_DecodesOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeWAV(t, dir, "pew.wav", 128)

	counting := &countingSource{next: FileSource{}}
	cs := NewCachedSource(counting, time.Minute)

	first, err := cs.Load(path)
	require.NoError(t, err)
	second, err := cs.Load(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), counting.calls.Load())
	assert.Equal(t, 1, cs.Len())

	// Independent streamers over one buffer
	a := first.Streamer(0, first.Len())
	b := first.Streamer(0, first.Len())
	samples := make([][2]float64, 32)
	n, _ := a.Stream(samples)
	assert.Equal(t, 32, n)
	assert.Equal(t, 0, b.Position())
}

func TestCachedSource_FailuresNotCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late.wav")

	counting := &countingSource{next: FileSource{}}
	cs := NewCachedSource(counting, time.Minute)

	_, err := cs.Load(path)
	require.ErrorIs(t, err, ErrDecodeFailure)
	assert.Equal(t, 0, cs.Len())

	writeWAV(t, dir, "late.wav", 16)
	_, err = cs.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counting.calls.Load())
}

func TestCachedSource_PreloadAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	a := writeWAV(t, dir, "a.wav", 16)
	b := writeWAV(t, dir, "b.wav", 16)

	counting := &countingSource{next: FileSource{}}
	cs := NewCachedSource(counting, time.Minute)

	require.NoError(t, cs.Preload(a, b))
	assert.Equal(t, 2, cs.Len())

	cs.Invalidate(a)
	assert.Equal(t, 1, cs.Len())
	_, err := cs.Load(a)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counting.calls.Load())

	cs.Invalidate("")
	assert.Equal(t, 0, cs.Len())

	err = cs.Preload(filepath.Join(dir, "nope.wav"))
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

func TestEngine_PreloadWarmsCache(t *testing.T) {
	dir := t.TempDir()
	path := writeWAV(t, dir, "pew.wav", 16)

	cfg := testConfig(1, StopCooperative)
	cfg.CacheTTL = time.Minute
	e, err := NewEngine(cfg, WithSinkFactory(newSinkHarness(false).factory))
	require.NoError(t, err)
	defer e.Shutdown()

	e.Register("pew", path)
	require.NoError(t, e.Preload("pew"))
	assert.ErrorIs(t, e.Preload("ghost"), ErrUnknownClip)

	cs, ok := e.source.(*CachedSource)
	require.True(t, ok)
	assert.Equal(t, 1, cs.Len())

	e.InvalidateCache("")
	assert.Equal(t, 0, cs.Len())
}

func TestPreload_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(1, StopCooperative)
	cfg.CacheTTL = time.Minute
	e, err := NewEngine(cfg, WithSinkFactory(newSinkHarness(false).factory))
	require.NoError(t, err)
	defer e.Shutdown()

	// Sorted order puts the broken entries first
	e.Register("a-missing", filepath.Join(dir, "missing.wav"))
	e.Register("b-ok", writeWAV(t, dir, "ok.wav", 16))
	e.Register("c-ok", writeWAV(t, dir, "ok2.wav", 16))

	err = e.Preload("a-missing", "ghost", "b-ok", "c-ok")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeFailure)
	assert.ErrorIs(t, err, ErrUnknownClip)

	cs := e.source.(*CachedSource)
	assert.Equal(t, 2, cs.Len(), "clips after a failure are still cached")
}
