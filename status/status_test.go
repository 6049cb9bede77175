package status

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricMap_StablePointers(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	a := m.Get("decode_ms")
	b := m.Get("decode_ms")
	assert.Same(t, a, b)
	assert.True(t, m.Has("decode_ms"))
	assert.False(t, m.Has("other"))
	assert.Equal(t, 1, m.Count())
}

func TestMetricMap_ConcurrentGet(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Ints.Get("audio.played").Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1600), r.Ints.Get("audio.played").Load())
	assert.Equal(t, 1, r.TotalCount())
}

func TestMetricMap_RangeSorted(t *testing.T) {
	m := NewMetricMap[AtomicString]()
	for _, k := range []string{"c", "a", "b"} {
		m.Get(k).Store(strings.ToUpper(k))
	}

	var keys, vals []string
	m.Range(func(k string, v *AtomicString) {
		keys = append(keys, k)
		vals = append(vals, v.Load())
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, []string{"A", "B", "C"}, vals)
	assert.Equal(t, keys, m.Keys())
}

func TestAtomicString(t *testing.T) {
	var s AtomicString
	assert.Equal(t, "", s.Load())

	s.Store("explosion")
	assert.Equal(t, "explosion", s.Load())

	s.Store(strings.Repeat("x", MaxStringLen+10))
	assert.Len(t, s.Load(), MaxStringLen)

	s.Clear()
	assert.Equal(t, "", s.Load())
}

func TestAtomicFloat_Smooth(t *testing.T) {
	var f AtomicFloat
	assert.Equal(t, 0.0, f.Get())

	assert.Equal(t, 10.0, f.Smooth(10, 0.5), "first sample stored as-is")
	assert.Equal(t, 15.0, f.Smooth(20, 0.5))
	assert.InDelta(t, 15.0, f.Get(), 1e-9)

	f.Set(2.5)
	assert.Equal(t, 2.5, f.Get())
}

func TestRegistry_Dump(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("audio.played").Store(3)
	r.Floats.Get("audio.decode_ms").Set(1.5)
	r.Bools.Get("audio.worker.0.busy").Store(true)
	r.Strings.Get("audio.backend").Store("silent")

	lines := r.Dump()
	require.Len(t, lines, 4)
	assert.Equal(t, []string{
		"audio.played=3",
		"audio.decode_ms=1.50",
		"audio.worker.0.busy=true",
		`audio.backend="silent"`,
	}, lines)
}
