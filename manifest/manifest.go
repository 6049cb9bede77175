// Package manifest loads the clip name to file mapping and keeps the audio
// registry in sync with it
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned for unparsable files and empty entries
var ErrInvalidManifest = errors.New("invalid clip manifest")

// Registrar receives clip registrations; *audio.Engine and *audio.ClipRegistry satisfy it
type Registrar interface {
	Register(name, path string)
}

// Manifest maps clip names to audio file paths
type Manifest struct {
	Clips map[string]string `yaml:"clips"`

	dir string // base for relative paths, empty for as-is
}

// defaultClips are the effects the game registers at startup
var defaultClips = []string{"explosion", "lose", "move", "pew", "startup", "win"}

// Default returns the built-in manifest: audio/<name>.wav for each game effect
func Default() *Manifest {
	m := &Manifest{Clips: make(map[string]string, len(defaultClips))}
	for _, name := range defaultClips {
		m.Clips[name] = filepath.Join("audio", name+".wav")
	}
	return m
}

// Load reads a YAML manifest; relative clip paths resolve against its directory
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes a YAML manifest without a base directory
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	for name, path := range m.Clips {
		if name == "" || path == "" {
			return nil, fmt.Errorf("%w: empty entry %q: %q", ErrInvalidManifest, name, path)
		}
	}
	if m.Clips == nil {
		m.Clips = make(map[string]string)
	}
	return &m, nil
}

// Names returns clip names in sorted order
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Clips))
	for name := range m.Clips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the resolved path for name
func (m *Manifest) Path(name string) (string, bool) {
	p, ok := m.Clips[name]
	if !ok {
		return "", false
	}
	return m.resolve(p), true
}

func (m *Manifest) resolve(p string) string {
	if m.dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Apply registers every clip with r in name order and returns the count
func (m *Manifest) Apply(r Registrar) int {
	names := m.Names()
	for _, name := range names {
		r.Register(name, m.resolve(m.Clips[name]))
	}
	return len(names)
}
