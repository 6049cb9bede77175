package audio

import (
	"fmt"
	"sort"
	"sync"
)

// ClipRegistry maps symbolic clip names to file paths
// Lookups take a read lock so the manifest watcher can re-register while clips play
type ClipRegistry struct {
	mu    sync.RWMutex
	clips map[string]string
}

// NewClipRegistry creates an empty registry
func NewClipRegistry() *ClipRegistry {
	return &ClipRegistry{
		clips: make(map[string]string),
	}
}

// Register inserts or overwrites the mapping for name
func (r *ClipRegistry) Register(name, path string) {
	r.mu.Lock()
	r.clips[name] = path
	r.mu.Unlock()
}

// Resolve returns the path registered for name
func (r *ClipRegistry) Resolve(name string) (string, error) {
	r.mu.RLock()
	path, ok := r.clips[name]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownClip, name)
	}
	return path, nil
}

// Names returns registered clip names in sorted order
func (r *ClipRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clips))
	for name := range r.clips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered clips
func (r *ClipRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clips)
}
