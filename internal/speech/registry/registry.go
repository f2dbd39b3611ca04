// Package registry holds the process-wide catalogues of speech engine
// backends. Providers register themselves from an init function in their
// package; main selects by configured backend name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/voicebank/voicebank/internal/speech/engine"
)

// Clone is the catalogue of voice-cloning backends.
var Clone = newCatalog[engine.CloneEngine]("clone")

// TTS is the catalogue of synthesis backends.
var TTS = newCatalog[engine.TTSEngine]("tts")

// Factory builds an engine from provider configuration.
type Factory[T any] func(config map[string]string) (T, error)

// Catalog maps backend names to engine factories.
type Catalog[T any] struct {
	kind string

	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func newCatalog[T any](kind string) *Catalog[T] {
	return &Catalog[T]{
		kind:      kind,
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a backend under the given name. Later registrations for
// the same name win.
func (c *Catalog[T]) Register(name string, factory Factory[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

// Create builds an engine from the named backend. An unknown name fails
// with the available backends in the message, so a misconfigured
// deployment is diagnosable from the log line alone.
func (c *Catalog[T]) Create(name string, config map[string]string) (T, error) {
	c.mu.RLock()
	factory, ok := c.factories[name]
	c.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s backend %q, registered: %v", c.kind, name, c.names())
	}

	return factory(config)
}

// Has reports whether a backend is registered under the name.
func (c *Catalog[T]) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.factories[name]
	return ok
}

func (c *Catalog[T]) names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
