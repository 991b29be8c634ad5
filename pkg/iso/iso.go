package iso

import (
	"fmt"
	"sync"
)

// Configured sets up the supported grid operators and returns a Map.
func Configured() *Map {
	m := NewMap()
	m.SetProvider(CAISOID, configuredCAISO())
	return m
}

// Map manages grid operator providers by their short identifier.
type Map struct {
	mu        sync.Mutex
	providers map[string]ISO
}

// NewMap creates a new provider Map.
func NewMap() *Map {
	return &Map{
		providers: make(map[string]ISO),
	}
}

// Provider returns the provider for the given identifier.
func (m *Map) Provider(id string) (ISO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.providers[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown iso provider: %s", id)
}

// SetProvider sets the provider for the given identifier. This is primarily
// used for testing.
func (m *Map) SetProvider(id string, p ISO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[id] = p
}
