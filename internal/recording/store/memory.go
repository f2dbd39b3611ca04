package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the in-process Store backend, used in development and in
// deployments where recordings never need to survive the service process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]Segment
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]Segment)}
}

func (m *MemoryStore) ReplaceAll(_ context.Context, sessionID string, segments []Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keyed := make(map[string]Segment, len(segments))
	for i, seg := range segments {
		keyed[segmentKey(i)] = seg
	}
	m.sessions[sessionID] = keyed
	return nil
}

func (m *MemoryStore) ReadAll(_ context.Context, sessionID string) ([]Segment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keyed, ok := m.sessions[sessionID]
	if !ok {
		return []Segment{}, nil
	}

	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	segments := make([]Segment, 0, len(keys))
	for _, k := range keys {
		seg := keyed[k]
		// Detach the byte slice so callers cannot mutate the stored set.
		seg.Data = append([]byte(nil), seg.Data...)
		segments = append(segments, seg)
	}
	return segments, nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
