package stats

import (
	"context"
	"maps"
	"sync"

	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/event"
)

// MemoryRecorder keeps counters in process. It is used when Redis is not configured.
type MemoryRecorder struct {
	mu      sync.Mutex
	events  map[string]int64
	choices map[string]int64
}

var _ Recorder = (*MemoryRecorder)(nil)

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		events:  make(map[string]int64),
		choices: make(map[string]int64),
	}
}

func (m *MemoryRecorder) RecordEvent(_ context.Context, origin engine.Origin, domain event.Domain, tier int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range eventFields(origin, domain, tier) {
		m.events[f]++
	}
	return nil
}

func (m *MemoryRecorder) RecordChoice(_ context.Context, failed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.choices[choiceField(failed)]++
	return nil
}

func (m *MemoryRecorder) Snapshot(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSnapshot()
	for f, n := range m.events {
		if err := s.add(f, n); err != nil {
			return nil, err
		}
	}
	maps.Copy(s.Choices, m.choices)
	return s, nil
}

func (m *MemoryRecorder) Close() error { return nil }
