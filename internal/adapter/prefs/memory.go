package prefs

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu     sync.RWMutex
	values map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]time.Time)}
}

func (m *Memory) GetTime(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.values[key]
	return t, ok, nil
}

func (m *Memory) SetTime(_ context.Context, key string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = t
	return nil
}
