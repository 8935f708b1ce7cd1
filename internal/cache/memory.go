package cache

import (
	"sync"

	"rusttypes/internal/fixture"
)

// Memory is a per-process snapshot cache.
type Memory struct {
	mu sync.RWMutex
	m  map[[32]byte]*fixture.Snapshot
}

// NewMemory creates a Memory with the given capacity hint.
func NewMemory(capHint int) *Memory {
	return &Memory{m: make(map[[32]byte]*fixture.Snapshot, capHint)}
}

func (c *Memory) Get(key [32]byte) (*fixture.Snapshot, bool) {
	c.mu.RLock()
	s, ok := c.m[key]
	c.mu.RUnlock()
	return s, ok
}

func (c *Memory) Put(key [32]byte, s *fixture.Snapshot) error {
	c.mu.Lock()
	c.m[key] = s
	c.mu.Unlock()
	return nil
}

// Len counts entries.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Tiered consults Front before Back and promotes Back hits.
type Tiered struct {
	Front fixture.Cache
	Back  fixture.Cache
}

func (t Tiered) Get(key [32]byte) (*fixture.Snapshot, bool) {
	if s, ok := t.Front.Get(key); ok {
		return s, true
	}
	s, ok := t.Back.Get(key)
	if ok {
		_ = t.Front.Put(key, s)
	}
	return s, ok
}

func (t Tiered) Put(key [32]byte, s *fixture.Snapshot) error {
	if err := t.Front.Put(key, s); err != nil {
		return err
	}
	return t.Back.Put(key, s)
}
