package cache

import (
	"context"
	"sync"
	"time"
)

// Store holds serialized façade results.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// entry stores one cached value with expiry.
type entry struct {
	expiresAt time.Time
	val       []byte
}

// Memory is an in-process TTL store. When it grows past MaxItems it drops
// expired entries first, then arbitrary ones.
type Memory struct {
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory(maxItems int) *Memory {
	return &Memory{MaxItems: maxItems, items: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || !m.clock().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]entry)
	}
	m.items[key] = entry{expiresAt: now.Add(ttl), val: val}
	if m.MaxItems > 0 && len(m.items) > m.MaxItems {
		for k, v := range m.items {
			if len(m.items) <= m.MaxItems {
				break
			}
			if !now.Before(v.expiresAt) {
				delete(m.items, k)
			}
		}
		for k := range m.items {
			if len(m.items) <= m.MaxItems {
				break
			}
			if k != key {
				delete(m.items, k)
			}
		}
	}
	return nil
}

func (m *Memory) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Len reports the number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
