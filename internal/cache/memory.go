package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is the single-instance cache backend. Entries expire lazily on
// access and a janitor goroutine sweeps the map periodically.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go m.janitor(time.Minute)
	return m
}

func (m *Memory) janitor(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, entry := range m.entries {
				if now.After(entry.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.evictIfExpired(key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// evictIfExpired drops key only while it is still expired: a concurrent Set
// may have replaced the entry since the caller's read.
func (m *Memory) evictIfExpired(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[key]; ok && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
	}
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
