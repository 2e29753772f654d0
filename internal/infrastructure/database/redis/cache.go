package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache opérations clé/valeur utilisées par les services métier.
// Satisfaite par *Client et par MemoryCache.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

var (
	_ Cache = (*Client)(nil)
	_ Cache = (*MemoryCache)(nil)
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zéro = pas d'expiration
}

// MemoryCache implémentation en mémoire de Cache (tests, exécution sans Redis)
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock remplace l'horloge (tests d'expiration)
func (m *MemoryCache) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)
	if !ok {
		return "", Nil
	}
	return entry.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: stringify(value)}
	if expiration > 0 {
		entry.expiresAt = m.now().Add(expiration)
	}
	m.entries[key] = entry
	return nil
}

func (m *MemoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key)
	return ok, nil
}

func (m *MemoryCache) IncrWithWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)
	var count int64
	if ok {
		if _, err := fmt.Sscanf(entry.value, "%d", &count); err != nil {
			return 0, 0, fmt.Errorf("incr %s: valeur non numérique", key)
		}
	} else {
		entry = memoryEntry{expiresAt: m.now().Add(window)}
	}
	count++
	entry.value = fmt.Sprintf("%d", count)
	m.entries[key] = entry

	var ttl time.Duration
	if !entry.expiresAt.IsZero() {
		ttl = entry.expiresAt.Sub(m.now())
	}
	return count, ttl, nil
}

// Keys clés vivantes commençant par prefix
func (m *MemoryCache) Keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.entries {
		if _, ok := m.lookup(key); ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (m *MemoryCache) lookup(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
