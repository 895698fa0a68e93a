package cache

import (
	"fmt"
	"sync"
	"time"

	"portal/internal/configuration"
)

type entry struct {
	value     string
	count     int
	expiresAt time.Time
}

// MemoryCache keeps counters and locks in process. It only fits a single
// instance deployment.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*entry), now: time.Now}
}

// get returns the live entry of key, dropping it once expired.
func (m *MemoryCache) get(key string) *entry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *MemoryCache) GetRateLimit(userIdentifier string, requestsPerMinute int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf(configuration.CacheAppRateLimitKey, userIdentifier)
	e := m.get(key)
	if e == nil {
		e = &entry{expiresAt: m.now().Add(time.Minute)}
		m.entries[key] = e
	}
	e.count++

	if e.count > requestsPerMinute {
		retryAfter := int(e.expiresAt.Sub(m.now()).Round(time.Second).Seconds())
		return max(retryAfter, 1), nil
	}
	return 0, nil
}

func (m *MemoryCache) TryAcquireLock(key string, instanceID string, ttlSeconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.get(key) != nil {
		return false, nil
	}
	m.entries[key] = &entry{
		value:     instanceID,
		expiresAt: m.now().Add(time.Duration(ttlSeconds) * time.Second),
	}
	return true, nil
}

func (m *MemoryCache) RefreshLock(key string, instanceID string, ttlSeconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.get(key)
	if e == nil || e.value != instanceID {
		return false, nil
	}
	e.expiresAt = m.now().Add(time.Duration(ttlSeconds) * time.Second)
	return true, nil
}

func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
	return nil
}
