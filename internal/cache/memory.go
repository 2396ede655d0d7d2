package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory is an in-process Cache: TTL map with lazy expiry plus a bounded LRU
// so the map can't grow without limit.
type Memory struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List               // most-recent at front
	items map[string]*list.Element // key -> element

	now func() time.Time
}

type memEntry struct {
	key   string
	value []byte
	exp   time.Time
}

const defaultMaxEntries = 1024

// NewMemory creates a Memory cache holding at most maxEntries values.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		cap:   maxEntries,
		ll:    list.New(),
		items: make(map[string]*list.Element, maxEntries),
		now:   time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil, false
	}
	en := el.Value.(memEntry)
	if m.now().After(en.exp) {
		// lazy eviction of the stale entry
		m.ll.Remove(el)
		delete(m.items, key)
		return nil, false
	}
	m.ll.MoveToFront(el)
	return en.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	exp := m.now().Add(ttl)
	if el, ok := m.items[key]; ok {
		el.Value = memEntry{key: key, value: value, exp: exp}
		m.ll.MoveToFront(el)
		return
	}

	m.items[key] = m.ll.PushFront(memEntry{key: key, value: value, exp: exp})

	for m.ll.Len() > m.cap {
		oldest := m.ll.Back()
		if oldest == nil {
			break
		}
		m.ll.Remove(oldest)
		delete(m.items, oldest.Value.(memEntry).key)
	}
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ll.Len()
}
