package cache

import (
	"sync"
	"time"

	"github.com/faustbrian/jsgrep/regex"
)

// MemoryStore is the reference Store backend: a process-local map with
// lazy TTL expiry. Entries past their deadline are dropped on the next
// Get that touches them.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	pattern  *regex.Pattern
	deadline time.Time // zero when the entry does not expire
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(key string) (*regex.Pattern, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.deadline.IsZero() && s.now().After(e.deadline) {
		delete(s.entries, key)
		return nil, false
	}
	return e.pattern, true
}

func (s *MemoryStore) Put(key string, p *regex.Pattern, ttl time.Duration) {
	e := memoryEntry{pattern: p}
	if ttl > 0 {
		e.deadline = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
}

var _ Store = (*MemoryStore)(nil)
