package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps slots in process memory. The zero value is not usable;
// call NewMemoryStore.
type MemoryStore struct {
	mu       sync.RWMutex
	slots    map[string]map[string][]byte
	used     int
	maxBytes int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxBytes caps the total size of stored values. Writes that would grow
// the total beyond max fail with ErrQuotaExceeded. Zero means unlimited.
func WithMaxBytes(max int) MemoryOption {
	return func(s *MemoryStore) { s.maxBytes = max }
}

// NewMemoryStore creates an empty in-memory provider.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{slots: make(map[string]map[string][]byte)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Namespace returns the backend for ns.
func (s *MemoryStore) Namespace(ns string) Backend { return &memoryBackend{store: s, ns: ns} }

// Names lists the slot names stored under ns in lexical order.
func (s *MemoryStore) Names(_ context.Context, ns string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.slots[ns]))
	for name := range s.slots[ns] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Put stores raw bytes without quota checks. Tests use it to plant corrupt
// slot contents.
func (s *MemoryStore) Put(ns, name string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(ns, name, value)
}

func (s *MemoryStore) setLocked(ns, name string, value []byte) {
	m := s.slots[ns]
	if m == nil {
		m = make(map[string][]byte)
		s.slots[ns] = m
	}
	s.used += len(value) - len(m[name])
	m[name] = append([]byte(nil), value...)
}

type memoryBackend struct {
	store *MemoryStore
	ns    string
}

func (b *memoryBackend) Get(_ context.Context, name string) ([]byte, error) {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	v, ok := b.store.slots[b.ns][name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *memoryBackend) Set(_ context.Context, name string, value []byte) error {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxBytes > 0 && s.used+len(value)-len(s.slots[b.ns][name]) > s.maxBytes {
		return ErrQuotaExceeded
	}
	s.setLocked(b.ns, name, value)
	return nil
}

func (b *memoryBackend) Remove(_ context.Context, name string) error {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.slots[b.ns]; m != nil {
		s.used -= len(m[name])
		delete(m, name)
	}
	return nil
}
