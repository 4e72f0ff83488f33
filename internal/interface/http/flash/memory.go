package flash

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内消息存储，未启用Redis时使用
// 只适用于单实例部署：重定向落到另一个进程时消息会丢失
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	payloads []string
	expires  time.Time
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Push 追加消息并刷新过期时间
func (s *MemoryStore) Push(_ context.Context, id string, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()

	e, ok := s.entries[id]
	if !ok {
		e = &memoryEntry{}
		s.entries[id] = e
	}
	e.payloads = append(e.payloads, payload)
	e.expires = s.now().Add(s.ttl)
	return nil
}

// Pop 取出并删除
func (s *MemoryStore) Pop(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	delete(s.entries, id)
	if s.now().After(e.expires) {
		return nil, nil
	}
	return e.payloads, nil
}

// evictExpired 顺带清理过期条目(调用方持有锁)
func (s *MemoryStore) evictExpired() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
}
