package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore - in-memory реализация StateStore
//
// Используется в тестах и в режиме без внешнего стора (один инстанс,
// состояние гейта не переживает рестарт - после рестарта возможен
// повторный алерт, что является допустимым fail-open поведением).
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now подменяется в тестах для контроля истечения TTL
	now func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore создает пустое in-memory хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get возвращает значение по ключу, если оно не истекло
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, false, nil
	}

	// Копия: вызывающий код не должен видеть чужие мутации
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Put сохраняет значение с TTL
func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.entries[key] = memoryEntry{
		value:     stored,
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()

	return nil
}

// Purge удаляет истекшие записи.
// MemoryStore не имеет фонового цикла очистки; Purge вызывается
// движком раз в цикл оценки, чтобы память не росла бесконечно.
func (s *MemoryStore) Purge() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len возвращает количество записей (включая истекшие до Purge)
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
