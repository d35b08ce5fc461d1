package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore - реализация StateStore поверх Redis
//
// Основной продакшн-бэкенд: TTL нативный (EXPIRE на ключе), per-key
// операции атомарны. Значения хранятся как JSON строки.
type RedisStore struct {
	client *redis.Client

	// keyPrefix изолирует ключи гейта от других пользователей
	// того же Redis (по умолчанию "liqwatch:gate:")
	keyPrefix string
}

// NewRedisStore создает RedisStore поверх готового клиента
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: "liqwatch:gate:",
	}
}

// Get возвращает значение по ключу
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

// Put сохраняет значение с TTL
func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	if err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping проверяет доступность Redis (вызывается при старте)
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
