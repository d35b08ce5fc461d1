package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore - реализация StateStore поверх PostgreSQL
//
// Альтернативный бэкенд для площадок где Redis недоступен. TTL
// эмулируется колонкой expires_at: Get игнорирует истекшие строки,
// PurgeExpired периодически удаляет их физически.
type PostgresStore struct {
	db *sql.DB
}

// Schema - DDL таблицы состояния гейта.
// Применяется через InitSchema при старте (idempotent).
const Schema = `
CREATE TABLE IF NOT EXISTS gate_state (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gate_state_expires ON gate_state (expires_at);
`

// NewPostgresStore создает PostgresStore поверх готового соединения
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InitSchema создает таблицу состояния, если её нет
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to init gate_state schema: %w", err)
	}
	return nil
}

// Get возвращает значение по ключу, если запись не истекла
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `
		SELECT value
		FROM gate_state
		WHERE key = $1 AND expires_at > NOW()`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return value, true, nil
}

// Put сохраняет значение с TTL (upsert по ключу)
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	query := `
		INSERT INTO gate_state (key, value, expires_at)
		VALUES ($1, $2, NOW() + $3 * INTERVAL '1 second')
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	if _, err := s.db.ExecContext(ctx, query, key, value, ttl.Seconds()); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// PurgeExpired физически удаляет истекшие записи.
//
// Вызывается движком раз в цикл оценки. Get и без этого не видит
// истекшие строки, так что Purge влияет только на размер таблицы.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gate_state WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, nil // драйвер не сообщил количество - не критично
	}
	return rows, nil
}
