// Package store предоставляет durable key->JSON хранилище с TTL
// для состояния алерт-гейта.
package store

import (
	"context"
	"errors"
	"time"
)

// Ошибки хранилища
var (
	// ErrUnavailable - стор недоступен (сеть, соединение).
	// Гейт трактует эту ошибку как "состояния нет" (fail open):
	// лучше продублировать алерт, чем промолчать.
	ErrUnavailable = errors.New("state store unavailable")
)

// StateStore - контракт хранилища состояния гейта.
//
// Семантика:
//   - значения - непрозрачные JSON байты
//   - per-key операции атомарны, cross-key транзакций нет
//   - запись живёт не дольше TTL; гейт никогда не полагается на
//     персистентность за пределами заявленного TTL
//
// Гонка read-then-write двух конкурентных вызовов может дать
// дубликат алерта - это допустимый режим отказа (best-effort
// notifier), а не нарушение корректности.
type StateStore interface {
	// Get возвращает значение по ключу.
	//
	// Возвращает:
	//   - (value, true, nil): запись найдена и не истекла
	//   - (nil, false, nil): записи нет
	//   - (nil, false, err): стор недоступен
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put сохраняет значение с указанным TTL.
	// ttl <= 0 недопустим: состояние гейта обязано самоочищаться,
	// иначе пропущенный период навсегда заглушит аккаунт.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
