// cache описывает контракт key-value хранилища с TTL для состояния
// auth-флоу: ожидающие регистрации, токены сброса пароля, сессии.
//
// Значение хранится в явном конверте Item: признак JSON, сырые байты и
// абсолютное время истечения. Угадывания типа по первому/последнему символу нет.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotJSON — попытка декодировать строковое значение в структуру.
var ErrNotJSON = errors.New("cache value is not json")

// Cache — минимальный контракт кэша.
// Любой сбой хранилища возвращается как ошибка вида Server (apierrors).
type Cache interface {
	// Get возвращает запись или nil, если ключа нет.
	Get(ctx context.Context, key string) (*Item, error)
	// Set делает upsert; ttl <= 0 — без истечения.
	Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	// Delete идемпотентен.
	Delete(ctx context.Context, key string) error
	// SMembers возвращает элементы множества или nil, если ключа нет.
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	// SAdd возвращает число переданных значений, а не число новых элементов.
	SAdd(ctx context.Context, key string, values []string, ttl time.Duration) (int, error)
	// SRem удаляет один элемент и возвращает 1, если он был в множестве.
	SRem(ctx context.Context, key, member string) (int, error)
}

// Item — хранимый конверт значения.
type Item struct {
	IsJSON bool
	Raw    []byte
	// ExpiresAt — unix-секунды; 0 — без истечения.
	ExpiresAt int64
}

// Encode готовит значение к записи: строки и байты хранятся как есть,
// всё остальное сериализуется в JSON.
func Encode(value any) (*Item, error) {
	switch v := value.(type) {
	case string:
		return &Item{Raw: []byte(v)}, nil
	case []byte:
		return &Item{Raw: v}, nil
	case json.RawMessage:
		return &Item{IsJSON: true, Raw: v}, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cache.Encode: %w", err)
		}

		return &Item{IsJSON: true, Raw: raw}, nil
	}
}

// Decode раскладывает значение в dst. Числа декодируются как json.Number,
// чтобы идентификаторы не превращались в float64.
func (i *Item) Decode(dst any) error {
	if !i.IsJSON {
		if s, ok := dst.(*string); ok {
			*s = string(i.Raw)
			return nil
		}

		return ErrNotJSON
	}

	dec := json.NewDecoder(bytes.NewReader(i.Raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

// String — значение как строка (для строковых записей вроде verify_token -> email).
func (i *Item) String() string { return string(i.Raw) }

// IsEmptyObject — запись-сентинел {} ("переход в процессе").
func (i *Item) IsEmptyObject() bool {
	return i.IsJSON && bytes.Equal(bytes.TrimSpace(i.Raw), []byte("{}"))
}

// Expired — истёк ли срок записи к моменту now.
// Хранилище может ещё не успеть удалить такую запись.
func (i *Item) Expired(now time.Time) bool {
	return i.ExpiresAt != 0 && i.ExpiresAt <= now.Unix()
}
