// redis — реализация cache.Cache поверх Redis.
//
// Каждая запись — Redis Hash с полями:
//   - json (0/1) — признак JSON-значения;
//   - raw — сырые байты значения;
//   - exp (unix) — абсолютное время истечения, 0 — без истечения.
//
// Запись выполняется в TxPipeline (DEL + HSET + EXPIRE), чтобы не оставлять
// частично обновлённых ключей.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/career-bff/internal/cache"
	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
)

const defaultPrefix = "bff:"

// storeErrMsg — безопасное сообщение для сбоев хранилища.
const storeErrMsg = "d2_server_error"

// Cache — адаптер Redis.
type Cache struct {
	rdb    *goredis.Client
	prefix string
	now    func() time.Time
}

// Option — функциональная опция конструктора.
type Option func(*Cache)

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение. Пустой prefix заменяется на "bff:".
func New(ctx context.Context, redisURL, prefix string, opts ...Option) (*Cache, error) {
	const op = "cache.redis.New"

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := goredis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(rdb, prefix, opts...), nil
}

// NewWithClient оборачивает готовый клиент.
func NewWithClient(rdb *goredis.Client, prefix string, opts ...Option) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}

	c := &Cache{rdb: rdb, prefix: prefix, now: time.Now}
	for _, o := range opts {
		o(c)
	}

	return c
}

func (c *Cache) key(k string) string { return c.prefix + k }

func (c *Cache) Get(ctx context.Context, key string) (*cache.Item, error) {
	const op = "cache.redis.Get"

	m, err := c.rdb.HGetAll(ctx, c.key(key)).Result()
	if err != nil {
		return nil, c.fail(ctx, op, key, err)
	}

	if len(m) == 0 {
		return nil, nil
	}

	exp, err := strconv.ParseInt(m["exp"], 10, 64)
	if err != nil {
		return nil, c.fail(ctx, op, key, err)
	}

	return &cache.Item{
		IsJSON:    m["json"] == "1",
		Raw:       []byte(m["raw"]),
		ExpiresAt: exp,
	}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	const op = "cache.redis.Set"

	item, err := cache.Encode(value)
	if err != nil {
		return false, c.fail(ctx, op, key, err)
	}

	if ttl > 0 {
		item.ExpiresAt = c.now().Add(ttl).Unix()
	}

	if err := c.write(ctx, key, item, ttl); err != nil {
		return false, c.fail(ctx, op, key, err)
	}

	return true, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	const op = "cache.redis.Delete"

	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return c.fail(ctx, op, key, err)
	}

	return nil
}

func (c *Cache) SMembers(ctx context.Context, key string) ([]string, error) {
	const op = "cache.redis.SMembers"

	item, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if item == nil {
		return nil, nil
	}

	var members []string
	if !item.IsJSON {
		return nil, c.invalidSet(ctx, op, key)
	}

	if err := json.Unmarshal(item.Raw, &members); err != nil {
		return nil, c.invalidSet(ctx, op, key)
	}

	if members == nil {
		members = []string{}
	}

	return members, nil
}

func (c *Cache) SIsMember(ctx context.Context, key, member string) (bool, error) {
	members, err := c.SMembers(ctx, key)
	if err != nil {
		return false, err
	}

	for _, m := range members {
		if m == member {
			return true, nil
		}
	}

	return false, nil
}

// SAdd объединяет множество с values и перезаписывает ключ с новым ttl.
// Возвращает len(values) независимо от того, сколько элементов реально добавлено.
func (c *Cache) SAdd(ctx context.Context, key string, values []string, ttl time.Duration) (int, error) {
	members, err := c.SMembers(ctx, key)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(members)+len(values))
	union := make([]string, 0, len(members)+len(values))
	for _, v := range append(members, values...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		union = append(union, v)
	}

	if _, err := c.Set(ctx, key, union, ttl); err != nil {
		return 0, err
	}

	return len(values), nil
}

// SRem переписывает только поле raw, сохраняя оставшийся TTL ключа.
func (c *Cache) SRem(ctx context.Context, key, member string) (int, error) {
	const op = "cache.redis.SRem"

	members, err := c.SMembers(ctx, key)
	if err != nil || members == nil {
		return 0, err
	}

	rest := make([]string, 0, len(members))
	for _, m := range members {
		if m != member {
			rest = append(rest, m)
		}
	}

	if len(rest) == len(members) {
		return 0, nil
	}

	raw, err := json.Marshal(rest)
	if err != nil {
		return 0, c.fail(ctx, op, key, err)
	}

	if err := c.rdb.HSet(ctx, c.key(key), "raw", raw).Err(); err != nil {
		return 0, c.fail(ctx, op, key, err)
	}

	return 1, nil
}

// Close закрывает клиент Redis.
func (c *Cache) Close() error { return c.rdb.Close() }

func (c *Cache) write(ctx context.Context, key string, item *cache.Item, ttl time.Duration) error {
	kv := map[string]any{
		"json": boolTo01(item.IsJSON),
		"raw":  item.Raw,
		"exp":  strconv.FormatInt(item.ExpiresAt, 10),
	}

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, c.key(key))
	pipe.HSet(ctx, c.key(key), kv)
	if ttl > 0 {
		pipe.Expire(ctx, c.key(key), ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (c *Cache) fail(ctx context.Context, op, key string, err error) error {
	log.From(ctx).Error("cache_failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("err", err.Error()),
	)

	return apierrors.Server(storeErrMsg, fmt.Errorf("%s: key %q: %w", op, key, err))
}

func (c *Cache) invalidSet(ctx context.Context, op, key string) error {
	log.From(ctx).Error("cache_invalid_set",
		slog.String("op", op),
		slog.String("key", key),
	)

	return apierrors.Server("invalid set-members type", fmt.Errorf("%s: key %q holds a non-list value", op, key))
}

func boolTo01(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// Проверка выполнения контракта.
var _ cache.Cache = (*Cache)(nil)
