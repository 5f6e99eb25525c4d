package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewWithClient(rdb, "test:", WithClock(func() time.Time { return fixedNow })), mr
}

func TestGet_Missing_ReturnsNil(t *testing.T) {
	c, _ := newCache(t)

	it, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, it)
}

func TestSetGet_JSONWithTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	ok, err := c.Set(ctx, "T1", map[string]any{"email": "a@x.com", "password": "pw"}, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	it, err := c.Get(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, it)
	require.True(t, it.IsJSON)
	require.Equal(t, fixedNow.Add(10*time.Minute).Unix(), it.ExpiresAt)

	var got map[string]string
	require.NoError(t, it.Decode(&got))
	require.Equal(t, map[string]string{"email": "a@x.com", "password": "pw"}, got)

	require.Equal(t, 10*time.Minute, mr.TTL("test:T1"))
}

func TestSetGet_StringWithoutTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, err := c.Set(ctx, "vt", "a@x.com", 0)
	require.NoError(t, err)

	it, err := c.Get(ctx, "vt")
	require.NoError(t, err)
	require.False(t, it.IsJSON)
	require.Equal(t, "a@x.com", it.String())
	require.Zero(t, it.ExpiresAt)
	require.Zero(t, mr.TTL("test:vt"))
}

func TestSet_OverwriteClearsPreviousTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, err := c.Set(ctx, "k", "v1", time.Minute)
	require.NoError(t, err)
	_, err = c.Set(ctx, "k", "v2", 0)
	require.NoError(t, err)

	require.Zero(t, mr.TTL("test:k"))

	it, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", it.String())
}

func TestSet_ExpiresInStore(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, err := c.Set(ctx, "k", map[string]any{}, 30*time.Second)
	require.NoError(t, err)

	it, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, it.IsEmptyObject())

	mr.FastForward(31 * time.Second)

	it, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, it)
}

func TestDelete_Idempotent(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	_, err := c.Set(ctx, "k", "v", 0)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))

	it, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, it)
}

// SAdd возвращает число переданных значений, а не число новых элементов.
func TestSAdd_ReturnsInputCount(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	n, err := c.SAdd(ctx, "s", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = c.SAdd(ctx, "s", []string{"b", "c"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = c.SAdd(ctx, "s", []string{"a", "a", "a"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	members, err := c.SMembers(ctx, "s")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, members)
}

func TestSIsMember(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	ok, err := c.SIsMember(ctx, "s", "a")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = c.SAdd(ctx, "s", []string{"a"}, 0)
	require.NoError(t, err)

	ok, err = c.SIsMember(ctx, "s", "a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.SIsMember(ctx, "s", "z")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSRem_KeepsTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, err := c.SAdd(ctx, "s", []string{"a", "b"}, time.Minute)
	require.NoError(t, err)

	n, err := c.SRem(ctx, "s", "a")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = c.SRem(ctx, "s", "a")
	require.NoError(t, err)
	require.Equal(t, 0, n)

	n, err = c.SRem(ctx, "missing", "a")
	require.NoError(t, err)
	require.Equal(t, 0, n)

	members, err := c.SMembers(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, members)
	require.Equal(t, time.Minute, mr.TTL("test:s"))
}

func TestSMembers_NonListIsServerError(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	_, err := c.Set(ctx, "obj", map[string]any{"a": 1}, 0)
	require.NoError(t, err)
	_, err = c.Set(ctx, "str", "plain", 0)
	require.NoError(t, err)

	_, err = c.SMembers(ctx, "obj")
	require.Equal(t, apierrors.KindServer, apierrors.KindOf(err))

	_, err = c.SMembers(ctx, "str")
	require.Equal(t, apierrors.KindServer, apierrors.KindOf(err))
}

func TestStoreFailure_IsServerKind(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewWithClient(rdb, "")

	mr.Close()

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)

	e, ok := apierrors.As(err)
	require.True(t, ok)
	require.Equal(t, apierrors.KindServer, e.Kind)
	require.Equal(t, "d2_server_error", e.Msg)

	_, err = c.Set(context.Background(), "k", "v", time.Second)
	require.Equal(t, apierrors.KindServer, apierrors.KindOf(err))
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(context.Background(), "::not-a-url", "")
	require.Error(t, err)
}

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(context.Background(), "redis://"+mr.Addr()+"/0", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.Set(context.Background(), "k", "v", 0)
	require.NoError(t, err)
	require.True(t, mr.Exists("bff:k"))
}
