//go:build integration

package cart

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisStorage(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	s := NewRedisStorage(rdb, time.Hour)

	raw, err := s.Load(ctx, "cart:user_1")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, s.Save(ctx, "cart:user_1", []byte(`{"items":[]}`)))
	raw, err = s.Load(ctx, "cart:user_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(raw))

	ttl, err := rdb.TTL(ctx, "cart:user_1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	require.NoError(t, s.Delete(ctx, "cart:user_1"))
	raw, err = s.Load(ctx, "cart:user_1")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestServiceOverRedis(t *testing.T) {
	rdb := startRedis(t)
	svc := newService()
	svc.Storage = NewRedisStorage(rdb, time.Hour)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user_1", 18, 2)
	require.NoError(t, err)
	c, err := svc.Get(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "1800.00", c.Total().StringFixed(2))
}

func TestRedisCompareAndSwap(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	s := NewRedisStorage(rdb, time.Hour)

	require.NoError(t, s.Save(ctx, "cart:user_1", []byte(`{"items":[1]}`)))

	ok, err := s.CompareAndSwap(ctx, "cart:user_1", []byte(`{"items":[2]}`), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, "cart:user_1", []byte(`{"items":[1]}`), []byte(`{"items":[3]}`))
	require.NoError(t, err)
	assert.True(t, ok)
	ttl, err := rdb.TTL(ctx, "cart:user_1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	ok, err = s.CompareAndSwap(ctx, "cart:user_1", []byte(`{"items":[3]}`), nil)
	require.NoError(t, err)
	assert.True(t, ok)
	raw, err := s.Load(ctx, "cart:user_1")
	require.NoError(t, err)
	assert.Nil(t, raw)
}
