//go:build integration

package redis

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// 教学说明：Redis集成测试
// 运行方式：go test -tags=integration ./internal/infrastructure/persistence/redis/

func newRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Docker不可用，跳过集成测试")
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startCancel()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
	}
	container, err := testcontainers.GenericContainer(startCtx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	endpoint, err := container.Endpoint(startCtx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(startCtx).Err())
	return client
}

func TestFlashStore(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()
	store := NewFlashStore(client, time.Minute)

	t.Run("取出后删除", func(t *testing.T) {
		require.NoError(t, store.Push(ctx, "abc", `{"category":"success","text":"um"}`))
		require.NoError(t, store.Push(ctx, "abc", `{"category":"error","text":"dois"}`))

		ttl, err := client.TTL(ctx, "flash:abc").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0), "必须带过期时间")

		msgs, err := store.Pop(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, []string{`{"category":"success","text":"um"}`, `{"category":"error","text":"dois"}`}, msgs)

		msgs, err = store.Pop(ctx, "abc")
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("过期自动清理", func(t *testing.T) {
		short := NewFlashStore(client, time.Second)
		require.NoError(t, short.Push(ctx, "curto", "x"))
		time.Sleep(1500 * time.Millisecond)

		msgs, err := short.Pop(ctx, "curto")
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}
