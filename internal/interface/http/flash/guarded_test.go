package flash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/relatorio/pkg/circuitbreaker"
)

// flakyStore 可以切换成故障状态的存储
type flakyStore struct {
	*MemoryStore
	down  bool
	calls int
}

var errUnavailable = errors.New("redis: connection refused")

func (s *flakyStore) Push(ctx context.Context, id, payload string) error {
	s.calls++
	if s.down {
		return errUnavailable
	}
	return s.MemoryStore.Push(ctx, id, payload)
}

func (s *flakyStore) Pop(ctx context.Context, id string) ([]string, error) {
	s.calls++
	if s.down {
		return nil, errUnavailable
	}
	return s.MemoryStore.Pop(ctx, id)
}

func TestGuardedStore(t *testing.T) {
	ctx := context.Background()

	newStore := func(threshold uint32) (*GuardedStore, *flakyStore, *MemoryStore) {
		primary := &flakyStore{MemoryStore: NewMemoryStore(time.Minute)}
		fallback := NewMemoryStore(time.Minute)
		cb := circuitbreaker.New("flash-redis", circuitbreaker.Config{
			FailureThreshold: threshold,
			OpenTimeout:      time.Hour,
		})
		return NewGuardedStore(primary, fallback, cb), primary, fallback
	}

	t.Run("主存储正常时不用备用存储", func(t *testing.T) {
		s, primary, fallback := newStore(3)
		require.NoError(t, s.Push(ctx, "a", "1"))

		local, _ := fallback.Pop(ctx, "a")
		assert.Empty(t, local)

		require.NoError(t, primary.MemoryStore.Push(ctx, "a", "2"))
		got, err := s.Pop(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, got)
	})

	t.Run("主存储故障时写入备用存储", func(t *testing.T) {
		s, primary, _ := newStore(3)
		primary.down = true

		require.NoError(t, s.Push(ctx, "a", "1"))
		got, err := s.Pop(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, got)
	})

	t.Run("熔断后不再访问主存储", func(t *testing.T) {
		s, primary, _ := newStore(2)
		primary.down = true

		require.NoError(t, s.Push(ctx, "a", "1"))
		require.NoError(t, s.Push(ctx, "a", "2"))
		callsBefore := primary.calls

		require.NoError(t, s.Push(ctx, "a", "3"))
		got, err := s.Pop(ctx, "a")
		require.NoError(t, err)

		assert.Equal(t, callsBefore, primary.calls)
		assert.Equal(t, []string{"1", "2", "3"}, got)
	})

	t.Run("恢复后合并两边的消息", func(t *testing.T) {
		s, primary, _ := newStore(5)
		primary.down = true
		require.NoError(t, s.Push(ctx, "a", "antes"))

		primary.down = false
		require.NoError(t, s.Push(ctx, "a", "depois"))

		got, err := s.Pop(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"antes", "depois"}, got)
	})
}
