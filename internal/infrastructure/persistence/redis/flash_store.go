package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/relatorio/pkg/errors"
)

// FlashStore 一次性提示消息存储
// 设计说明：
// 1. 重定向前写入，下一次渲染页面时取出并删除（Post/Redirect/Get）
// 2. Key设计：flash:{id}，id来自浏览器cookie，值是Redis List（一条消息一个元素）
// 3. 设置过期时间，用户没有回到页面时自动清理
// 4. 多个进程共享同一个Redis，重定向落到哪个实例都能取到消息
type FlashStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFlashStore 创建消息存储
func NewFlashStore(client *redis.Client, ttl time.Duration) *FlashStore {
	return &FlashStore{client: client, ttl: ttl}
}

func flashKey(id string) string {
	return fmt.Sprintf("flash:%s", id)
}

// Push 追加一条消息并刷新过期时间
// 学习要点：RPUSH和EXPIRE放在同一个MULTI/EXEC中，不会留下没有过期时间的key
func (s *FlashStore) Push(ctx context.Context, id string, payload string) error {
	key := flashKey(id)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "保存提示消息失败")
	}
	return nil
}

// Pop 取出全部消息并删除
// 学习要点：LRANGE和DEL在同一个事务里执行，并发请求不会重复显示同一条消息
func (s *FlashStore) Pop(ctx context.Context, id string) ([]string, error) {
	key := flashKey(id)

	var lrange *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "读取提示消息失败")
	}
	return lrange.Val(), nil
}
