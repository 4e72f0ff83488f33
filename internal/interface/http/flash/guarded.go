package flash

import (
	"context"

	"github.com/xiebiao/relatorio/pkg/circuitbreaker"
	"github.com/xiebiao/relatorio/pkg/logger"
)

// GuardedStore 用熔断器保护主存储(Redis)，失败或熔断时改用备用存储
// 学习要点：
// 1. Push：主存储失败时写入备用存储，消息不丢(但只在本进程可见)
// 2. Pop：两边都取，合并结果；Redis恢复前写入备用存储的消息也能显示
// 3. 熔断打开期间不再访问Redis，页面不会因为连接超时变慢
type GuardedStore struct {
	primary  Store
	fallback Store
	breaker  *circuitbreaker.CircuitBreaker
}

// NewGuardedStore 创建带熔断保护的存储
func NewGuardedStore(primary, fallback Store, breaker *circuitbreaker.CircuitBreaker) *GuardedStore {
	return &GuardedStore{primary: primary, fallback: fallback, breaker: breaker}
}

func (s *GuardedStore) Push(ctx context.Context, id string, payload string) error {
	err := s.breaker.Execute(func() error {
		return s.primary.Push(ctx, id, payload)
	})
	if err == nil {
		return nil
	}

	logger.FromContext(ctx).Warn().
		Err(err).
		Str("breaker", s.breaker.Name()).
		Msg("提示消息改存进程内")
	return s.fallback.Push(ctx, id, payload)
}

func (s *GuardedStore) Pop(ctx context.Context, id string) ([]string, error) {
	var payloads []string
	err := s.breaker.Execute(func() error {
		p, err := s.primary.Pop(ctx, id)
		payloads = p
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("breaker", s.breaker.Name()).
			Msg("读取Redis提示消息失败")
	}

	local, ferr := s.fallback.Pop(ctx, id)
	if ferr != nil {
		if err != nil {
			return nil, ferr
		}
		return payloads, nil
	}
	return append(local, payloads...), nil
}
