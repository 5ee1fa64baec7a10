package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"CommunityBoard/pkg/logger"

	"github.com/sony/gobreaker"
)

// BreakerSettings 熔断参数，零值字段使用默认值
type BreakerSettings struct {
	MaxRequests uint32        // 半开状态下允许的探测请求数
	Interval    time.Duration // 闭合状态下清空计数的周期
	Timeout     time.Duration // 开启后多久进入半开
	MinRequests uint32        // 统计窗口内触发熔断的最少请求数
	FailureRate float64       // 触发熔断的失败率
}

// DefaultBreakerSettings 默认熔断参数
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailureRate: 0.5,
	}
}

// breakerStore 为 Store 增加熔断保护。
// 熔断开启时直接失败，避免请求堆积在不可用的对象存储上。
type breakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore 用熔断器包装 Store
func NewBreakerStore(next Store, name string, st BreakerSettings) Store {
	def := DefaultBreakerSettings()
	if st.MaxRequests == 0 {
		st.MaxRequests = def.MaxRequests
	}
	if st.Interval <= 0 {
		st.Interval = def.Interval
	}
	if st.Timeout <= 0 {
		st.Timeout = def.Timeout
	}
	if st.MinRequests == 0 {
		st.MinRequests = def.MinRequests
	}
	if st.FailureRate <= 0 {
		st.FailureRate = def.FailureRate
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= st.MinRequests && failureRatio >= st.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "熔断器状态变化",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return &breakerStore{next: next, cb: cb}
}

func (s *breakerStore) Store(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Store(ctx, objectName, r, size, contentType)
	})
	if err != nil {
		return "", s.wrap(err)
	}
	return res.(string), nil
}

func (s *breakerStore) Delete(ctx context.Context, location string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Delete(ctx, location)
	})
	return s.wrap(err)
}

func (s *breakerStore) Exists(ctx context.Context, location string) (bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Exists(ctx, location)
	})
	if err != nil {
		return false, s.wrap(err)
	}
	return res.(bool), nil
}

// State 当前熔断状态
func (s *breakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *breakerStore) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: breaker %s: %w", ErrStorageFailure, s.cb.Name(), err)
	}
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
