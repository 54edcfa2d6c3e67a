package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Config Worker Pool 配置
type Config struct {
	Workers int `mapstructure:"workers"` // worker 数量
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{Workers: 8}
}

// Statistics 统计信息
type Statistics struct {
	Submitted int64
	Completed int64
	Panicked  int64
}

// Pool 基于 ants 的协程池
type Pool struct {
	pool   *ants.Pool
	closed atomic.Bool

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64

	logger *zap.Logger
}

// New 创建 Worker Pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{logger: logger}

	antsPool, err := ants.NewPool(config.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}
	p.pool = antsPool

	return p, nil
}

// Submit 提交任务（池满时阻塞等待）
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.submitted.Add(1)
	err := p.pool.Submit(func() {
		defer p.completed.Add(1)
		p.safeCall(task)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// ForEach 并发执行 fn(0..n-1) 并等待全部完成。
// ctx 取消后尚未提交的任务不再提交，返回 ctx.Err()。
func (p *Pool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	var wg sync.WaitGroup
	var firstErr error

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			firstErr = err
			break
		}

		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			p.safeCall(func() { fn(ctx, i) })
		})
		if err != nil {
			wg.Done()
			firstErr = err
			break
		}
	}

	wg.Wait()
	return firstErr
}

func (p *Pool) safeCall(task func()) {
	defer func() {
		if v := recover(); v != nil {
			p.panicked.Add(1)
			p.logger.Error("worker panic", zap.Any("error", v), zap.Stack("stacktrace"))
		}
	}()
	task()
}

// Running 运行中的 worker 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Cap worker 容量
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Stats 统计信息
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}

// Shutdown 关闭
func (p *Pool) Shutdown() {
	if p.closed.Swap(true) {
		return
	}
	p.pool.Release()
}
