package processing

import (
	"context"
	stdErrors "errors"
	"fmt"
	"runtime/debug"
	"sync"

	"itemhub/logging"
)

// ErrPoolClosed 向未启动或已关闭的池提交任务
var ErrPoolClosed = stdErrors.New("worker pool is not running")

// Task 由池中某个 worker 执行的工作单元
type Task func()

// PoolConfig 工作池配置
type PoolConfig struct {
	Workers   int // worker 数量，默认 8
	QueueSize int // 任务队列容量，默认等于 Workers
	Logger    logging.Logger
}

// Pool 固定大小、可复用的工作池
//
// Start 一次后可被多次批处理共享；Close 会等待队列中已提交的任务全部执行完。
type Pool struct {
	workers int
	queue   chan Task
	logger  logging.Logger

	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

// NewPool 创建工作池，需调用 Start 后才能提交任务
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.ComponentLogger("processing.pool")
	}
	return &Pool{
		workers: cfg.Workers,
		queue:   make(chan Task, cfg.QueueSize),
		logger:  cfg.Logger,
	}
}

// Start 启动全部 worker
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("worker pool is already running")
	}
	if p.queue == nil {
		return fmt.Errorf("worker pool cannot be restarted after close")
	}

	p.running = true
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i, p.queue)
	}
	p.logger.Debug(context.Background(), "worker pool started", logging.Int("workers", p.workers))
	return nil
}

// Submit 将任务放入队列；队列满时阻塞，直到有空位或 ctx 结束
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrPoolClosed
	}

	select {
	case p.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 停止接收任务，等待已入队任务执行完毕
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.running = false
	queue := p.queue
	p.queue = nil
	p.mu.Unlock()

	// worker 读取完缓冲中的任务后自然退出
	close(queue)
	p.wg.Wait()

	p.logger.Debug(context.Background(), "worker pool stopped")
	return nil
}

// Workers worker 数量
func (p *Pool) Workers() int { return p.workers }

func (p *Pool) worker(workerID int, queue <-chan Task) {
	defer p.wg.Done()

	for task := range queue {
		p.run(workerID, task)
	}
}

// run 执行单个任务，panic 不会带走 worker
func (p *Pool) run(workerID int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(context.Background(), "task panicked",
				logging.Int("worker_id", workerID),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())))
		}
	}()
	task()
}
