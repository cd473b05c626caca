// Package processing 实现对全部 Item 的并发批处理
//
// 一次运行先获取 ID 快照，再为每个 ID 向共享工作池提交一个工作单元，
// 通过 WaitGroup 汇合后返回聚合结果或首个失败原因。
package processing

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"itemhub/domain/item"
	"itemhub/domain/repository"
	"itemhub/errors"
	"itemhub/logging"
)

// DefaultDelay 每个工作单元的默认模拟延迟
const DefaultDelay = 100 * time.Millisecond

// Config 批处理配置
type Config struct {
	// Delay 每个工作单元开始前的等待时间，负数视为 0
	Delay time.Duration

	// Timeout 单次运行的总时限，0 表示只受调用方 ctx 约束
	Timeout time.Duration

	Sleeper Sleeper
	Logger  logging.Logger
}

// BulkProcessor 批处理器，可被并发调用，各次运行互不共享状态
type BulkProcessor struct {
	store   item.Store
	pool    *Pool
	delay   time.Duration
	timeout time.Duration
	sleeper Sleeper
	logger  logging.Logger
}

// NewBulkProcessor 创建批处理器，pool 需已 Start
func NewBulkProcessor(store item.Store, pool *Pool, cfg Config) *BulkProcessor {
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = TimerSleeper{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.ComponentLogger("processing")
	}
	return &BulkProcessor{
		store:   store,
		pool:    pool,
		delay:   cfg.Delay,
		timeout: cfg.Timeout,
		sleeper: cfg.Sleeper,
		logger:  cfg.Logger,
	}
}

// run 单次运行的累加器
type run struct {
	id string

	mu       sync.Mutex
	items    []*item.Item
	skipped  int
	firstErr error
	failedID int64

	// failed 置位后，尚未开始的单元直接放弃
	failed    atomic.Bool
	cancelled atomic.Int64

	// interrupted 因 ctx 结束而未完成的单元数
	interrupted atomic.Int64

	wg sync.WaitGroup
}

func (r *run) succeed(it *item.Item) {
	r.mu.Lock()
	r.items = append(r.items, it)
	r.mu.Unlock()
}

func (r *run) skip() {
	r.mu.Lock()
	r.skipped++
	r.mu.Unlock()
}

// fail 只保留第一个失败
func (r *run) fail(id int64, err error) {
	r.mu.Lock()
	if r.firstErr == nil {
		r.firstErr = err
		r.failedID = id
	}
	r.mu.Unlock()
	r.failed.Store(true)
}

// ProcessAll 处理当前全部 Item，将状态置为 PROCESSED
//
// 全部工作单元结束后才返回。任一单元失败时返回 PROCESSING_ERROR，
// cause 为首个失败；有单元因 ctx 取消或超时未完成时返回 TIMEOUT。
// 失败时不返回部分结果；所有单元都已完成后 ctx 才结束的，仍返回完整结果。
func (p *BulkProcessor) ProcessAll(ctx context.Context) (*Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	r := &run{id: uuid.NewString()}
	logger := p.logger.WithFields(logging.String("run_id", r.id))

	ids, err := p.store.FindAllIDs(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, timeoutError(r.id, ctxErr)
		}
		return nil, errors.WrapError(err, errors.ErrCodeProcessing, "load item ids").
			WithContext("run_id", r.id)
	}
	ids = dedupe(ids)
	logger.Info(ctx, "bulk processing started", logging.Int("items", len(ids)))

	submitted := 0
	for _, id := range ids {
		r.wg.Add(1)
		if err := p.pool.Submit(ctx, func() { p.unit(ctx, r, id) }); err != nil {
			r.wg.Done()
			if ctx.Err() == nil {
				r.fail(id, fmt.Errorf("submit item %d: %w", id, err))
			}
			break
		}
		submitted++
	}

	// 汇合：等待所有已提交单元进入终态
	r.wg.Wait()

	elapsed := time.Since(start)
	if r.firstErr != nil {
		logger.Error(ctx, "bulk processing failed",
			logging.Int64("item_id", r.failedID),
			logging.Error(r.firstErr),
			logging.Int64("cancelled", r.cancelled.Load()),
			logging.Duration("duration", elapsed))
		return nil, errors.WrapError(r.firstErr, errors.ErrCodeProcessing,
			fmt.Sprintf("bulk processing failed at item %d", r.failedID)).
			WithContext("run_id", r.id).
			WithContext("item_id", r.failedID)
	}
	if interrupted := r.interrupted.Load(); interrupted > 0 || submitted < len(ids) {
		ctxErr := ctx.Err()
		if ctxErr == nil {
			ctxErr = context.Canceled
		}
		logger.Warn(ctx, "bulk processing interrupted",
			logging.Error(ctxErr),
			logging.Int("submitted", submitted),
			logging.Int64("interrupted", interrupted),
			logging.Duration("duration", elapsed))
		return nil, timeoutError(r.id, ctxErr)
	}

	sort.Slice(r.items, func(i, j int) bool { return r.items[i].ID < r.items[j].ID })
	res := &Result{
		RunID:     r.id,
		Items:     r.items,
		Requested: len(ids),
		Skipped:   r.skipped,
		Duration:  elapsed,
	}
	if res.Items == nil {
		res.Items = []*item.Item{}
	}
	logger.Info(ctx, "bulk processing finished",
		logging.Int("processed", res.Processed()),
		logging.Int("skipped", res.Skipped),
		logging.Duration("duration", elapsed))
	return res, nil
}

// unit 单个 ID 的工作单元，总会调用一次 r.wg.Done
func (p *BulkProcessor) unit(ctx context.Context, r *run, id int64) {
	defer r.wg.Done()

	if r.failed.Load() {
		r.cancelled.Add(1)
		return
	}

	it, skipped, err := p.processOne(ctx, id)
	switch {
	case err != nil:
		// 取消导致的失败由 ProcessAll 统一报告为 TIMEOUT
		if ctx.Err() != nil && isContextError(err) {
			r.interrupted.Add(1)
			return
		}
		r.fail(id, err)
	case skipped:
		r.skip()
		p.logger.Debug(ctx, "item vanished before processing", logging.Int64("item_id", id))
	default:
		r.succeed(it)
	}
}

func (p *BulkProcessor) processOne(ctx context.Context, id int64) (saved *item.Item, skipped bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			saved, skipped = nil, false
			err = fmt.Errorf("process item %d: panic: %v", id, rec)
		}
	}()

	if err := p.sleeper.Sleep(ctx, p.delay); err != nil {
		return nil, false, err
	}

	it, err := p.store.FindByID(ctx, id)
	if stdErrors.Is(err, repository.ErrEntityNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find item %d: %w", id, err)
	}

	it.MarkProcessed()
	saved, err = p.store.Save(ctx, it)
	if err != nil {
		return nil, false, fmt.Errorf("save item %d: %w", id, err)
	}
	return saved, false, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func isContextError(err error) bool {
	return stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded)
}

func timeoutError(runID string, cause error) error {
	return errors.WrapError(cause, errors.ErrCodeTimeout, "bulk processing cancelled or timed out").
		WithContext("run_id", runID)
}
