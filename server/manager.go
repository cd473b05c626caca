package server

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"itemhub/logging"
)

// Manager 统一管理多个组件的生命周期（准备/运行/关闭）
type Manager struct {
	opts       *Options
	logger     logging.Logger
	components []Component
	state      atomic.Int32
}

// NewManager 创建管理器
func NewManager(opts ...Option) *Manager {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Manager{
		opts:   o,
		logger: logging.ComponentLogger("server"),
	}
}

// WithLogger 设置日志实现
func (m *Manager) WithLogger(l logging.Logger) *Manager {
	if l != nil {
		m.logger = l
	}
	return m
}

// Register 注册组件；关闭时按注册逆序停止
func (m *Manager) Register(components ...Component) *Manager {
	m.components = append(m.components, components...)
	return m
}

// State 当前状态
func (m *Manager) State() State { return State(m.state.Load()) }

func (m *Manager) setState(s State) { m.state.Store(int32(s)) }

// Run 准备并运行全部组件，直到 ctx 结束、收到信号或任一组件出错，然后优雅关闭
func (m *Manager) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.opts.HandleSignals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	for _, h := range m.opts.OnBeforeStart {
		if err := h(ctx); err != nil {
			m.setState(StateError)
			return fmt.Errorf("before start hook: %w", err)
		}
	}

	prepared := 0
	for _, c := range m.components {
		if p, ok := c.(Preparer); ok {
			if err := p.Prepare(ctx); err != nil {
				m.setState(StateError)
				m.logger.Error(ctx, "component prepare failed", logging.String("name", c.Name()), logging.Error(err))
				// 已准备好的组件需要释放
				return stdErrors.Join(fmt.Errorf("prepare %s: %w", c.Name(), err), m.stopAll(m.components[:prepared]))
			}
		}
		prepared++
	}
	m.setState(StatePrepared)

	startAt := time.Now()
	m.logger.Info(ctx, "starting manager",
		logging.String("name", m.opts.Name),
		logging.Int("components", len(m.components)))

	m.setState(StateRunning)
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range m.components {
		g.Go(func() error {
			m.logger.Info(gctx, "component starting", logging.String("name", c.Name()))
			if err := c.Start(gctx); err != nil {
				m.logger.Error(gctx, "component failed", logging.String("name", c.Name()), logging.Error(err))
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			return nil
		})
	}

	var stopErr error
	g.Go(func() error {
		<-gctx.Done()
		m.logger.Info(context.Background(), "shutdown requested")
		m.setState(StateStopping)
		stopErr = m.stopAll(m.components)
		return nil
	})

	runErr := g.Wait()

	for _, h := range m.opts.OnAfterStop {
		if err := h(context.Background()); err != nil {
			stopErr = stdErrors.Join(stopErr, err)
		}
	}

	m.setState(StateStopped)
	m.logger.Info(context.Background(), "manager stopped", logging.Int64("ms", time.Since(startAt).Milliseconds()))
	return stdErrors.Join(runErr, stopErr)
}

// stopAll 按逆序停止组件，共用一个关闭超时
func (m *Manager) stopAll(components []Component) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		t0 := time.Now()
		if err := c.Stop(ctx); err != nil {
			m.logger.Warn(ctx, "component stop error", logging.String("name", c.Name()), logging.Error(err))
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			continue
		}
		m.logger.Info(ctx, "component stopped", logging.String("name", c.Name()), logging.Int64("ms", time.Since(t0).Milliseconds()))
	}
	return stdErrors.Join(errs...)
}
