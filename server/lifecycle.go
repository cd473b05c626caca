// Package server 管理进程内各组件的启动、运行与优雅关闭
package server

import (
	"context"
	"time"
)

// State 定义管理器生命周期状态
type State int32

const (
	// StatePending 等待启动
	StatePending State = iota
	// StatePrepared 组件已完成准备，等待运行
	StatePrepared
	// StateRunning 组件正在运行
	StateRunning
	// StateStopping 正在执行优雅关闭
	StateStopping
	// StateStopped 已停止
	StateStopped
	// StateError 准备阶段失败
	StateError
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StatePrepared:
		return "Prepared"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Component 由 Manager 管理的组件
//
// Start 阻塞运行，直到 ctx 结束或组件出错；Stop 在关闭阶段按注册逆序调用。
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Preparer 可选接口：在任何组件开始运行之前按注册顺序同步调用
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Hook 定义生命周期回调函数
type Hook func(ctx context.Context) error

// Options 管理器配置
type Options struct {
	Name            string
	ShutdownTimeout time.Duration

	// 处理 SIGINT/SIGTERM
	HandleSignals bool

	OnBeforeStart []Hook
	OnAfterStop   []Hook
}

// Option 配置修改函数
type Option func(*Options)

// DefaultOptions 获取默认配置
func DefaultOptions() *Options {
	return &Options{
		Name:            "itemhub",
		ShutdownTimeout: 10 * time.Second,
		HandleSignals:   true,
	}
}

// WithName 设置服务名称
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithShutdownTimeout 设置关闭超时时间
func WithShutdownTimeout(t time.Duration) Option {
	return func(o *Options) {
		if t > 0 {
			o.ShutdownTimeout = t
		}
	}
}

// WithSignals 是否监听系统信号
func WithSignals(enabled bool) Option {
	return func(o *Options) {
		o.HandleSignals = enabled
	}
}

// WithBeforeStart 添加启动前回调
func WithBeforeStart(fn Hook) Option {
	return func(o *Options) {
		o.OnBeforeStart = append(o.OnBeforeStart, fn)
	}
}

// WithAfterStop 添加停止后回调
func WithAfterStop(fn Hook) Option {
	return func(o *Options) {
		o.OnAfterStop = append(o.OnAfterStop, fn)
	}
}
