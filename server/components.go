package server

import (
	"context"
	"io"
	"net"

	"itemhub/http/basic"
	"itemhub/processing"
)

// HTTPComponent 以组件形式运行 HttpServer
type HTTPComponent struct {
	srv  *basic.HttpServer
	addr string
	ln   net.Listener
}

// NewHTTPComponent 在 addr 上监听
func NewHTTPComponent(srv *basic.HttpServer, addr string) *HTTPComponent {
	return &HTTPComponent{srv: srv, addr: addr}
}

func (h *HTTPComponent) Name() string { return "http" }

// Prepare 提前绑定端口，端口被占用时在运行前失败
func (h *HTTPComponent) Prepare(context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return err
	}
	h.ln = ln
	return nil
}

func (h *HTTPComponent) Start(context.Context) error { return h.srv.Serve(h.ln) }

func (h *HTTPComponent) Stop(ctx context.Context) error {
	if err := h.srv.Stop(ctx); err != nil {
		return err
	}
	// Serve 未运行时 listener 仍需释放
	if h.ln != nil {
		_ = h.ln.Close()
	}
	return nil
}

// PoolComponent 管理批处理工作池
type PoolComponent struct {
	pool *processing.Pool
}

func NewPoolComponent(pool *processing.Pool) *PoolComponent { return &PoolComponent{pool: pool} }

func (p *PoolComponent) Name() string { return "worker-pool" }

func (p *PoolComponent) Prepare(context.Context) error { return p.pool.Start() }

func (p *PoolComponent) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (p *PoolComponent) Stop(context.Context) error { return p.pool.Close() }

// CloserComponent 在关闭阶段释放存储、发布器等资源
type CloserComponent struct {
	name   string
	closer io.Closer
}

func NewCloserComponent(name string, closer io.Closer) *CloserComponent {
	return &CloserComponent{name: name, closer: closer}
}

func (c *CloserComponent) Name() string { return c.name }

func (c *CloserComponent) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (c *CloserComponent) Stop(context.Context) error { return c.closer.Close() }
