package basic

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	httpx "itemhub/http"
)

// HttpServer 基于标准库 net/http 的 IHttpServer 实现
//
// 路由以 "METHOD /path" 形式注册到 ServeMux，同一路径的不同方法互不冲突，
// 方法不匹配时由 ServeMux 返回 405。
type HttpServer struct {
	mux         *http.ServeMux
	config      *httpx.WebConfig
	server      *http.Server
	routes      []*route
	middlewares []httpx.Middleware
	mu          sync.RWMutex
	buildOnce   sync.Once
}

var (
	_ httpx.IHttpServer  = (*HttpServer)(nil)
	_ httpx.IRouteGroup  = (*RouteGroup)(nil)
	_ httpx.IHttpContext = (*HttpContext)(nil)
)

type route struct {
	method  string
	pattern string
	params  []string
	handler httpx.HttpHandler
}

// NewHTTPServer 创建基于 net/http 的服务器
func NewHTTPServer(config *httpx.WebConfig) *HttpServer {
	if config == nil {
		config = &httpx.WebConfig{}
	}
	return &HttpServer{
		mux:         http.NewServeMux(),
		config:      config,
		middlewares: make([]httpx.Middleware, 0),
	}
}

// 路由注册实现
func (s *HttpServer) GET(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodGet, path, handler)
}
func (s *HttpServer) POST(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPost, path, handler)
}
func (s *HttpServer) PUT(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPut, path, handler)
}
func (s *HttpServer) DELETE(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodDelete, path, handler)
}

func (s *HttpServer) addRoute(method, path string, handler httpx.HttpHandler) *HttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern, params := convertPathPattern(path)
	s.routes = append(s.routes, &route{
		method:  method,
		pattern: pattern,
		params:  params,
		handler: handler,
	})
	return s
}

// 路由分组
func (s *HttpServer) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{prefix: prefix, server: s, middlewares: make([]httpx.Middleware, 0)}
}

// 全局中间件
func (s *HttpServer) Use(middleware ...httpx.Middleware) httpx.IHttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, middleware...)
	return s
}

// Handler 首次调用时把全部路由注册到 ServeMux
func (s *HttpServer) Handler() http.Handler {
	s.buildOnce.Do(s.registerRoutes)
	return s.mux
}

// Start 监听 addr，addr 为空时使用配置中的 Host:Port
func (s *HttpServer) Start(addr string) error {
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve 在已有 listener 上提供服务，Stop 导致的正常退出返回 nil
func (s *HttpServer) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	if err := srv.Serve(ln); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HttpServer) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// 内部：注册全部路由
func (s *HttpServer) registerRoutes() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.routes {
		s.mux.HandleFunc(r.method+" "+r.pattern, s.createHandler(r))
	}
}

// convertPathPattern 将 :id 转为 {id}，并返回路径中的参数名
func convertPathPattern(pattern string) (string, []string) {
	parts := strings.Split(pattern, "/")
	var params []string
	for i, p := range parts {
		switch {
		case strings.HasPrefix(p, ":"):
			parts[i] = "{" + p[1:] + "}"
			params = append(params, p[1:])
		case strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}"):
			params = append(params, strings.TrimSuffix(p[1:len(p)-1], "..."))
		}
	}
	return strings.Join(parts, "/"), params
}

func (s *HttpServer) createHandler(r *route) http.HandlerFunc {
	utils := &HttpUtils{}
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := NewBaseHttpContext(w, req)
		if s.config.MaxBodyBytes > 0 {
			ctx.maxBody = s.config.MaxBodyBytes
		}
		for _, name := range r.params {
			ctx.SetParam(name, req.PathValue(name))
		}

		s.mu.RLock()
		middlewares := append([]httpx.Middleware{}, s.middlewares...)
		s.mu.RUnlock()

		if err := executeMiddlewareChain(ctx, middlewares, r.handler); err != nil {
			_ = utils.WriteErrorResponse(ctx, err)
		}
	}
}

func executeMiddlewareChain(ctx httpx.IHttpContext, middlewares []httpx.Middleware, handler httpx.HttpHandler) error {
	if len(middlewares) == 0 {
		return handler(ctx)
	}
	return middlewares[0](ctx, func() error {
		if ctx.IsAborted() {
			return nil
		}
		return executeMiddlewareChain(ctx, middlewares[1:], handler)
	})
}

// RouteGroup 实现 IRouteGroup
type RouteGroup struct {
	prefix      string
	server      *HttpServer
	middlewares []httpx.Middleware
}

func (g *RouteGroup) GET(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodGet, path, h)
}
func (g *RouteGroup) POST(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodPost, path, h)
}
func (g *RouteGroup) PUT(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodPut, path, h)
}
func (g *RouteGroup) DELETE(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodDelete, path, h)
}

// Group 子分组继承父分组的中间件
func (g *RouteGroup) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{
		prefix:      g.prefix + prefix,
		server:      g.server,
		middlewares: append([]httpx.Middleware{}, g.middlewares...),
	}
}

func (g *RouteGroup) Use(mw ...httpx.Middleware) httpx.IRouteGroup {
	g.middlewares = append(g.middlewares, mw...)
	return g
}

func (g *RouteGroup) add(method, path string, h httpx.HttpHandler) httpx.IRouteGroup {
	g.server.addRoute(method, g.prefix+path, g.wrap(h))
	return g
}

func (g *RouteGroup) wrap(h httpx.HttpHandler) httpx.HttpHandler {
	return func(ctx httpx.IHttpContext) error { return executeMiddlewareChain(ctx, g.middlewares, h) }
}
