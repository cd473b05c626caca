// Package api 注册 Item 的 REST 路由
package api

import (
	httpx "itemhub/http"
)

// RouteConfig 路由配置
type RouteConfig struct {
	// 基础路径
	BasePath string

	// HealthPath 健康检查路径，空字符串表示不注册
	HealthPath string

	// 是否暴露批处理端点
	EnableProcess bool

	// 路由级中间件
	Middlewares []httpx.Middleware
}

// DefaultRouteConfig 默认路由配置
func DefaultRouteConfig() *RouteConfig {
	return &RouteConfig{
		BasePath:      "/api/items",
		HealthPath:    "/healthz",
		EnableProcess: true,
	}
}
