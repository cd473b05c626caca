package api

import (
	"fmt"
	"net/http"

	"itemhub/domain/item"
	"itemhub/domain/service"
	"itemhub/errors"
	httpx "itemhub/http"
	"itemhub/http/basic"
)

// IRouteBuilder 路由构建器接口
type IRouteBuilder interface {
	WithConfig(config *RouteConfig) IRouteBuilder
	Use(middlewares ...httpx.Middleware) IRouteBuilder
	Register(server httpx.IHttpServer) error
}

// RouteBuilder 把 IItemService 暴露为 REST 端点
type RouteBuilder struct {
	config      *RouteConfig
	middlewares []httpx.Middleware
	service     service.IItemService
	utils       *basic.HttpUtils
}

// NewRouteBuilder 创建路由构建器
func NewRouteBuilder(svc service.IItemService) IRouteBuilder {
	return &RouteBuilder{
		config:  DefaultRouteConfig(),
		service: svc,
		utils:   &basic.HttpUtils{},
	}
}

// WithConfig 配置路由行为
func (rb *RouteBuilder) WithConfig(config *RouteConfig) IRouteBuilder {
	if config != nil {
		rb.config = config
	}
	return rb
}

// Use 注册中间件
func (rb *RouteBuilder) Use(middlewares ...httpx.Middleware) IRouteBuilder {
	rb.middlewares = append(rb.middlewares, middlewares...)
	return rb
}

// Register 注册到服务器
//
// /process 与 /{id} 同为 GET，ServeMux 按更具体的模式优先匹配 /process。
func (rb *RouteBuilder) Register(server httpx.IHttpServer) error {
	if rb.service == nil {
		return fmt.Errorf("service cannot be nil")
	}
	if server == nil {
		return fmt.Errorf("server cannot be nil")
	}

	group := server.Group(rb.config.BasePath)
	group.Use(rb.middlewares...)
	group.Use(rb.config.Middlewares...)

	group.GET("", rb.handleList)
	group.POST("", rb.handleCreate)
	if rb.config.EnableProcess {
		group.GET("/process", rb.handleProcess)
	}
	group.GET("/:id", rb.handleGet)
	group.PUT("/:id", rb.handleUpdate)
	group.DELETE("/:id", rb.handleDelete)

	if rb.config.HealthPath != "" {
		server.GET(rb.config.HealthPath, rb.handleHealth)
	}
	return nil
}

// handleList GET /api/items
func (rb *RouteBuilder) handleList(c httpx.IHttpContext) error {
	items, err := rb.service.FindAll(c.GetContext())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// handleGet GET /api/items/{id}
func (rb *RouteBuilder) handleGet(c httpx.IHttpContext) error {
	id, err := rb.utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	it, err := rb.service.FindByID(c.GetContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

// handleCreate POST /api/items，成功返回 201 与 Location
func (rb *RouteBuilder) handleCreate(c httpx.IHttpContext) error {
	var in item.Item
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	saved, err := rb.service.Create(c.GetContext(), &in)
	if err != nil {
		return err
	}
	c.SetHeader("Location", fmt.Sprintf("%s/%d", rb.config.BasePath, saved.ID))
	return c.JSON(http.StatusCreated, saved)
}

// handleUpdate PUT /api/items/{id}，以路径 id 为准
func (rb *RouteBuilder) handleUpdate(c httpx.IHttpContext) error {
	id, err := rb.utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	var in item.Item
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	saved, err := rb.service.Update(c.GetContext(), id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

// handleDelete DELETE /api/items/{id}
func (rb *RouteBuilder) handleDelete(c httpx.IHttpContext) error {
	id, err := rb.utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	deleted, err := rb.service.Delete(c.GetContext(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NewError(errors.ErrCodeNotFound, fmt.Sprintf("item %d not found", id))
	}
	return c.NoContent(http.StatusNoContent)
}

// handleProcess GET /api/items/process，返回本次处理成功的 Item 数组
func (rb *RouteBuilder) handleProcess(c httpx.IHttpContext) error {
	res, err := rb.service.ProcessAll(c.GetContext())
	if err != nil {
		return err
	}
	c.SetHeader("X-Run-ID", res.RunID)
	return c.JSON(http.StatusOK, res.Items)
}

func (rb *RouteBuilder) handleHealth(c httpx.IHttpContext) error {
	if err := rb.service.Health(c.GetContext()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
