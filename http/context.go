package http

// IResponseWriter 响应写入接口 - 只负责写入响应
type IResponseWriter interface {
	SetStatus(code int)
	SetHeader(key, value string)

	JSON(code int, obj any) error
	String(code int, text string) error
	NoContent(code int) error
}

// IContextStorage 上下文存储接口 - 只负责键值存储
type IContextStorage interface {
	Set(key string, value any)
	Get(key string) (any, bool)
}

// IFlowControl 流程控制接口 - 只负责请求流程控制
type IFlowControl interface {
	Abort()
	IsAborted() bool
}

// IHttpContext 组合接口
type IHttpContext interface {
	IRequestReader
	IRequestBinder
	IResponseWriter
	IContextStorage
	IFlowControl

	GetContext() IRequestContext
	SetContext(ctx IRequestContext)

	// Written 响应头是否已写出
	Written() bool
	// Status 已写出（或待写出）的状态码
	Status() int
}

// HttpHandler 处理器函数类型
type HttpHandler func(ctx IHttpContext) error
