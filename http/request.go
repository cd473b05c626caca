// Package http 定义框架无关的 HTTP 抽象，实现见 http/basic
package http

import (
	"context"
	"net/http"
	"net/url"
)

// IRequestReader 请求读取接口 - 只负责读取请求数据
type IRequestReader interface {
	GetMethod() string
	GetPath() string
	GetHeader(key string) string
	GetQuery(key string) string
	GetParam(key string) string
	GetQueryParams() url.Values

	GetBody() ([]byte, error)
	GetRequest() *http.Request

	ClientIP() string
	UserAgent() string
}

// IRequestBinder 请求绑定接口 - 只负责数据绑定
type IRequestBinder interface {
	BindJSON(obj any) error
}

// IRequestContext 请求级 context，附带请求标识
type IRequestContext interface {
	context.Context

	GetRequestID() string
	GetCorrelationID() string

	WithValue(key any, value any) IRequestContext
}
