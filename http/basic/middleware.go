package basic

import (
	"fmt"
	"runtime/debug"
	"time"

	"itemhub/errors"
	httpx "itemhub/http"
	"itemhub/logging"
)

// RequestID 为每个请求分配 request_id，并写回响应头
//
// 上游携带 X-Request-ID 时沿用；X-Correlation-ID 缺省时与 request_id 相同。
func RequestID() httpx.Middleware {
	return func(ctx httpx.IHttpContext, next func() error) error {
		id := ctx.GetHeader(httpx.HeaderRequestID)
		if id == "" {
			id = httpx.NewRequestID()
		}
		corr := ctx.GetHeader("X-Correlation-ID")
		if corr == "" {
			corr = id
		}
		ctx.SetContext(WithRequestIDs(ctx.GetContext(), id, corr))
		ctx.SetHeader(httpx.HeaderRequestID, id)
		return next()
	}
}

// AccessLog 请求结束后记录一条访问日志
func AccessLog(logger logging.Logger) httpx.Middleware {
	if logger == nil {
		logger = logging.ComponentLogger("http")
	}
	return func(ctx httpx.IHttpContext, next func() error) error {
		start := time.Now()
		err := next()

		status := ctx.Status()
		if err != nil && !ctx.Written() {
			status = StatusForCode(errors.GetErrorCode(errors.Normalize(err)))
		}
		logger.Info(ctx.GetContext(), "http request",
			logging.String("method", ctx.GetMethod()),
			logging.String("path", ctx.GetPath()),
			logging.Int("status", status),
			logging.String("request_id", ctx.GetContext().GetRequestID()),
			logging.Duration("duration", time.Since(start)))
		return err
	}
}

// Recovery 把处理器 panic 转为 INTERNAL_ERROR
func Recovery(logger logging.Logger) httpx.Middleware {
	if logger == nil {
		logger = logging.ComponentLogger("http")
	}
	return func(ctx httpx.IHttpContext, next func() error) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx.GetContext(), "handler panic",
					logging.String("path", ctx.GetPath()),
					logging.Any("panic", r),
					logging.String("stack", string(debug.Stack())))
				err = errors.NewError(errors.ErrCodeInternal, fmt.Sprintf("panic: %v", r))
			}
		}()
		return next()
	}
}
