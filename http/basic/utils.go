package basic

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"itemhub/errors"
	httpx "itemhub/http"
	"itemhub/logging"
)

type HttpUtils struct{}

func (u *HttpUtils) ParseID(ctx httpx.IHttpContext, paramName string) (int64, error) {
	idStr := ctx.GetParam(paramName)
	if idStr == "" {
		return 0, errors.NewError(errors.ErrCodeInvalidInput, fmt.Sprintf("parameter %s cannot be empty", paramName))
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, errors.WrapError(err, errors.ErrCodeInvalidInput, fmt.Sprintf("parameter %s must be a valid integer", paramName))
	}
	if id <= 0 {
		return 0, errors.NewError(errors.ErrCodeInvalidInput, fmt.Sprintf("parameter %s must be greater than 0", paramName))
	}
	return id, nil
}

// StatusForCode 错误码到 HTTP 状态码的映射
func StatusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse 把错误写成 ErrorPayload，响应已写出时不做任何事
func (u *HttpUtils) WriteErrorResponse(ctx httpx.IHttpContext, err error) error {
	if ctx.Written() {
		return nil
	}

	err = errors.Normalize(err)

	var (
		status    int
		message   string
		details   string
		errorCode string
	)
	if appErr, ok := err.(errors.IError); ok {
		status = StatusForCode(appErr.Code())
		errorCode = string(appErr.Code())
		message = appErr.Message()
		// 批处理与超时错误需要带出底层原因
		if appErr.Code() == errors.ErrCodeProcessing || appErr.Code() == errors.ErrCodeTimeout {
			message = appErr.Error()
		}
		details = formatDetails(appErr.Details())
	} else {
		status = http.StatusInternalServerError
		message = err.Error()
		errorCode = string(errors.ErrCodeInternal)
	}

	if status >= http.StatusInternalServerError {
		logging.GetLogger().Error(ctx.GetContext(), "request failed",
			logging.String("path", ctx.GetPath()),
			logging.String("error_code", errorCode),
			logging.Error(err))
	}

	if jerr := ctx.JSON(status, httpx.NewErrorResponse(errorCode, message, details)); jerr != nil {
		_ = ctx.String(http.StatusInternalServerError, fmt.Sprintf("%s: %s", errorCode, message))
	}
	return nil
}

func formatDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}
