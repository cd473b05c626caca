package basic

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"itemhub/errors"
	httpx "itemhub/http"
)

// DefaultMaxBodyBytes 默认请求体上限
const DefaultMaxBodyBytes int64 = 1 << 20

type HttpContext struct {
	request *http.Request
	writer  http.ResponseWriter
	params  map[string]string
	reqCtx  httpx.IRequestContext
	status  int
	written bool
	aborted bool
	values  map[string]any

	maxBody int64
	body    []byte
	bodyErr error
	read    bool
}

func NewBaseHttpContext(w http.ResponseWriter, r *http.Request) *HttpContext {
	return &HttpContext{
		request: r,
		writer:  w,
		params:  make(map[string]string),
		reqCtx:  NewRequestContext(r.Context()),
		status:  http.StatusOK,
		values:  make(map[string]any),
		maxBody: DefaultMaxBodyBytes,
	}
}

// implement httpx.IHttpContext
func (c *HttpContext) GetMethod() string           { return c.request.Method }
func (c *HttpContext) GetPath() string             { return c.request.URL.Path }
func (c *HttpContext) GetQuery(key string) string  { return c.request.URL.Query().Get(key) }
func (c *HttpContext) GetParam(key string) string  { return c.params[key] }
func (c *HttpContext) GetHeader(key string) string { return c.request.Header.Get(key) }

// GetBody 读取完整请求体，结果被缓存，可重复调用
func (c *HttpContext) GetBody() ([]byte, error) {
	if c.read {
		return c.body, c.bodyErr
	}
	c.read = true
	if c.request.Body == nil {
		return nil, nil
	}
	defer c.request.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(c.writer, c.request.Body, c.maxBody))
	if err != nil {
		c.bodyErr = errors.WrapError(err, errors.ErrCodeInvalidInput, "failed to read request body")
		return nil, c.bodyErr
	}
	c.body = body
	return body, nil
}

func (c *HttpContext) BindJSON(obj any) error {
	body, err := c.GetBody()
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.NewError(errors.ErrCodeInvalidInput, "request body is empty")
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return errors.WrapError(err, errors.ErrCodeInvalidInput, "failed to parse JSON")
	}
	return nil
}

func (c *HttpContext) SetStatus(code int)          { c.status = code }
func (c *HttpContext) SetHeader(key, value string) { c.writer.Header().Set(key, value) }

func (c *HttpContext) JSON(code int, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeInternal, "failed to serialize JSON")
	}
	c.SetHeader("Content-Type", "application/json")
	return c.write(code, data)
}

func (c *HttpContext) String(code int, text string) error {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	return c.write(code, []byte(text))
}

func (c *HttpContext) NoContent(code int) error {
	return c.write(code, nil)
}

func (c *HttpContext) write(code int, data []byte) error {
	c.SetStatus(code)
	c.writer.WriteHeader(c.status)
	c.written = true
	if len(data) == 0 {
		return nil
	}
	_, err := c.writer.Write(data)
	return err
}

func (c *HttpContext) GetContext() httpx.IRequestContext    { return c.reqCtx }
func (c *HttpContext) SetContext(ctx httpx.IRequestContext) { c.reqCtx = ctx }
func (c *HttpContext) GetQueryParams() url.Values           { return c.request.URL.Query() }
func (c *HttpContext) Set(key string, value any)            { c.values[key] = value }
func (c *HttpContext) Get(key string) (any, bool)           { v, ok := c.values[key]; return v, ok }
func (c *HttpContext) Abort()                               { c.aborted = true }
func (c *HttpContext) IsAborted() bool                      { return c.aborted }
func (c *HttpContext) Written() bool                        { return c.written }
func (c *HttpContext) Status() int                          { return c.status }
func (c *HttpContext) ClientIP() string                     { return c.request.RemoteAddr }
func (c *HttpContext) UserAgent() string                    { return c.request.UserAgent() }
func (c *HttpContext) GetRequest() *http.Request            { return c.request }
func (c *HttpContext) SetParam(key, value string)           { c.params[key] = value }
