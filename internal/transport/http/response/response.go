package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-article-api/internal/core/apperr"
)

// Resp 统一响应信封
type Resp struct {
	StatusCode   int                 `json:"statusCode"`
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	Meta         any                 `json:"meta,omitempty"`
	Data         any                 `json:"data,omitempty"`
	ErrorDetails []apperr.FieldError `json:"errorDetails,omitempty"`
}

// New 成功响应（保证 data 不为 null）
func New(status int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	if msg == "" {
		msg = MessageFor(status)
	}
	return Resp{StatusCode: status, Success: true, Message: msg, Data: data}
}

// Error 失败响应（customMsg 为空时使用默认提示语）
func Error(status int, customMsg string) Resp {
	msg := MessageFor(status)
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{StatusCode: status, Success: false, Message: msg}
}

func OK(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, New(status, msg, data))
}

// Page 列表响应，附带分页 meta
func Page(c *gin.Context, msg string, meta, data any) {
	r := New(http.StatusOK, msg, data)
	r.Meta = meta
	c.JSON(http.StatusOK, r)
}

// Abort 中间件直接以给定状态码结束请求
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg))
}

// Fail 把错误映射为状态码与信封；internal 错误只记录，不向客户端暴露细节。
// 因请求超时失败的 internal 错误返回 504
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if kind == apperr.KindInternal {
		_ = c.Error(err)
		if deadlineExceeded(c, err) {
			status = http.StatusGatewayTimeout
		}
		Abort(c, status, "")
		return
	}
	var ae *apperr.Error
	errors.As(err, &ae)
	r := Error(status, ae.Error())
	r.ErrorDetails = ae.Fields
	c.AbortWithStatusJSON(status, r)
}

func deadlineExceeded(c *gin.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return c.Request != nil && errors.Is(c.Request.Context().Err(), context.DeadlineExceeded)
}
