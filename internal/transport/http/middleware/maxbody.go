package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-article-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；声明长度已超限的请求直接 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
