package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-article-api/internal/transport/http/response"
)

// Recovered 作为 ginzap.CustomRecoveryWithZap 的回调：panic 已被记录，这里只负责返回 500 信封
func Recovered(c *gin.Context, _ any) {
	resp.Abort(c, http.StatusInternalServerError, "")
}
