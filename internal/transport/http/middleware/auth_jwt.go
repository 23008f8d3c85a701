package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-article-api/internal/domain"
	resp "go-gin-article-api/internal/transport/http/response"
)

// Authenticator 校验访问令牌并返回当前用户
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthJWT 依次从 Authorization（Bearer 或裸令牌）与 accessToken Cookie 取令牌
func AuthJWT(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := a.Authenticate(c.Request.Context(), AccessToken(c))
		if err != nil {
			resp.Fail(c, err)
			return
		}
		c.Set(KeyUserID, u.ID)
		c.Set(KeyEmail, u.Email)
		c.Set(KeyName, u.Name)
		c.Set(KeyRole, u.Role)
		c.Next()
	}
}

// RequireRole 需挂在 AuthJWT 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, c.GetString(KeyRole)) {
			resp.Abort(c, http.StatusForbidden, "")
			return
		}
		c.Next()
	}
}

func AccessToken(c *gin.Context) string {
	if t := BearerToken(c); t != "" {
		return t
	}
	t, _ := c.Cookie(CookieAccessToken)
	return t
}

// BearerToken 兼容 "Bearer <token>" 与直接放令牌两种写法
func BearerToken(c *gin.Context) string {
	ah := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ah
}
