package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-article-api/internal/core/health"
	"go-gin-article-api/internal/core/server"
	mdw "go-gin-article-api/internal/transport/http/middleware"
	resp "go-gin-article-api/internal/transport/http/response"
)

// Deps 两个引擎共用的基础设施
type Deps struct {
	Log            *zap.Logger
	Metrics        *mdw.HTTPMetrics
	Health         *health.Checker
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// 中间件链（两端一致）
func newEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{CORSOrigins: d.CORSOrigins, Recovery: mdw.Recovered})
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.RateLimitPerIP(20, 40),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(d.RequestTimeout),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler())
	}
	r.Use(mdw.AccessLog(d.Log))

	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		resp.Abort(c, http.StatusNotFound, "Route is not found! Please try again!")
	})
	r.NoMethod(func(c *gin.Context) {
		resp.Abort(c, http.StatusMethodNotAllowed, "")
	})

	// 健康检查
	if d.Health != nil {
		r.GET("/health", func(c *gin.Context) {
			resp.OK(c, http.StatusOK, "", d.Health.Liveness(c.Request.Context()))
		})
		r.GET("/health/ready", func(c *gin.Context) {
			res := d.Health.Readiness(c.Request.Context())
			if res.Status != "up" {
				c.JSON(http.StatusServiceUnavailable, resp.Resp{
					StatusCode: http.StatusServiceUnavailable,
					Message:    "not ready",
					Data:       res,
				})
				return
			}
			resp.OK(c, http.StatusOK, "", res)
		})
	}
	return r
}

// NewAPIEngine 用户端：/api/v1
func NewAPIEngine(d Deps, mods ...APIModule) *gin.Engine {
	r := newEngine(d)
	r.GET("/", func(c *gin.Context) {
		resp.OK(c, http.StatusOK, "Welcome to Article API Server", nil)
	})
	MountAPI(r.Group("/api/v1"), mods...)
	return r
}
