package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAdminEngine 管理端：/admin/v1 统一经过 guard（AuthJWT + RequireRole），/metrics 暴露 gatherer
func NewAdminEngine(d Deps, gatherer prometheus.Gatherer, guard []gin.HandlerFunc, mods ...AdminModule) *gin.Engine {
	r := newEngine(d)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	admin := r.Group("/admin/v1", guard...)
	MountAdmin(admin, mods...)
	return r
}
