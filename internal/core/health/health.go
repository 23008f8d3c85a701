package health

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Pinger 由 database.Pinger 与 *cache.Cache 实现
type Pinger interface {
	Ping(ctx context.Context) error
}

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Result struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type Checker struct {
	deps  map[string]Pinger
	log   *zap.Logger
	gauge *prometheus.GaugeVec
}

// NewChecker deps 为 名称 → Pinger；同时注册 health_check_up 指标
func NewChecker(deps map[string]Pinger, l *zap.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "article_api",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)
	return &Checker{deps: deps, log: l.With(zap.String("component", "health")), gauge: gauge}
}

func (c *Checker) Liveness(_ context.Context) Result {
	return Result{Status: "up"}
}

// Readiness 逐个探测依赖，任一失败则整体 down
func (c *Checker) Readiness(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	res := Result{Status: "up", Checks: make(map[string]CheckResult, len(c.deps))}
	names := make([]string, 0, len(c.deps))
	for name := range c.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.deps[name].Ping(ctx); err != nil {
			c.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			res.Status = "down"
			res.Checks[name] = CheckResult{Status: "down", Error: err.Error()}
			c.gauge.WithLabelValues(name).Set(0)
			continue
		}
		res.Checks[name] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues(name).Set(1)
	}
	return res
}
