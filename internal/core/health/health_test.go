package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"go-gin-article-api/internal/core/health"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newChecker(deps map[string]health.Pinger) (*health.Checker, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return health.NewChecker(deps, zap.NewNop(), reg), reg
}

func TestLiveness_AlwaysUp(t *testing.T) {
	c, _ := newChecker(map[string]health.Pinger{"db": fakePinger{err: errors.New("down")}})
	res := c.Liveness(context.Background())
	assert.Equal(t, "up", res.Status)
	assert.Nil(t, res.Checks)
}

func TestReadiness_AllUp(t *testing.T) {
	c, reg := newChecker(map[string]health.Pinger{"db": fakePinger{}, "redis": fakePinger{}})
	res := c.Readiness(context.Background())
	assert.Equal(t, "up", res.Status)
	assert.Len(t, res.Checks, 2)
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "article_api_health_check_up"))
}

func TestReadiness_OneDown(t *testing.T) {
	c, _ := newChecker(map[string]health.Pinger{"db": fakePinger{}, "redis": fakePinger{err: errors.New("connection refused")}})
	res := c.Readiness(context.Background())
	assert.Equal(t, "down", res.Status)
	assert.Equal(t, "up", res.Checks["db"].Status)
	assert.Equal(t, "down", res.Checks["redis"].Status)
	assert.Equal(t, "connection refused", res.Checks["redis"].Error)
}
