package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"go-gin-article-api/internal/core/apperr"
)

// Metrics 业务事件计数；nil 时不记录
type Metrics struct {
	events *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "article_api",
			Name:      "auth_events_total",
			Help:      "Auth protocol operations by event and outcome.",
		}, []string{"event", "outcome"}),
	}
	reg.MustRegister(m.events)
	return m
}

// observe outcome 取 ok 或错误种类（unauthorized、forbidden…）
func (m *Metrics) observe(event string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	m.events.WithLabelValues(event, outcome).Inc()
}
