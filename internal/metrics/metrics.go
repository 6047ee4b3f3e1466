package metrics

import (
	"net/http"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/service/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ monitor.Metrics = (*Prometheus)(nil)

// Prometheus 监控引擎的指标
type Prometheus struct {
	registry       *prometheus.Registry
	ticks          *prometheus.CounterVec
	alerts         *prometheus.CounterVec
	deliveryFailed *prometheus.CounterVec
	quoteFailed    *prometheus.CounterVec
	quoteLatency   *prometheus.HistogramVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricewatch",
			Name:      "ticks_total",
			Help:      "Monitoring ticks by outcome.",
		}, []string{"outcome"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricewatch",
			Name:      "alerts_sent_total",
			Help:      "Alerts delivered and recorded.",
		}, []string{"kind"}),
		deliveryFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricewatch",
			Name:      "alert_delivery_failures_total",
			Help:      "Alert deliveries that failed and stay pending.",
		}, []string{"kind"}),
		quoteFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricewatch",
			Name:      "quote_failures_total",
			Help:      "Quote fetches that failed.",
		}, []string{"symbol"}),
		quoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pricewatch",
			Name:      "quote_duration_seconds",
			Help:      "Latency of quote fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"symbol"}),
	}
	p.registry.MustRegister(p.ticks, p.alerts, p.deliveryFailed, p.quoteFailed, p.quoteLatency)
	return p
}

func (p *Prometheus) ObserveQuote(symbol string, elapsed time.Duration, err error) {
	p.quoteLatency.WithLabelValues(symbol).Observe(elapsed.Seconds())
	if err != nil {
		p.quoteFailed.WithLabelValues(symbol).Inc()
	}
}

func (p *Prometheus) TickDone(outcome string) {
	p.ticks.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) AlertSent(kind domain.AlertKind) {
	p.alerts.WithLabelValues(kind.ToString()).Inc()
}

func (p *Prometheus) DeliveryFailed(kind domain.AlertKind) {
	p.deliveryFailed.WithLabelValues(kind.ToString()).Inc()
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
