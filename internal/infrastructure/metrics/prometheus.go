// Package metrics instrumentación Prometheus de los traslados, expuesta en /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Bodega-api/internal/application/transfer"
)

var _ transfer.Metrics = (*TransferMetrics)(nil)

const namespace = "bodega"

// TransferMetrics contadores e histograma de traslados en un registry propio.
type TransferMetrics struct {
	registry      *prometheus.Registry
	transfers     *prometheus.CounterVec
	quantity      prometheus.Counter
	duration      *prometheus.HistogramVec
	auditFailures prometheus.Counter
}

// NewTransferMetrics crea y registra las métricas (más las de proceso y runtime de Go).
func NewTransferMetrics() *TransferMetrics {
	m := &TransferMetrics{
		registry: prometheus.NewRegistry(),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Traslados procesados por resultado.",
		}, []string{"result"}),
		quantity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_quantity_total",
			Help:      "Unidades movidas por traslados confirmados.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Duración de ExecuteTransfer en segundos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_log_failures_total",
			Help:      "Entradas de auditoría que no pudieron registrarse.",
		}),
	}
	m.registry.MustRegister(
		m.transfers, m.quantity, m.duration, m.auditFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTransfer registra un intento. Solo los confirmados suman unidades.
func (m *TransferMetrics) ObserveTransfer(result string, quantity int64, elapsed time.Duration) {
	m.transfers.WithLabelValues(result).Inc()
	m.duration.WithLabelValues(result).Observe(elapsed.Seconds())
	if result == transfer.ResultCompleted && quantity > 0 {
		m.quantity.Add(float64(quantity))
	}
}

// AuditFailed cuenta una auditoría perdida.
func (m *TransferMetrics) AuditFailed() {
	m.auditFailures.Inc()
}

// Handler handler HTTP del registry.
func (m *TransferMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry expone el registry (tests).
func (m *TransferMetrics) Registry() *prometheus.Registry {
	return m.registry
}
