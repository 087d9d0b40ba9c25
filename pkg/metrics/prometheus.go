package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	snapshotsApplied *prometheus.CounterVec
	snapshotsDropped *prometheus.CounterVec
	alertsEmitted    *prometheus.CounterVec
	reconnectsTotal  prometheus.Counter
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	stockCount       prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		snapshotsApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickboard_snapshots_applied_total",
				Help: "Total number of snapshots that replaced the current view state",
			},
			[]string{"source"},
		),
		snapshotsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickboard_snapshots_dropped_total",
				Help: "Total number of snapshots dropped before application",
			},
			[]string{"reason"},
		),
		alertsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickboard_alerts_emitted_total",
				Help: "Total number of one-shot breakout alerts emitted",
			},
			[]string{"breakout"},
		),
		reconnectsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tickboard_reconnects_total",
				Help: "Total number of push channel reconnect attempts",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickboard_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tickboard_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		stockCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tickboard_stock_count",
				Help: "Number of symbols in the current snapshot",
			},
		),
	}
}

// RecordSnapshotApplied records a snapshot that became the current state.
func (r *Recorder) RecordSnapshotApplied(source string, stocks int) {
	r.snapshotsApplied.WithLabelValues(source).Inc()
	r.stockCount.Set(float64(stocks))
}

// RecordSnapshotDropped records a snapshot rejected before application.
func (r *Recorder) RecordSnapshotDropped(reason string) {
	r.snapshotsDropped.WithLabelValues(reason).Inc()
}

// RecordAlert records an emitted breakout alert.
func (r *Recorder) RecordAlert(breakout string) {
	r.alertsEmitted.WithLabelValues(breakout).Inc()
}

// RecordReconnect records a reconnect attempt of the push channel.
func (r *Recorder) RecordReconnect() {
	r.reconnectsTotal.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
