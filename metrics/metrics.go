// Package metrics は展開処理と品目生成の Prometheus メトリクスを定義します。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExpandedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mfg_workorder_detail_rows_total",
			Help: "Total number of work order detail rows generated",
		},
		[]string{"path"},
	)

	ExpansionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mfg_expansion_duration_seconds",
			Help:    "Time taken to expand a routing into work order details",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	UnresolvedPlaceholders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mfg_unresolved_placeholders_total",
			Help: "Placeholders left in process content after resolution",
		},
		[]string{"path"},
	)

	MaterialsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mfg_materials_generated_total",
			Help: "Material generation calls by outcome",
		},
		[]string{"outcome"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mfg_errors_total",
			Help: "Total number of errors",
		},
		[]string{"operation", "type"},
	)
)

// Recorder はひとつの処理経路 (automatic / manual / copy) のメトリクスを記録します。
type Recorder struct {
	path string
}

func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

func (r *Recorder) RecordExpansion(rows int, duration time.Duration) {
	ExpandedRows.WithLabelValues(r.path).Add(float64(rows))
	ExpansionDuration.WithLabelValues(r.path).Observe(duration.Seconds())
}

func (r *Recorder) RecordUnresolved(n int) {
	if n > 0 {
		UnresolvedPlaceholders.WithLabelValues(r.path).Add(float64(n))
	}
}

// RecordError は errType に "client" または "internal" を渡します。
func RecordError(operation, errType string) {
	ErrorsTotal.WithLabelValues(operation, errType).Inc()
}

func RecordMaterial(created bool) {
	outcome := "reused"
	if created {
		outcome = "created"
	}
	MaterialsGenerated.WithLabelValues(outcome).Inc()
}
