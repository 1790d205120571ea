// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は運用メトリクスを収集する。
type Collector struct {
	httpStatus *prometheus.CounterVec
	visits     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timeapp_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		visits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timeapp_visits_recorded_total",
			Help: "訪問記録のバックエンド別の合計数",
		}, []string{"backend"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.visits,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordVisit は訪問記録に使われたバックエンド（redis/postgres/memory）を記録する。
func (c *Collector) RecordVisit(backend string) {
	c.visits.WithLabelValues(backend).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
