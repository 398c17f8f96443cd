// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とハンドラーから利用する。
type MetricsCollector interface {
	RecordMeetingCreated()
	RecordMeetingUpdated()
	RecordMeetingDeleted()
	RecordValidationFailure(count int)
	RecordRuleViolations(ruleID string, count int)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	meetingsCreated    prometheus.Counter
	meetingsUpdated    prometheus.Counter
	meetingsDeleted    prometheus.Counter
	validationFailures prometheus.Counter
	ruleViolations     *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	requestLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		meetingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetcost_meetings_created_total",
			Help: "作成された会議の合計数",
		}),
		meetingsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetcost_meetings_updated_total",
			Help: "更新された会議の合計数",
		}),
		meetingsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetcost_meetings_deleted_total",
			Help: "削除された会議の合計数",
		}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetcost_validation_failures_total",
			Help: "バリデーション違反フィールドの合計数",
		}),
		ruleViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetcost_rule_violations_total",
			Help: "ルール別の違反検出数",
		}, []string{"rule_id"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetcost_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetcost_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.meetingsCreated,
		c.meetingsUpdated,
		c.meetingsDeleted,
		c.validationFailures,
		c.ruleViolations,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordMeetingCreated は会議作成を記録する。
func (c *Collector) RecordMeetingCreated() {
	c.meetingsCreated.Inc()
}

// RecordMeetingUpdated は会議更新を記録する。
func (c *Collector) RecordMeetingUpdated() {
	c.meetingsUpdated.Inc()
}

// RecordMeetingDeleted は会議削除を記録する。
func (c *Collector) RecordMeetingDeleted() {
	c.meetingsDeleted.Inc()
}

// RecordValidationFailure はバリデーション違反のフィールド数を記録する。
func (c *Collector) RecordValidationFailure(count int) {
	c.validationFailures.Add(float64(count))
}

// RecordRuleViolations はルール評価で検出された違反数をルールIDラベル付きで記録する。
func (c *Collector) RecordRuleViolations(ruleID string, count int) {
	c.ruleViolations.WithLabelValues(ruleID).Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はAPIリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
