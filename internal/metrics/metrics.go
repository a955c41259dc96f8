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
// サービス層やワーカーから利用する。
type MetricsCollector interface {
	RecordPitchCreated(category string)
	RecordPitchValidationFailed()
	RecordStartupView()
	RecordHTTPStatus(statusCode int)
	RecordImageProbeLatency(duration time.Duration)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	pitchCreated     *prometheus.CounterVec
	validationFailed prometheus.Counter
	startupViews     prometheus.Counter
	httpStatus       *prometheus.CounterVec
	probeLatency     prometheus.Histogram
	sessionsCleaned  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pitchCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchboard_pitch_created_total",
			Help: "作成されたピッチのカテゴリ別合計数",
		}, []string{"category"}),
		validationFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchboard_pitch_validation_failed_total",
			Help: "バリデーションで拒否されたピッチ投稿の合計数",
		}),
		startupViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchboard_startup_views_total",
			Help: "記録されたスタートアップ閲覧の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		probeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitchboard_image_probe_latency_seconds",
			Help:    "画像URLプローブのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchboard_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.pitchCreated,
		c.validationFailed,
		c.startupViews,
		c.httpStatus,
		c.probeLatency,
		c.sessionsCleaned,
	)

	return c
}

// RecordPitchCreated はピッチ作成を記録する。
func (c *Collector) RecordPitchCreated(category string) {
	c.pitchCreated.WithLabelValues(category).Inc()
}

// RecordPitchValidationFailed はバリデーション失敗を記録する。
func (c *Collector) RecordPitchValidationFailed() {
	c.validationFailed.Inc()
}

// RecordStartupView はスタートアップ閲覧を記録する。
func (c *Collector) RecordStartupView() {
	c.startupViews.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordImageProbeLatency は画像プローブのレイテンシを記録する。
func (c *Collector) RecordImageProbeLatency(duration time.Duration) {
	c.probeLatency.Observe(duration.Seconds())
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
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
