package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 購入結果のラベル値
const (
	PurchaseSuccess      = "success"
	PurchaseInsufficient = "insufficient"
	PurchaseNotFound     = "not_found"
	PurchaseInvalid      = "invalid"
	PurchaseStorageError = "storage_error"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// チケット購入試行の総数（status: success, insufficient, not_found, invalid, storage_error）
	PurchasesTotal *prometheus.CounterVec

	// 購入トランザクションの処理時間（リトライ込み）
	PurchaseDuration prometheus.Histogram

	// イベントごとの残りチケット枚数
	TicketsRemaining *prometheus.GaugeVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		PurchasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_purchases_total",
				Help: "Total number of ticket purchase attempts",
			},
			[]string{"status"},
		),
		PurchaseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ticket_purchase_duration_seconds",
				Help:    "Time spent on purchase transactions including retries",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		TicketsRemaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "event_tickets_remaining",
				Help: "Remaining tickets per event",
			},
			[]string{"event_id"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PurchasesTotal,
		m.PurchaseDuration,
		m.TicketsRemaining,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
