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
// ハンドラーとワーカーから利用する。
type MetricsCollector interface {
	RecordAction(action string, statusCode int, duration time.Duration)
	RecordUserCreated()
	RecordCycleAdded()
	RecordNoteSaved(field string)
	RecordBackfill(rowsUpdated int64, err error)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	actionTotal    *prometheus.CounterVec
	actionLatency  *prometheus.HistogramVec
	usersCreated   prometheus.Counter
	cyclesAdded    prometheus.Counter
	notesSaved     *prometheus.CounterVec
	backfillRuns   *prometheus.CounterVec
	backfillUpdate prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		actionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cycle_api_requests_total",
			Help: "action・HTTPステータスコード別のAPIリクエスト数",
		}, []string{"action", "status_code"}),
		actionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cycle_api_request_duration_seconds",
			Help:    "action別のAPI処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cycle_users_created_total",
			Help: "作成されたプロフィールの合計数",
		}),
		cyclesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cycle_cycles_added_total",
			Help: "記録された周期開始日の合計数",
		}),
		notesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cycle_daily_notes_saved_total",
			Help: "項目別の日々の記録の保存数",
		}, []string{"field"}),
		backfillRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cycle_backfill_runs_total",
			Help: "周期日数バックフィルの実行回数",
		}, []string{"result"}),
		backfillUpdate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cycle_backfill_rows_updated_total",
			Help: "バックフィルで更新された周期の合計数",
		}),
	}

	reg.MustRegister(
		c.actionTotal,
		c.actionLatency,
		c.usersCreated,
		c.cyclesAdded,
		c.notesSaved,
		c.backfillRuns,
		c.backfillUpdate,
	)

	return c
}

// RecordAction はactionごとのリクエスト数と処理時間を記録する。
// 未知のactionはラベルの爆発を防ぐため "unknown" にまとめる。
func (c *Collector) RecordAction(action string, statusCode int, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	c.actionTotal.WithLabelValues(action, strconv.Itoa(statusCode)).Inc()
	c.actionLatency.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordUserCreated はプロフィール作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.usersCreated.Inc()
}

// RecordCycleAdded は周期開始日の記録を記録する。
func (c *Collector) RecordCycleAdded() {
	c.cyclesAdded.Inc()
}

// RecordNoteSaved は日々の記録の保存を項目別に記録する。
func (c *Collector) RecordNoteSaved(field string) {
	c.notesSaved.WithLabelValues(field).Inc()
}

// RecordBackfill はバックフィルの実行結果を記録する。
func (c *Collector) RecordBackfill(rowsUpdated int64, err error) {
	if err != nil {
		c.backfillRuns.WithLabelValues("failure").Inc()
		return
	}
	c.backfillRuns.WithLabelValues("success").Inc()
	c.backfillUpdate.Add(float64(rowsUpdated))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// ワーカーはAPIサーバーを持たないため、このハンドラーを単独で公開する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
