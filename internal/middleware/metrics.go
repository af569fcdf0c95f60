package middleware

import (
	"net/http"
	"time"

	"github.com/hitoshi/cycle/internal/metrics"
)

// NewMetricsMiddleware はaction別のリクエスト数と処理時間を記録するミドルウェアを返す。
// knownActions に含まれないactionは空文字として渡す。
func NewMetricsMiddleware(collector metrics.MetricsCollector, knownActions []string) func(next http.Handler) http.Handler {
	known := make(map[string]struct{}, len(knownActions))
	for _, a := range knownActions {
		known[a] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			action := r.URL.Query().Get("action")
			if _, ok := known[action]; !ok {
				action = ""
			}
			collector.RecordAction(action, rec.statusCode, time.Since(start))
		})
	}
}
