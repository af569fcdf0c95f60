package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/cycle/internal/metrics"
	"github.com/hitoshi/cycle/internal/middleware"
	"github.com/hitoshi/cycle/internal/model"
)

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

func newTestRouterDeps() *RouterDeps {
	return &RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "*",
		HealthChecker:     &mockHealthChecker{},
		ProfileService:    &mockProfileService{},
		TrackingService:   &mockTrackingService{},
		ArticleService:    &mockArticleService{},
	}
}

func TestNewRouter_HealthOK(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body healthResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Status != "ok" || body.Database != "ok" {
		t.Errorf("body = %+v", body)
	}
}

func TestNewRouter_HealthDatabaseDown(t *testing.T) {
	deps := newTestRouterDeps()
	deps.HealthChecker = &mockHealthChecker{err: errors.New("connection refused")}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestNewRouter_HealthWithoutChecker(t *testing.T) {
	deps := newTestRouterDeps()
	deps.HealthChecker = nil
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNewRouter_APIPathAndRootDispatch(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	for _, path := range []string{APIPath, "/"} {
		req := httptest.NewRequest(http.MethodGet, path+"?action=get_articles", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(w.Body.String()); got != "[]" {
			t.Errorf("GET %s body = %q, want []", path, got)
		}
	}
}

func TestNewRouter_AppliesCommonHeaders(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, APIPath+"?action=get_articles", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("X-Request-ID = %q, want req-abc", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestNewRouter_PreflightReturns204(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodOptions, APIPath+"?action=create_user", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestNewRouter_WriteRateLimit(t *testing.T) {
	deps := newTestRouterDeps()
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(600, 1))
	defer rl.Stop()
	deps.RateLimiter = rl
	router := NewRouter(deps)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, APIPath+"?action=add_cycle",
			bytes.NewBufferString(`{"user_id":1,"start_date":"2026-10-01"}`))
		req.RemoteAddr = "192.0.2.10:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	if w := post(); w.Code != http.StatusOK {
		t.Fatalf("first POST status = %d, want %d", w.Code, http.StatusOK)
	}
	w := post()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if body := decodeAPIError(t, w); body.Code != model.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimited)
	}

	// 読み取りは書き込み制限の対象外
	req := httptest.NewRequest(http.MethodGet, APIPath+"?action=get_articles", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestNewRouter_MetricsEndpointAndActionCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	deps := newTestRouterDeps()
	deps.Metrics = metrics.NewCollector(reg)
	deps.Gatherer = reg
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, APIPath+"?action=get_articles", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want %d", w.Code, http.StatusOK)
	}
	want := `cycle_api_requests_total{action="get_articles",status_code="200"} 1`
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("metrics output does not contain %q", want)
	}
}

func TestNewRouter_NoMetricsRouteWithoutGatherer(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
