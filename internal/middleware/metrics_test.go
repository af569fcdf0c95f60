package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordedAction struct {
	action string
	status int
}

// fakeCollector はRecordActionの呼び出しを記録するテスト用コレクター。
type fakeCollector struct {
	mu      sync.Mutex
	actions []recordedAction
}

func (f *fakeCollector) RecordAction(action string, statusCode int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, recordedAction{action: action, status: statusCode})
}

func (f *fakeCollector) RecordUserCreated()          {}
func (f *fakeCollector) RecordCycleAdded()           {}
func (f *fakeCollector) RecordNoteSaved(string)      {}
func (f *fakeCollector) RecordBackfill(int64, error) {}

func TestMetricsMiddleware_RecordsKnownAction(t *testing.T) {
	c := &fakeCollector{}
	h := NewMetricsMiddleware(c, []string{"get_articles"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cycle?action=get_articles", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(c.actions) != 1 {
		t.Fatalf("recorded %d actions, want 1", len(c.actions))
	}
	if c.actions[0].action != "get_articles" || c.actions[0].status != http.StatusNotFound {
		t.Errorf("recorded %+v, want get_articles/404", c.actions[0])
	}
}

func TestMetricsMiddleware_UnknownActionCollapsed(t *testing.T) {
	c := &fakeCollector{}
	h := NewMetricsMiddleware(c, []string{"get_articles"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/cycle?action=drop_tables", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(c.actions) != 1 {
		t.Fatalf("recorded %d actions, want 1", len(c.actions))
	}
	if c.actions[0].action != "" {
		t.Errorf("action = %q, want empty", c.actions[0].action)
	}
	if c.actions[0].status != http.StatusOK {
		t.Errorf("status = %d, want 200", c.actions[0].status)
	}
}
