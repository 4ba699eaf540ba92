package lark

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bitable-intake/internal/common/logger"
)

const (
	testAppID     = "cli_test"
	testAppSecret = "secret"
	testAppToken  = "bascnApp"
)

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := Config{
		AppID:     testAppID,
		AppSecret: testAppSecret,
		AppToken:  testAppToken,
		BaseURL:   srv.URL,
	}
	all := append([]Option{WithLogger(logger.NewTestLogger(t))}, opts...)
	return NewClient(cfg, all...)
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
