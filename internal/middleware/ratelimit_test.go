package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/pitchboard/internal/model"
)

func newTestRateLimiter(generalBurst, pitchBurst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:      rate.Limit(0.001), // テスト中に補充されない低レート
		GeneralBurst:     generalBurst,
		PitchCreateRate:  rate.Limit(0.001),
		PitchCreateBurst: pitchBurst,
		CleanupInterval:  time.Hour,
	})
}

func requestWithAuthor(method, path, authorID string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	ctx := ContextWithAuthContext(req.Context(), model.AuthContext{
		SignedIn:  true,
		AuthorID:  authorID,
		SessionID: "sess-" + authorID,
	})
	return req.WithContext(ctx)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(3, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-a"))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Result().StatusCode)
		}
	}
}

func TestGeneralMiddleware_BlocksOverBurst(t *testing.T) {
	rl := newTestRateLimiter(2, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-a"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-a"))

	resp := w.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestGeneralMiddleware_IsolatesClients(t *testing.T) {
	rl := newTestRateLimiter(1, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// author-aのバーストを使い切る
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-a"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-a"))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("author-a second request should be limited, got %d", w.Result().StatusCode)
	}

	// author-bは影響を受けない
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-b"))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("author-b should not be limited, got %d", w.Result().StatusCode)
	}
}

func TestGeneralMiddleware_AnonymousKeyedByIP(t *testing.T) {
	rl := newTestRateLimiter(1, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/startups", nil)
	req.RemoteAddr = "203.0.113.10:51234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("first anonymous request: status = %d", w.Result().StatusCode)
	}

	// 同一IPからの2回目は制限される（ポートが違っても同じキー）
	req2 := httptest.NewRequest(http.MethodGet, "/api/startups", nil)
	req2.RemoteAddr = "203.0.113.10:51235"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req2)
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("same-IP anonymous request should be limited, got %d", w.Result().StatusCode)
	}

	// 別IPは独立
	req3 := httptest.NewRequest(http.MethodGet, "/api/startups", nil)
	req3.RemoteAddr = "198.51.100.7:40000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req3)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("different-IP anonymous request should pass, got %d", w.Result().StatusCode)
	}
}

func TestPitchCreateMiddleware_IndependentFromGeneral(t *testing.T) {
	rl := newTestRateLimiter(1, 2)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	pitch := rl.PitchCreateMiddleware()(okHandler())

	// API全般のバーストを使い切ってもピッチ投稿は通る
	w := httptest.NewRecorder()
	general.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-a"))
	w = httptest.NewRecorder()
	general.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-a"))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatal("general limiter should be exhausted")
	}

	w = httptest.NewRecorder()
	pitch.ServeHTTP(w, requestWithAuthor(http.MethodPost, "/api/startups", "author-a"))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("pitch create should not share the general bucket, got %d", w.Result().StatusCode)
	}
}

func TestPitchCreateMiddleware_BlocksOverBurst(t *testing.T) {
	rl := newTestRateLimiter(100, 2)
	defer rl.Stop()

	handler := rl.PitchCreateMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithAuthor(http.MethodPost, "/api/startups", "author-a"))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Result().StatusCode)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithAuthor(http.MethodPost, "/api/startups", "author-a"))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Result().StatusCode)
	}
}

func TestRateLimiter_TracksLimiterCounts(t *testing.T) {
	rl := newTestRateLimiter(10, 10)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	pitch := rl.PitchCreateMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		general.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", fmt.Sprintf("author-%d", i)))
	}
	w := httptest.NewRecorder()
	pitch.ServeHTTP(w, requestWithAuthor(http.MethodPost, "/api/startups", "author-0"))

	if got := rl.GeneralLimiterCount(); got != 3 {
		t.Errorf("GeneralLimiterCount() = %d, want 3", got)
	}
	if got := rl.PitchCreateLimiterCount(); got != 1 {
		t.Errorf("PitchCreateLimiterCount() = %d, want 1", got)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:      rate.Limit(1),
		GeneralBurst:     1,
		PitchCreateRate:  rate.Limit(1),
		PitchCreateBurst: 1,
		CleanupInterval:  10 * time.Millisecond,
	})
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithAuthor(http.MethodGet, "/api/startups", "author-stale"))

	if got := rl.GeneralLimiterCount(); got != 1 {
		t.Fatalf("GeneralLimiterCount() = %d, want 1", got)
	}

	// TTL（CleanupInterval*2）経過後にクリーンアップされることを待つ
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rl.GeneralLimiterCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("stale limiter entry was not cleaned up")
}
