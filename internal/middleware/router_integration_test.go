package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/pitchboard/internal/model"
)

// TestRouterIntegration_CSRFTokenEndpoint はCSRFトークン取得エンドポイントが
// chi.Routerで正しく動作することを検証する。
func TestRouterIntegration_CSRFTokenEndpoint(t *testing.T) {
	r := chi.NewRouter()

	csrfConfig := CSRFConfig{CookieSecure: false}
	r.Get("/api/csrf-token", NewCSRFTokenHandler(csrfConfig).ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Token == "" {
		t.Error("expected non-empty token")
	}
}

// TestRouterIntegration_ProtectedRoute_WithMiddlewareChain は
// RequireSession -> CSRF のミドルウェアチェーンがchi.Routerで正しく動作することを検証する。
func TestRouterIntegration_ProtectedRoute_WithMiddlewareChain(t *testing.T) {
	repo := &mockSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == "router-test-session" {
				return &model.Session{
					ID:        "router-test-session",
					AuthorID:  "author.github.router",
					ExpiresAt: time.Now().Add(1 * time.Hour),
				}, nil
			}
			return nil, nil
		},
	}

	r := chi.NewRouter()

	csrfConfig := CSRFConfig{CookieSecure: false}

	// CSRFトークン取得エンドポイント（認証不要）
	r.Get("/api/csrf-token", NewCSRFTokenHandler(csrfConfig).ServeHTTP)

	// 公開エンドポイント（OptionalSession）
	r.Group(func(r chi.Router) {
		r.Use(NewOptionalSession(repo))

		r.Get("/api/startups", func(w http.ResponseWriter, r *http.Request) {
			auth := AuthContextFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]any{"signed_in": auth.SignedIn})
		})
	})

	// 認証が必要なルートグループ
	r.Group(func(r chi.Router) {
		r.Use(NewRequireSession(repo))
		r.Use(NewCSRFMiddleware(csrfConfig))

		r.Get("/api/protected", func(w http.ResponseWriter, r *http.Request) {
			auth := AuthContextFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"author_id": auth.AuthorID})
		})

		r.Post("/api/action", func(w http.ResponseWriter, r *http.Request) {
			auth := AuthContextFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"author_id": auth.AuthorID, "action": "done"})
		})
	})

	// テスト1: GET /api/protected は認証あり + CSRFなしで通る
	t.Run("GET_protected_with_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "router-test-session"})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	})

	// テスト2: GET /api/protected は認証なしで401
	t.Run("GET_protected_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})

	// テスト3: 公開エンドポイントは認証なしで通る
	t.Run("GET_public_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/startups", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	})

	// テスト4: POST /api/action は認証あり + CSRFトークンで通る
	t.Run("POST_action_with_session_and_csrf", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/action", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "router-test-session"})
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "test-csrf-token"})
		req.Header.Set(csrfHeaderName, "test-csrf-token")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}

		var body map[string]string
		json.NewDecoder(w.Result().Body).Decode(&body)
		if body["author_id"] != "author.github.router" {
			t.Errorf("author_id = %q, want %q", body["author_id"], "author.github.router")
		}
	})

	// テスト5: POST /api/action は認証あり + CSRFトークンなしで403
	t.Run("POST_action_without_csrf", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/action", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "router-test-session"})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
		}
	})

	// テスト6: POST /api/action は認証なしで401（CSRFチェックの前にセッションチェック）
	t.Run("POST_action_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/action", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})
}
