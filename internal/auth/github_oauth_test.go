package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newFakeGitHub(t *testing.T, tokenBody, userBody string, tokenStatus, userStatus int) (*httptest.Server, GitHubOAuthConfig) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint method = %s, want POST", r.Method)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("Accept = %q, want application/json", accept)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tokenStatus)
		w.Write([]byte(tokenBody))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer gho_testtoken" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userStatus)
		w.Write([]byte(userBody))
	})

	srv := httptest.NewServer(mux)
	config := GitHubOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/github/callback",
		TokenURL:     srv.URL + "/login/oauth/access_token",
		UserInfoURL:  srv.URL + "/user",
	}
	return srv, config
}

func TestGetLoginURL(t *testing.T) {
	p := NewGitHubOAuthProvider(GitHubOAuthConfig{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8080/auth/github/callback",
	})

	loginURL := p.GetLoginURL("state-xyz")

	if !strings.HasPrefix(loginURL, "https://github.com/login/oauth/authorize?") {
		t.Errorf("loginURL = %q, want GitHub authorize endpoint", loginURL)
	}
	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("failed to parse login URL: %v", err)
	}
	q := parsed.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-xyz" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("scope") == "" {
		t.Error("scope should be set")
	}
}

func TestExchangeCode_Success(t *testing.T) {
	srv, config := newFakeGitHub(t,
		`{"access_token":"gho_testtoken","token_type":"bearer","scope":"read:user"}`,
		`{"id":1042,"login":"octocat","name":"The Octocat","email":"octo@example.com","avatar_url":"https://avatars.example.com/u/1042","bio":"I build things."}`,
		http.StatusOK, http.StatusOK)
	defer srv.Close()

	p := NewGitHubOAuthProvider(config)
	info, err := p.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if info.ProviderUserID != "1042" {
		t.Errorf("ProviderUserID = %q, want %q", info.ProviderUserID, "1042")
	}
	if info.Username != "octocat" {
		t.Errorf("Username = %q", info.Username)
	}
	if info.Name != "The Octocat" {
		t.Errorf("Name = %q", info.Name)
	}
	if info.ImageURL != "https://avatars.example.com/u/1042" {
		t.Errorf("ImageURL = %q", info.ImageURL)
	}
	if info.Provider != "github" {
		t.Errorf("Provider = %q, want github", info.Provider)
	}
}

func TestExchangeCode_FallsBackToLoginWhenNameEmpty(t *testing.T) {
	srv, config := newFakeGitHub(t,
		`{"access_token":"gho_testtoken"}`,
		`{"id":1042,"login":"octocat"}`,
		http.StatusOK, http.StatusOK)
	defer srv.Close()

	p := NewGitHubOAuthProvider(config)
	info, err := p.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if info.Name != "octocat" {
		t.Errorf("Name = %q, want login fallback", info.Name)
	}
}

func TestExchangeCode_MissingUserIDTolerated(t *testing.T) {
	// idが取得できなくてもエラーにはしない。空のProviderUserIDを返し、
	// 上位層が投稿者未解決のセッションとして扱う。
	srv, config := newFakeGitHub(t,
		`{"access_token":"gho_testtoken"}`,
		`{"login":"octocat"}`,
		http.StatusOK, http.StatusOK)
	defer srv.Close()

	p := NewGitHubOAuthProvider(config)
	info, err := p.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if info.ProviderUserID != "" {
		t.Errorf("ProviderUserID = %q, want empty", info.ProviderUserID)
	}
}

func TestExchangeCode_TokenExchangeFailure(t *testing.T) {
	srv, config := newFakeGitHub(t,
		`{"error":"bad_verification_code"}`,
		`{}`,
		http.StatusOK, http.StatusOK)
	defer srv.Close()

	p := NewGitHubOAuthProvider(config)
	if _, err := p.ExchangeCode(context.Background(), "bad-code"); err == nil {
		t.Error("expected error for empty access token")
	}
}

func TestExchangeCode_UserInfoFailure(t *testing.T) {
	srv, config := newFakeGitHub(t,
		`{"access_token":"gho_testtoken"}`,
		`{"message":"Bad credentials"}`,
		http.StatusOK, http.StatusUnauthorized)
	defer srv.Close()

	p := NewGitHubOAuthProvider(config)
	if _, err := p.ExchangeCode(context.Background(), "auth-code"); err == nil {
		t.Error("expected error for user info failure")
	}
}
