package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pitchboard/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// メトリクス（いずれもnil可）
	HTTPMetrics    middleware.HTTPStatusRecorder
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// スタートアップ・ピッチ投稿
	StartupService StartupServiceInterface
	PitchService   PitchServiceInterface

	// プレイリスト
	PlaylistService PlaylistServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → (MetricsMiddleware) → SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）はセッションミドルウェアの外に配置する。
// 閲覧系APIは任意セッション（匿名可）、ピッチ投稿は必須セッション + CSRF検証とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	startupHandler := NewStartupHandler(deps.StartupService, deps.PitchService)
	playlistHandler := NewPlaylistHandler(deps.PlaylistService)

	// --- セッション不要のルート ---

	// ヘルスチェック
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheusメトリクス
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.Login)
		r.Get("/github/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 閲覧系ルート（匿名可） ---
	// ミドルウェアスタック: OptionalSession → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalSession(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/startups", func(r chi.Router) {
			r.Get("/", startupHandler.ListStartups)

			// POST /api/startups - ピッチ投稿
			// セッション必須 + CSRF検証 + 投稿専用レート制限を適用
			r.With(
				middleware.NewRequireSession(deps.SessionFinder),
				middleware.NewCSRFMiddleware(deps.CSRFConfig),
				deps.RateLimiter.PitchCreateMiddleware(),
			).Post("/", startupHandler.CreatePitch)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", startupHandler.GetStartup)
				r.Post("/views", startupHandler.RecordView)
			})
		})

		r.Route("/api/authors/{id}", func(r chi.Router) {
			r.Get("/", startupHandler.GetAuthor)
			r.Get("/startups", startupHandler.ListAuthorStartups)
		})

		r.Get("/api/playlists/{slug}", playlistHandler.GetPlaylist)
	})

	return r
}
