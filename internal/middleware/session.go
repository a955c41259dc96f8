// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/pitchboard/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// authContextKey はリクエストコンテキストに認証状態を格納するためのキー。
var authContextKey = contextKey("auth_context")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewOptionalSession はHTTP Only Cookieからセッションを読み取り、
// 認証状態をAuthContextとしてリクエストコンテキストに注入するミドルウェアを返す。
// 未認証リクエストも拒否せず、空のAuthContextで通過させる。
// 公開エンドポイント（一覧・詳細等）の前段に配置する。
func NewOptionalSession(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := resolveAuthContext(r, sessionFinder)
			ctx := context.WithValue(r.Context(), authContextKey, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRequireSession は有効なセッションを要求するミドルウェアを返す。
// 未認証リクエストには401 Unauthorizedを統一エラーフォーマットで返す。
// 投稿者未解決のセッションは通過させる。投稿者の要否は各サービスが判断する。
func NewRequireSession(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := resolveAuthContext(r, sessionFinder)
			if !auth.SignedIn {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			ctx := context.WithValue(r.Context(), authContextKey, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveAuthContext はCookieのセッションIDからAuthContextを構築する。
// Cookie欠落、セッション未検出、検索エラーはいずれも未認証として扱う。
func resolveAuthContext(r *http.Request, sessionFinder SessionFinder) model.AuthContext {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return model.AuthContext{}
	}

	session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to find session",
			slog.String("error", err.Error()),
		)
		return model.AuthContext{}
	}
	if session == nil {
		return model.AuthContext{}
	}

	return model.AuthContext{
		SignedIn:  true,
		AuthorID:  session.AuthorID,
		SessionID: session.ID,
	}
}

// AuthContextFromContext はリクエストコンテキストから認証状態を取得する。
// セッションミドルウェアを通過していない場合は空のAuthContextを返す。
func AuthContextFromContext(ctx context.Context) model.AuthContext {
	auth, ok := ctx.Value(authContextKey).(model.AuthContext)
	if !ok {
		return model.AuthContext{}
	}
	return auth
}

// ContextWithAuthContext はコンテキストに認証状態を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAuthContext(ctx context.Context, auth model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}
