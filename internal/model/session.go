// Package model はドメインモデルを定義する。
package model

import "time"

// Session はユーザーのログインセッションを表す。
// AuthorIDはサインイン時に解決された内部Author IDを保持する。
// 外部アサーションに利用可能なIDが無かった場合は空文字列となり、
// その場合でもセッション自体は有効（投稿は不可）。
type Session struct {
	ID        string
	AuthorID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthContext はリクエスト1件分の認証状態を明示的に運ぶ値。
// グローバルなセッション参照の代わりに、ハンドラーからサービスへ引数として渡す。
// SignedInがtrueでもAuthorIDが空の場合がある（投稿者未解決セッション）。
type AuthContext struct {
	SignedIn  bool
	AuthorID  string
	SessionID string
}
