// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, startup, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeStartupNotFound  = "STARTUP_NOT_FOUND"
	ErrCodeAuthorNotFound   = "AUTHOR_NOT_FOUND"
	ErrCodePlaylistNotFound = "PLAYLIST_NOT_FOUND"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "Sign in with GitHub and try again.",
	}
}

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
		Action:   "Check the request format and try again.",
	}
}

// NewStartupNotFoundError はスタートアップ未検出エラーを生成する。
func NewStartupNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeStartupNotFound,
		Message:  fmt.Sprintf("Startup not found: %s", id),
		Category: "startup",
		Action:   "Check the startup id.",
	}
}

// NewAuthorNotFoundError は投稿者未検出エラーを生成する。
func NewAuthorNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeAuthorNotFound,
		Message:  fmt.Sprintf("Author not found: %s", id),
		Category: "auth",
		Action:   "Check the author id.",
	}
}

// NewPlaylistNotFoundError はプレイリスト未検出エラーを生成する。
func NewPlaylistNotFoundError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodePlaylistNotFound,
		Message:  fmt.Sprintf("Playlist not found: %s", slug),
		Category: "startup",
		Action:   "Check the playlist slug.",
	}
}
