// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/pitchboard/internal/model"
)

// AuthorRepository は投稿者プロフィールの永続化インターフェース。
type AuthorRepository interface {
	// FindByID は指定IDのAuthorを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Author, error)

	// FindByProviderUserID は外部IdPの安定IDでAuthorを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderUserID(ctx context.Context, providerUserID string) (*model.Author, error)

	// CreateIfNotExists は決定論的IDをキーにAuthorを冪等に作成する。
	// 既に同一IDのレコードが存在する場合は何もせず成功を返す。
	// read-then-writeの競合なしに同時サインインでの重複作成を防ぐ。
	CreateIfNotExists(ctx context.Context, author *model.Author) error
}

// StartupRepository はスタートアップ（ピッチ）の永続化インターフェース。
type StartupRepository interface {
	// Create は新規スタートアップを作成する。
	Create(ctx context.Context, startup *model.Startup) error

	// FindByID は指定IDのスタートアップを投稿者情報付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.StartupWithAuthor, error)

	// ListSlugsByPrefix は指定プレフィックスで始まる既存slugを一括取得する。
	// スラグ解決の線形プローブ用（1回のクエリで全候補を取得する）。
	ListSlugsByPrefix(ctx context.Context, prefix string) ([]string, error)

	// List は作成日時の降順でスタートアップ一覧を返す。
	List(ctx context.Context, limit int) ([]model.StartupWithAuthor, error)

	// Search はタイトル・カテゴリ・投稿者名の部分一致でスタートアップを検索する。
	Search(ctx context.Context, query string, limit int) ([]model.StartupWithAuthor, error)

	// ListByAuthorID は指定投稿者のスタートアップ一覧を作成日時の降順で返す。
	ListByAuthorID(ctx context.Context, authorID string) ([]model.StartupWithAuthor, error)

	// IncrementViews は閲覧カウンターをアトミックにインクリメントし、
	// 更新後の値を返す。存在しないIDの場合は0を返す
	// （カウンターは更新後必ず1以上になるため、0は未検出を意味する）。
	IncrementViews(ctx context.Context, id string) (int, error)

	// ListTopViewedIDs は閲覧数の降順でスタートアップIDを返す。
	// トレンディングプレイリストの再構築に使用される。
	ListTopViewedIDs(ctx context.Context, limit int) ([]string, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// PlaylistRepository はプレイリストの永続化インターフェース。
type PlaylistRepository interface {
	// FindBySlug は指定slugのプレイリストを選出スタートアップ付きで取得する。
	// 見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.PlaylistWithStartups, error)

	// ReplaceItems はプレイリストをslugキーでUPSERTし、
	// 選出スタートアップを同一トランザクションで丸ごと入れ替える。
	ReplaceItems(ctx context.Context, playlist *model.Playlist, startupIDs []string) error
}
