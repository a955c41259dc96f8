// Package model はドメインモデルを定義する。
package model

import "time"

// Startup はユーザーが投稿したピッチを表す。
type Startup struct {
	ID          string
	Title       string
	Slug        string
	AuthorID    string
	Category    string
	Description string
	ImageURL    string
	Pitch       string // サニタイズ済みMarkdown
	Views       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StartupWithAuthor はスタートアップと投稿者プロフィールを結合したモデル。
// 一覧・詳細APIのレスポンス構築に使用される。
type StartupWithAuthor struct {
	Startup
	AuthorName     string
	AuthorUsername string
	AuthorImageURL string
}

// Playlist はキュレーションされたスタートアップの選集を表す。
type Playlist struct {
	ID        string
	Slug      string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlaylistWithStartups はプレイリストと選出されたスタートアップを結合したモデル。
type PlaylistWithStartups struct {
	Playlist
	Select []StartupWithAuthor
}
