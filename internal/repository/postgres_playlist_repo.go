package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pitchboard/internal/model"
)

// PostgresPlaylistRepo はPostgreSQLを使用したプレイリストリポジトリ。
type PostgresPlaylistRepo struct {
	db *sql.DB
}

// NewPostgresPlaylistRepo はPostgresPlaylistRepoを生成する。
func NewPostgresPlaylistRepo(db *sql.DB) *PostgresPlaylistRepo {
	return &PostgresPlaylistRepo{db: db}
}

// FindBySlug は指定slugのプレイリストを選出スタートアップ付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresPlaylistRepo) FindBySlug(ctx context.Context, slug string) (*model.PlaylistWithStartups, error) {
	playlist := &model.PlaylistWithStartups{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, slug, title, created_at, updated_at FROM playlists WHERE slug = $1`,
		slug,
	).Scan(&playlist.ID, &playlist.Slug, &playlist.Title, &playlist.CreatedAt, &playlist.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find playlist: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+startupWithAuthorColumns+`
		 FROM playlist_items pi
		 JOIN startups s ON s.id = pi.startup_id
		 JOIN authors a ON a.id = s.author_id
		 WHERE pi.playlist_id = $1
		 ORDER BY pi.position`,
		playlist.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist items: %w", err)
	}
	defer rows.Close()

	selected, err := collectStartupsWithAuthor(rows)
	if err != nil {
		return nil, err
	}
	playlist.Select = selected

	return playlist, nil
}

// ReplaceItems はプレイリストをslugキーでUPSERTし、
// 選出スタートアップを同一トランザクションで丸ごと入れ替える。
func (r *PostgresPlaylistRepo) ReplaceItems(ctx context.Context, playlist *model.Playlist, startupIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// プレイリスト本体をUPSERT（既存slugの場合はタイトルと更新日時のみ更新）
	var playlistID string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO playlists (id, slug, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		playlist.ID, playlist.Slug, playlist.Title, playlist.CreatedAt, playlist.UpdatedAt,
	).Scan(&playlistID)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist: %w", err)
	}

	// 既存の選出を全削除してから再挿入
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_items WHERE playlist_id = $1`,
		playlistID,
	); err != nil {
		return fmt.Errorf("failed to clear playlist items: %w", err)
	}

	for i, startupID := range startupIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlist_items (playlist_id, startup_id, position) VALUES ($1, $2, $3)`,
			playlistID, startupID, i,
		); err != nil {
			return fmt.Errorf("failed to insert playlist item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ PlaylistRepository = (*PostgresPlaylistRepo)(nil)
