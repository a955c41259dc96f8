package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pitchboard/internal/model"
)

// startupWithAuthorColumns はスタートアップと投稿者をJOINした際のSELECT句。
const startupWithAuthorColumns = `
	s.id, s.title, s.slug, s.author_id, s.category, s.description,
	s.image_url, s.pitch, s.views, s.created_at, s.updated_at,
	a.name, a.username, a.image_url`

// PostgresStartupRepo はPostgreSQLを使用したスタートアップリポジトリ。
type PostgresStartupRepo struct {
	db *sql.DB
}

// NewPostgresStartupRepo はPostgresStartupRepoを生成する。
func NewPostgresStartupRepo(db *sql.DB) *PostgresStartupRepo {
	return &PostgresStartupRepo{db: db}
}

// Create は新規スタートアップを作成する。
// slugのUNIQUE制約違反はそのままエラーとして返す（呼び出し側でログされる）。
func (r *PostgresStartupRepo) Create(ctx context.Context, startup *model.Startup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO startups (id, title, slug, author_id, category, description, image_url, pitch, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		startup.ID, startup.Title, startup.Slug, startup.AuthorID, startup.Category,
		startup.Description, startup.ImageURL, startup.Pitch, startup.Views,
		startup.CreatedAt, startup.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert startup: %w", err)
	}
	return nil
}

// FindByID は指定IDのスタートアップを投稿者情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresStartupRepo) FindByID(ctx context.Context, id string) (*model.StartupWithAuthor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+startupWithAuthorColumns+`
		 FROM startups s
		 JOIN authors a ON a.id = s.author_id
		 WHERE s.id = $1`,
		id,
	)

	s, err := scanStartupWithAuthor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find startup by ID: %w", err)
	}
	return s, nil
}

// ListSlugsByPrefix は指定プレフィックスで始まる既存slugを一括取得する。
func (r *PostgresStartupRepo) ListSlugsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slug FROM startups WHERE slug LIKE $1 || '%'`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slugs: %w", err)
	}

	return slugs, nil
}

// List は作成日時の降順でスタートアップ一覧を返す。
func (r *PostgresStartupRepo) List(ctx context.Context, limit int) ([]model.StartupWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+startupWithAuthorColumns+`
		 FROM startups s
		 JOIN authors a ON a.id = s.author_id
		 ORDER BY s.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	defer rows.Close()

	return collectStartupsWithAuthor(rows)
}

// Search はタイトル・カテゴリ・投稿者名の部分一致でスタートアップを検索する。
func (r *PostgresStartupRepo) Search(ctx context.Context, query string, limit int) ([]model.StartupWithAuthor, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+startupWithAuthorColumns+`
		 FROM startups s
		 JOIN authors a ON a.id = s.author_id
		 WHERE s.title ILIKE $1 OR s.category ILIKE $1 OR a.name ILIKE $1
		 ORDER BY s.created_at DESC
		 LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search startups: %w", err)
	}
	defer rows.Close()

	return collectStartupsWithAuthor(rows)
}

// ListByAuthorID は指定投稿者のスタートアップ一覧を作成日時の降順で返す。
func (r *PostgresStartupRepo) ListByAuthorID(ctx context.Context, authorID string) ([]model.StartupWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+startupWithAuthorColumns+`
		 FROM startups s
		 JOIN authors a ON a.id = s.author_id
		 WHERE s.author_id = $1
		 ORDER BY s.created_at DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups by author: %w", err)
	}
	defer rows.Close()

	return collectStartupsWithAuthor(rows)
}

// IncrementViews は閲覧カウンターをアトミックにインクリメントし、更新後の値を返す。
// 存在しないIDの場合は0を返す。
func (r *PostgresStartupRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	var views int
	err := r.db.QueryRowContext(ctx,
		`UPDATE startups SET views = views + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING views`,
		id,
	).Scan(&views)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}

	return views, nil
}

// ListTopViewedIDs は閲覧数の降順でスタートアップIDを返す。
func (r *PostgresStartupRepo) ListTopViewedIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM startups ORDER BY views DESC, created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list top viewed startups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan startup id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate startup ids: %w", err)
	}

	return ids, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanStartupWithAuthor は1行をStartupWithAuthorに読み込む。
func scanStartupWithAuthor(row rowScanner) (*model.StartupWithAuthor, error) {
	s := &model.StartupWithAuthor{}
	err := row.Scan(
		&s.ID, &s.Title, &s.Slug, &s.AuthorID, &s.Category, &s.Description,
		&s.ImageURL, &s.Pitch, &s.Views, &s.CreatedAt, &s.UpdatedAt,
		&s.AuthorName, &s.AuthorUsername, &s.AuthorImageURL,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// collectStartupsWithAuthor は結果セット全体をスライスに読み込む。
func collectStartupsWithAuthor(rows *sql.Rows) ([]model.StartupWithAuthor, error) {
	var startups []model.StartupWithAuthor
	for rows.Next() {
		s, err := scanStartupWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan startup: %w", err)
		}
		startups = append(startups, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate startups: %w", err)
	}
	return startups, nil
}

// compile-time interface check
var _ StartupRepository = (*PostgresStartupRepo)(nil)
