package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pitchboard/internal/model"
)

// PostgresAuthorRepo はPostgreSQLを使用した投稿者リポジトリ。
type PostgresAuthorRepo struct {
	db *sql.DB
}

// NewPostgresAuthorRepo はPostgresAuthorRepoを生成する。
func NewPostgresAuthorRepo(db *sql.DB) *PostgresAuthorRepo {
	return &PostgresAuthorRepo{db: db}
}

// FindByID は指定IDのAuthorを取得する。見つからない場合はnilを返す。
func (r *PostgresAuthorRepo) FindByID(ctx context.Context, id string) (*model.Author, error) {
	author := &model.Author{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, provider_user_id, name, username, email, image_url, bio, created_at
		 FROM authors WHERE id = $1`,
		id,
	).Scan(&author.ID, &author.ProviderUserID, &author.Name, &author.Username,
		&author.Email, &author.ImageURL, &author.Bio, &author.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find author by ID: %w", err)
	}

	return author, nil
}

// FindByProviderUserID は外部IdPの安定IDでAuthorを検索する。見つからない場合はnilを返す。
func (r *PostgresAuthorRepo) FindByProviderUserID(ctx context.Context, providerUserID string) (*model.Author, error) {
	author := &model.Author{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, provider_user_id, name, username, email, image_url, bio, created_at
		 FROM authors WHERE provider_user_id = $1`,
		providerUserID,
	).Scan(&author.ID, &author.ProviderUserID, &author.Name, &author.Username,
		&author.Email, &author.ImageURL, &author.Bio, &author.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find author by provider user ID: %w", err)
	}

	return author, nil
}

// CreateIfNotExists は決定論的IDをキーにAuthorを冪等に作成する。
// ON CONFLICT DO NOTHINGにより、同時サインインでも重複レコードは発生しない。
func (r *PostgresAuthorRepo) CreateIfNotExists(ctx context.Context, author *model.Author) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO authors (id, provider_user_id, name, username, email, image_url, bio, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		author.ID, author.ProviderUserID, author.Name, author.Username,
		author.Email, author.ImageURL, author.Bio, author.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AuthorRepository = (*PostgresAuthorRepo)(nil)
