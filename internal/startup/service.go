// Package startup はスタートアップ一覧・検索・閲覧カウントのドメインロジックを提供する。
package startup

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ViewMetrics は閲覧カウントのメトリクスを記録するインターフェース。
type ViewMetrics interface {
	RecordStartupView()
}

// Service はスタートアップの閲覧系ビジネスロジックを提供する。
type Service struct {
	startupRepo repository.StartupRepository
	authorRepo  repository.AuthorRepository
	metrics     ViewMetrics
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(startupRepo repository.StartupRepository, authorRepo repository.AuthorRepository, metrics ViewMetrics) *Service {
	return &Service{
		startupRepo: startupRepo,
		authorRepo:  authorRepo,
		metrics:     metrics,
	}
}

// List はスタートアップ一覧を返す。
// queryが空でない場合はタイトル・カテゴリ・投稿者名の部分一致検索となる。
func (s *Service) List(ctx context.Context, query string, limit int) ([]model.StartupWithAuthor, error) {
	limit = clampLimit(limit)

	query = strings.TrimSpace(query)
	if query != "" {
		results, err := s.startupRepo.Search(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to search startups: %w", err)
		}
		return results, nil
	}

	results, err := s.startupRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	return results, nil
}

// GetByID は指定IDのスタートアップを投稿者情報付きで返す。
// 見つからない場合はnilを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.StartupWithAuthor, error) {
	startup, err := s.startupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find startup: %w", err)
	}
	return startup, nil
}

// RecordView は閲覧カウンターをインクリメントし更新後の値を返す。
// カウンターは更新後必ず1以上になるため、戻り値0は未検出を意味する。
func (s *Service) RecordView(ctx context.Context, id string) (int, error) {
	views, err := s.startupRepo.IncrementViews(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	if views > 0 && s.metrics != nil {
		s.metrics.RecordStartupView()
	}
	return views, nil
}

// GetAuthor は投稿者プロフィールを返す。見つからない場合はnilを返す。
func (s *Service) GetAuthor(ctx context.Context, authorID string) (*model.Author, error) {
	author, err := s.authorRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}
	return author, nil
}

// ListByAuthor は指定投稿者のスタートアップ一覧を返す。
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]model.StartupWithAuthor, error) {
	results, err := s.startupRepo.ListByAuthorID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups by author: %w", err)
	}
	return results, nil
}

// clampLimit はlimitを有効範囲に収める。
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
