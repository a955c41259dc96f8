// Package playlist は編集プレイリスト（スタートアップの選集）のドメインロジックを提供する。
package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/repository"
)

// Service はプレイリストの取得と再構築を提供する。
type Service struct {
	playlistRepo repository.PlaylistRepository
	startupRepo  repository.StartupRepository
}

// NewService はServiceを生成する。
func NewService(playlistRepo repository.PlaylistRepository, startupRepo repository.StartupRepository) *Service {
	return &Service{
		playlistRepo: playlistRepo,
		startupRepo:  startupRepo,
	}
}

// GetBySlug は指定slugのプレイリストを選出スタートアップ付きで返す。
// 見つからない場合はnilを返す。
func (s *Service) GetBySlug(ctx context.Context, slug string) (*model.PlaylistWithStartups, error) {
	playlist, err := s.playlistRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to find playlist: %w", err)
	}
	return playlist, nil
}

// RebuildTrending は閲覧数上位のスタートアップでプレイリストを再構築する。
// プレイリストはslugキーでUPSERTされ、選出は丸ごと入れ替わる。
func (s *Service) RebuildTrending(ctx context.Context, slug, title string, size int) error {
	ids, err := s.startupRepo.ListTopViewedIDs(ctx, size)
	if err != nil {
		return fmt.Errorf("failed to list top viewed startups: %w", err)
	}

	playlist := &model.Playlist{
		ID:        uuid.New().String(),
		Slug:      slug,
		Title:     title,
		UpdatedAt: time.Now(),
	}

	if err := s.playlistRepo.ReplaceItems(ctx, playlist, ids); err != nil {
		return fmt.Errorf("failed to replace playlist items: %w", err)
	}

	slog.Info("trending playlist rebuilt",
		slog.String("slug", slug),
		slog.Int("selected", len(ids)),
	)
	return nil
}
