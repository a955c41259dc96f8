// Package trending はトレンディングプレイリストの定期再構築を提供する。
// 閲覧数上位のスタートアップを一定間隔で選出し直すバックグラウンドジョブ。
package trending

import (
	"context"
	"log/slog"
	"time"
)

// PlaylistRebuilder はプレイリスト再構築の実行インターフェース。
// playlist.Serviceの部分集合として定義する。
type PlaylistRebuilder interface {
	RebuildTrending(ctx context.Context, slug, title string, size int) error
}

// Config はトレンディングスケジューラの設定。
type Config struct {
	Slug  string // 再構築対象プレイリストのslug
	Title string // プレイリストの表示タイトル
	Size  int    // 選出するスタートアップ数
}

// Scheduler はトレンディングプレイリストの再構築をスケジューリングする。
type Scheduler struct {
	rebuilder PlaylistRebuilder
	logger    *slog.Logger
	config    Config
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// Sizeが0以下の場合はデフォルト値6を使用する。
func NewScheduler(rebuilder PlaylistRebuilder, logger *slog.Logger, config Config) *Scheduler {
	if config.Size <= 0 {
		config.Size = 6
	}
	return &Scheduler{
		rebuilder: rebuilder,
		logger:    logger,
		config:    config,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。起動直後に1回実行する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("トレンディング再構築スケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.String("slug", s.config.Slug),
		slog.Int("size", s.config.Size),
	)

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("トレンディング再構築に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("トレンディング再構築スケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("トレンディング再構築に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce はトレンディングプレイリストを1回再構築する。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	if err := s.rebuilder.RebuildTrending(ctx, s.config.Slug, s.config.Title, s.config.Size); err != nil {
		return err
	}

	duration := time.Since(start)
	s.logger.Info("トレンディング再構築が完了しました",
		slog.String("slug", s.config.Slug),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
