// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// expires_atを超過したセッションを日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionDeleter は期限切れセッションの削除インターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupMetrics は削除件数のメトリクスを記録するインターフェース。
type CleanupMetrics interface {
	RecordSessionsCleaned(count int64)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions SessionDeleter
	logger   *slog.Logger
	metrics  CleanupMetrics
}

// NewCleanupJob は新しいCleanupJobを生成する。metricsはnil可。
func NewCleanupJob(sessions SessionDeleter, logger *slog.Logger, metrics CleanupMetrics) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsCleaned(deletedCount)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は指定間隔のティッカーでクリーンアップジョブを起動する。
// コンテキストがキャンセルされるまで実行を継続する。起動直後に1回実行する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("セッションクリーンアップスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	if err := j.Run(ctx); err != nil {
		j.logger.Error("セッションクリーンアップに失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("セッションクリーンアップスケジューラを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("セッションクリーンアップに失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
