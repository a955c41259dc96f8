package pitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/repository"
	"github.com/hitoshi/pitchboard/internal/security"
)

// SubmissionValidator は投稿ペイロードの検証機能のインターフェース。
type SubmissionValidator interface {
	Validate(ctx context.Context, input SubmissionInput) *model.ValidationResult
}

// SlugResolverService はスラッグ解決機能のインターフェース。
type SlugResolverService interface {
	Resolve(ctx context.Context, title string) string
}

// MetricsRecorder はピッチ投稿のドメインメトリクスを記録するインターフェース。
type MetricsRecorder interface {
	RecordPitchCreated(category string)
	RecordPitchValidationFailed()
}

// Service はピッチ投稿のオーケストレーションを提供する。
// 認可確認 → バリデーション → スラッグ解決 → サニタイズ → 永続化の順に処理し、
// すべての結果を構造化されたCreatePitchResultとして返す。
// このメソッドからエラーが伝播することはない。失敗はすべて結果値に畳み込まれる。
type Service struct {
	validator    SubmissionValidator
	slugResolver SlugResolverService
	sanitizer    security.PitchSanitizerService
	startupRepo  repository.StartupRepository
	metrics      MetricsRecorder
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(
	validator SubmissionValidator,
	slugResolver SlugResolverService,
	sanitizer security.PitchSanitizerService,
	startupRepo repository.StartupRepository,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		validator:    validator,
		slugResolver: slugResolver,
		sanitizer:    sanitizer,
		startupRepo:  startupRepo,
		metrics:      metrics,
	}
}

// CreatePitch はピッチ投稿を処理する。
//
// 有効なセッションと解決済みの投稿者IDの両方を要求する。
// バリデーション失敗時はフィールド別エラーと要約メッセージを返す。
// 永続化失敗時は内部詳細を漏らさず定型メッセージを返し、原因はログに記録する。
func (s *Service) CreatePitch(ctx context.Context, auth model.AuthContext, input SubmissionInput) *model.CreatePitchResult {
	if !auth.SignedIn {
		return &model.CreatePitchResult{
			Status: model.StatusError,
			Error:  "Not signed in",
		}
	}
	if auth.AuthorID == "" {
		return &model.CreatePitchResult{
			Status: model.StatusError,
			Error:  "Unable to resolve author for this session",
		}
	}

	validation := s.validator.Validate(ctx, input)
	if !validation.Valid() {
		if s.metrics != nil {
			s.metrics.RecordPitchValidationFailed()
		}
		return &model.CreatePitchResult{
			Status: model.StatusError,
			Error:  summarizeFieldErrors(validation.FieldErrors),
			Errors: validation.FieldErrors,
		}
	}

	slug := s.slugResolver.Resolve(ctx, input.Title)

	now := time.Now()
	startup := &model.Startup{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(input.Title),
		Slug:        slug,
		AuthorID:    auth.AuthorID,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.Link),
		Pitch:       s.sanitizer.Sanitize(input.Pitch),
		Views:       0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.startupRepo.Create(ctx, startup); err != nil {
		slog.Error("failed to create startup",
			slog.String("author_id", auth.AuthorID),
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
		return &model.CreatePitchResult{
			Status: model.StatusError,
			Error:  "Failed to create startup",
		}
	}

	if s.metrics != nil {
		s.metrics.RecordPitchCreated(startup.Category)
	}
	slog.Info("startup created",
		slog.String("startup_id", startup.ID),
		slog.String("slug", slug),
		slog.String("author_id", auth.AuthorID),
	)

	return &model.CreatePitchResult{
		Status: model.StatusSuccess,
		ID:     startup.ID,
	}
}

// summaryFieldOrder は要約メッセージ内のフィールドの出現順序。
var summaryFieldOrder = []string{"title", "description", "category", "link", "pitch", "form"}

// summarizeFieldErrors はフィールド別エラーを単一の要約メッセージに整形する。
// 出力順序は決定的で、同一の入力に対して常に同一の文字列を返す。
func summarizeFieldErrors(fieldErrors map[string][]string) string {
	var parts []string
	for _, field := range summaryFieldOrder {
		for _, msg := range fieldErrors[field] {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}
