// Package pitch はピッチ投稿のバリデーションと永続化のドメインロジックを提供する。
package pitch

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/pitchboard/internal/model"
)

// SubmissionInput はバリデーション対象のピッチ投稿ペイロード。
// フォームから抽出された時点ですべて文字列に正規化されている
// （欠落フィールドは空文字列になり、自然に長さ検証で弾かれる）。
type SubmissionInput struct {
	Title       string
	Description string
	Category    string
	Link        string
	Pitch       string
}

// ImageProber はリンク先が画像リソースであることをネットワーク検証するインターフェース。
// 検証失敗時はユーザー向けメッセージをエラーとして返す。
// トランスポートレベルの失敗もlinkフィールドのエラーに畳み込まれ、伝播しない。
type ImageProber interface {
	ProbeImage(ctx context.Context, rawURL string) error
}

// Validator はピッチ投稿の多段バリデーションを提供する。
// 構造的ルール（長さ・URL形式）をすべて収集した後、
// 構造的に妥当な場合のみネットワーク段（画像URLプローブ）を実行する。
type Validator struct {
	prober ImageProber
}

// NewValidator はValidatorを生成する。
func NewValidator(prober ImageProber) *Validator {
	return &Validator{prober: prober}
}

// Validate は投稿ペイロードを検証し、フィールドごとのエラーを収集して返す。
// 構造的違反は短絡せずすべて収集される（呼び出し側が全問題を一度に表示できるように）。
// ネットワーク段は構造的検証をすべて通過した場合のみ実行される。
func (v *Validator) Validate(ctx context.Context, input SubmissionInput) *model.ValidationResult {
	result := &model.ValidationResult{}

	checkLength(result, "title", input.Title, 3, 100,
		"Title must be at least 3 characters",
		"Title must be at most 100 characters")

	checkLength(result, "description", input.Description, 20, 500,
		"Description must be at least 20 characters",
		"Description must be at most 500 characters")

	checkLength(result, "category", input.Category, 3, 20,
		"Category must be at least 3 characters",
		"Category must be at most 20 characters")

	if !isValidHTTPURL(input.Link) {
		result.AddFieldError("link", "Please enter a valid http(s) URL")
	}

	if utf8.RuneCountInString(strings.TrimSpace(input.Pitch)) < 10 {
		result.AddFieldError("pitch", "Pitch must be at least 10 characters")
	}

	// ネットワーク段: 構造的に妥当な投稿のみプローブする
	if result.Valid() && v.prober != nil {
		if err := v.prober.ProbeImage(ctx, strings.TrimSpace(input.Link)); err != nil {
			result.AddFieldError("link", err.Error())
		}
	}

	return result
}

// checkLength はトリム後の文字数が[min,max]に収まることを検証する。
func checkLength(result *model.ValidationResult, field, value string, min, max int, minMsg, maxMsg string) {
	length := utf8.RuneCountInString(strings.TrimSpace(value))
	if length < min {
		result.AddFieldError(field, minMsg)
	}
	if length > max {
		result.AddFieldError(field, maxMsg)
	}
}

// isValidHTTPURL はhttp/httpsスキームの絶対URLであることを検証する。
func isValidHTTPURL(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
