package pitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// slugFallback はタイトルがスラッグ化後に空になった場合の代替値。
const slugFallback = "untitled"

// SlugLister は既存スラッグの列挙機能を提供するインターフェース。
// StartupRepositoryのサブセット。
type SlugLister interface {
	ListSlugsByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Slugify はタイトルをURL安全なスラッグに変換する。
// 小文字化し、英数字以外を除去、空白・ハイフン・アンダースコアの連続を
// 単一のハイフンに縮約する。先頭・末尾のハイフンは残らない。
// 結果が空の場合は "untitled" を返す。
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
		case r == ' ' || r == '-' || r == '_':
			pendingHyphen = true
		}
	}

	slug := b.String()
	if slug == "" {
		return slugFallback
	}
	return slug
}

// SlugResolver はタイトルから重複しないスラッグを解決する。
// 既存スラッグとの衝突時は base-1, base-2, ... と線形に探索し、
// 既存スラッグの取得に失敗した場合はタイムスタンプサフィックスに退避する。
// Resolveは決してエラーを返さない。スラッグ解決の失敗で投稿を止めない。
type SlugResolver struct {
	slugs SlugLister

	// テスト用にオーバーライド可能な現在時刻
	now func() time.Time
}

// NewSlugResolver はSlugResolverを生成する。
func NewSlugResolver(slugs SlugLister) *SlugResolver {
	return &SlugResolver{
		slugs: slugs,
		now:   time.Now,
	}
}

// Resolve はタイトルに対する一意なスラッグを返す。
func (r *SlugResolver) Resolve(ctx context.Context, title string) string {
	base := Slugify(title)

	existing, err := r.slugs.ListSlugsByPrefix(ctx, base)
	if err != nil {
		// ストア到達不能時はミリ秒タイムスタンプで実質的に一意なスラッグを生成する
		slog.Warn("slug lookup failed, falling back to timestamp suffix",
			slog.String("base", base),
			slog.String("error", err.Error()),
		)
		return fmt.Sprintf("%s-%d", base, r.now().UnixMilli())
	}

	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
