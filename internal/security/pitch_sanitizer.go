// Package security はアプリケーションのセキュリティ機能を提供する。
//
// PitchSanitizerService はピッチ本文（Markdown）に埋め込まれた生HTMLを
// サニタイズし、XSS攻撃からレンダリング側を保護する。
// bluemondayの許可リストベースのポリシーで安全なタグと属性のみを通過させる。
// Markdownの記法そのもの（#、*、[]()等）はHTMLではないため影響を受けない。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// PitchSanitizerService はピッチ本文のサニタイズ機能のインターフェースを定義する。
// スタートアップドキュメントの保存前に使用される。
type PitchSanitizerService interface {
	// Sanitize はピッチ本文中の生HTMLをサニタイズして返す。
	// 許可タグのみを通過させ、script/iframe/styleタグとon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawPitch string) string
}

// pitchSanitizer はPitchSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type pitchSanitizer struct {
	policy *bluemonday.Policy
}

// NewPitchSanitizer はPitchSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img,
//     h1-h4, table, thead, tbody, tr, th, td（Markdownレンダリング結果と整合）
//   - aタグ: href許可、target="_blank" と rel="noopener noreferrer" を強制付与
//   - imgのsrc属性: httpsスキームのみ許可
func NewPitchSanitizer() *pitchSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
		"h1", "h2", "h3", "h4",
		"table", "thead", "tbody", "tr", "th", "td",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &pitchSanitizer{
		policy: p,
	}
}

// Sanitize はピッチ本文中の生HTMLをサニタイズして返す。
func (s *pitchSanitizer) Sanitize(rawPitch string) string {
	return s.policy.Sanitize(rawPitch)
}
