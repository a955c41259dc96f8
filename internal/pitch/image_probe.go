package pitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hitoshi/pitchboard/internal/security"
)

// imageExtPattern は画像として認識するURLパス拡張子。
var imageExtPattern = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp|avif|svg)$`)

// defaultProbeTimeout はプローブのデフォルトタイムアウト。
const defaultProbeTimeout = 10 * time.Second

// ProbeMetrics はプローブのレイテンシメトリクスを記録するインターフェース。
type ProbeMetrics interface {
	RecordImageProbeLatency(duration time.Duration)
}

// HTTPImageProbe は画像URLのメタデータのみのネットワーク検証を行う。
// HEADリクエストをSSRF防止機能付きクライアント経由で発行し、
// ステータスとContent-Type（またはパス拡張子）を確認する。
// リトライは行わない。到達不能はバリデーションエラーとして扱う。
type HTTPImageProbe struct {
	ssrfGuard security.SSRFGuardService
	timeout   time.Duration
	metrics   ProbeMetrics

	// テスト用にオーバーライド可能なクライアント
	client *http.Client
}

// NewHTTPImageProbe はHTTPImageProbeを生成する。
// timeoutが0以下の場合はデフォルト値を使用する。
func NewHTTPImageProbe(ssrfGuard security.SSRFGuardService, timeout time.Duration) *HTTPImageProbe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &HTTPImageProbe{
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
	}
}

// SetMetrics はプローブのレイテンシメトリクス記録を有効にする。
func (p *HTTPImageProbe) SetMetrics(metrics ProbeMetrics) {
	p.metrics = metrics
}

// ProbeImage はリンク先が画像リソースであることを検証する。
// 検証失敗時はそのままlinkフィールドに表示できるメッセージをエラーとして返す。
// トランスポート失敗（ネットワークエラー、タイムアウト、SSRFブロック）は
// "Unable to reach the image URL" に畳み込まれる。
func (p *HTTPImageProbe) ProbeImage(ctx context.Context, rawURL string) error {
	if p.ssrfGuard != nil {
		if err := p.ssrfGuard.ValidateURL(rawURL); err != nil {
			slog.Warn("image probe blocked by URL validation",
				slog.String("url", rawURL),
				slog.String("error", err.Error()),
			)
			return errors.New("Unable to reach the image URL")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return errors.New("Unable to reach the image URL")
	}
	req.Header.Set("User-Agent", "Pitchboard/1.0")

	start := time.Now()
	resp, err := p.httpClient().Do(req)
	if p.metrics != nil {
		p.metrics.RecordImageProbeLatency(time.Since(start))
	}
	if err != nil {
		slog.Warn("image probe request failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return errors.New("Unable to reach the image URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Image URL not reachable (status %d)", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		return nil
	}
	if parsed, parseErr := url.Parse(rawURL); parseErr == nil && imageExtPattern.MatchString(parsed.Path) {
		return nil
	}

	return errors.New("URL must point to an image (content-type image/* or common image extension)")
}

// httpClient はプローブに使用するHTTPクライアントを返す。
// 未設定の場合はSSRF防止機能付きクライアントを生成して保持する。
func (p *HTTPImageProbe) httpClient() *http.Client {
	if p.client != nil {
		return p.client
	}
	if p.ssrfGuard != nil {
		p.client = p.ssrfGuard.NewSafeClient(p.timeout)
	} else {
		p.client = &http.Client{Timeout: p.timeout}
	}
	return p.client
}

// compile-time interface check
var _ ImageProber = (*HTTPImageProbe)(nil)
