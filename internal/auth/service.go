// Package auth はOAuth認証フロー、投稿者の冪等作成、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
// ProviderUserIDはIdP側の安定ID。取得できなかった場合は空文字列となる。
type OAuthUserInfo struct {
	ProviderUserID string
	Username       string
	Name           string
	Email          string
	ImageURL       string
	Bio            string
	Provider       string // "github" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
//
// サインイン時の投稿者解決は次の方針に従う:
//   - IdPの安定IDが取得できた場合、決定論的IDでAuthorを冪等に作成する。
//     作成に失敗した場合はサインイン自体を拒否する（孤児セッションを作らない）。
//   - 安定IDが無い場合、Author作成をスキップしサインインは許可する。
//     発行されるセッションは投稿者未解決となり、ピッチ投稿だけが拒否される。
//   - 作成後の読み取りに失敗した場合もセッション発行は続行し、
//     投稿者未解決のセッションを発行する。
type Service struct {
	oauth       OAuthProvider
	authorRepo  repository.AuthorRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	authorRepo repository.AuthorRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		authorRepo:  authorRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. 投稿者を解決する
	authorID, err := s.resolveAuthor(ctx, userInfo)
	if err != nil {
		return nil, err
	}

	// 3. セッションを発行
	session, err := s.createSession(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user signed in",
		slog.String("session_id", session.ID),
		slog.String("author_id", authorID),
		slog.String("provider", userInfo.Provider),
	)

	return session, nil
}

// resolveAuthor はサインイン中のユーザーに対応するAuthor IDを解決する。
// IdPの安定IDが無い場合は空文字列を返す（サインイン自体は成功させる）。
// Author作成の失敗はエラーとして返す（サインイン拒否）。
func (s *Service) resolveAuthor(ctx context.Context, userInfo *OAuthUserInfo) (string, error) {
	if userInfo.ProviderUserID == "" {
		slog.Warn("no stable provider user ID, issuing session without author",
			slog.String("provider", userInfo.Provider),
			slog.String("username", userInfo.Username),
		)
		return "", nil
	}

	derivedID := model.DeriveAuthorID(userInfo.ProviderUserID)

	author := &model.Author{
		ID:             derivedID,
		ProviderUserID: userInfo.ProviderUserID,
		Name:           userInfo.Name,
		Username:       userInfo.Username,
		Email:          userInfo.Email,
		ImageURL:       userInfo.ImageURL,
		Bio:            userInfo.Bio,
		CreatedAt:      time.Now(),
	}

	if err := s.authorRepo.CreateIfNotExists(ctx, author); err != nil {
		// 作成失敗時はサインインを拒否する。Authorレコードの無いセッションで
		// 投稿を受け付けるより、認証失敗として扱う方が安全側に倒れる。
		return "", fmt.Errorf("failed to upsert author: %w", err)
	}

	existing, err := s.authorRepo.FindByProviderUserID(ctx, userInfo.ProviderUserID)
	if err != nil {
		// 読み取り失敗はセッション発行を止めない。投稿者未解決として発行する。
		slog.Warn("author lookup failed, issuing session without author",
			slog.String("provider_user_id", userInfo.ProviderUserID),
			slog.String("error", err.Error()),
		)
		return "", nil
	}
	if existing != nil {
		return existing.ID, nil
	}
	return derivedID, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetSession は指定IDの有効なセッションを取得する。
// 見つからない、または期限切れの場合はnilを返す。
func (s *Service) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// CurrentAuthor はセッションから現在の投稿者プロフィールを取得する。
// セッションが無効な場合はエラーを返す。
// セッションは有効だが投稿者が未解決の場合は(nil, nil)を返す。
func (s *Service) CurrentAuthor(ctx context.Context, sessionID string) (*model.Author, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}
	if session.AuthorID == "" {
		return nil, nil
	}

	author, err := s.authorRepo.FindByID(ctx, session.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}
	return author, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, authorID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		AuthorID:  authorID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
