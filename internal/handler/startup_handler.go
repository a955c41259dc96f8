package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pitchboard/internal/middleware"
	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/pitch"
)

// StartupServiceInterface はスタートアップハンドラーが必要とするサービスインターフェース。
type StartupServiceInterface interface {
	List(ctx context.Context, query string, limit int) ([]model.StartupWithAuthor, error)
	GetByID(ctx context.Context, id string) (*model.StartupWithAuthor, error)
	RecordView(ctx context.Context, id string) (int, error)
	GetAuthor(ctx context.Context, authorID string) (*model.Author, error)
	ListByAuthor(ctx context.Context, authorID string) ([]model.StartupWithAuthor, error)
}

// PitchServiceInterface はピッチ投稿ハンドラーが必要とするサービスインターフェース。
type PitchServiceInterface interface {
	CreatePitch(ctx context.Context, auth model.AuthContext, input pitch.SubmissionInput) *model.CreatePitchResult
}

// --- レスポンス型 ---

// apiErrorResponse は統一エラーフォーマットのJSONレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// authorRefResponse は一覧・詳細に埋め込む投稿者の参照情報。
type authorRefResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}

// startupSummaryResponse はスタートアップ一覧の1件分。
type startupSummaryResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url"`
	Views       int               `json:"views"`
	CreatedAt   time.Time         `json:"created_at"`
	Author      authorRefResponse `json:"author"`
}

// startupDetailResponse はスタートアップ詳細。一覧にピッチ本文を加えたもの。
type startupDetailResponse struct {
	startupSummaryResponse
	Pitch string `json:"pitch"`
}

// startupListResponse はスタートアップ一覧のレスポンス。
type startupListResponse struct {
	Startups []startupSummaryResponse `json:"startups"`
}

// viewsResponse は閲覧カウントのレスポンス。
type viewsResponse struct {
	Views int `json:"views"`
}

// authorResponse は投稿者プロフィールのレスポンス。
type authorResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
}

// StartupHandler はスタートアップ閲覧・投稿関連のHTTPハンドラー。
type StartupHandler struct {
	startups StartupServiceInterface
	pitches  PitchServiceInterface
}

// NewStartupHandler はStartupHandlerを生成する。
func NewStartupHandler(startups StartupServiceInterface, pitches PitchServiceInterface) *StartupHandler {
	return &StartupHandler{
		startups: startups,
		pitches:  pitches,
	}
}

// ListStartups はスタートアップ一覧を返す。queryで部分一致検索。
// GET /api/startups?query=xxx&limit=50
func (h *StartupHandler) ListStartups(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.startups.List(r.Context(), query, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := startupListResponse{Startups: make([]startupSummaryResponse, len(results))}
	for i, s := range results {
		resp.Startups[i] = toStartupSummaryResponse(s)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetStartup はスタートアップ詳細をピッチ本文付きで返す。
// GET /api/startups/:id
func (h *StartupHandler) GetStartup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	startup, err := h.startups.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if startup == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewStartupNotFoundError(id))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(startupDetailResponse{
		startupSummaryResponse: toStartupSummaryResponse(*startup),
		Pitch:                  startup.Pitch,
	})
}

// RecordView は閲覧カウンターをインクリメントし更新後の値を返す。
// POST /api/startups/:id/views
func (h *StartupHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	views, err := h.startups.RecordView(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	// カウンターは更新後必ず1以上になるため、0は未検出を意味する
	if views == 0 {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewStartupNotFoundError(id))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(viewsResponse{Views: views})
}

// CreatePitch はピッチを投稿する。
// POST /api/startups （フォームエンコード: title, description, category, link, pitch）
//
// 結果は常に構造化されたCreatePitchResultとして返し、
// ステータスコードだけを失敗の種別に応じて変える。
func (h *StartupHandler) CreatePitch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("failed to parse form data"))
		return
	}

	input := pitch.SubmissionInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
		Link:        r.PostFormValue("link"),
		Pitch:       r.PostFormValue("pitch"),
	}

	auth := middleware.AuthContextFromContext(r.Context())
	result := h.pitches.CreatePitch(r.Context(), auth, input)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(createPitchStatusCode(result))
	json.NewEncoder(w).Encode(result)
}

// createPitchStatusCode はCreatePitchResultからHTTPステータスコードを決定する。
func createPitchStatusCode(result *model.CreatePitchResult) int {
	if result.Status == model.StatusSuccess {
		return http.StatusCreated
	}
	switch {
	case result.Error == "Not signed in":
		return http.StatusUnauthorized
	case result.Error == "Unable to resolve author for this session":
		return http.StatusForbidden
	case len(result.Errors) > 0:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// GetAuthor は投稿者プロフィールを返す。
// GET /api/authors/:id
func (h *StartupHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	author, err := h.startups.GetAuthor(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if author == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAuthorNotFoundError(id))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAuthorResponse(author))
}

// ListAuthorStartups は指定投稿者のスタートアップ一覧を返す。
// GET /api/authors/:id/startups
func (h *StartupHandler) ListAuthorStartups(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	results, err := h.startups.ListByAuthor(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := startupListResponse{Startups: make([]startupSummaryResponse, len(results))}
	for i, s := range results {
		resp.Startups[i] = toStartupSummaryResponse(s)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- ヘルパー関数 ---

// toStartupSummaryResponse はmodel.StartupWithAuthorからAPIレスポンスに変換する。
func toStartupSummaryResponse(s model.StartupWithAuthor) startupSummaryResponse {
	return startupSummaryResponse{
		ID:          s.ID,
		Title:       s.Title,
		Slug:        s.Slug,
		Category:    s.Category,
		Description: s.Description,
		ImageURL:    s.ImageURL,
		Views:       s.Views,
		CreatedAt:   s.CreatedAt,
		Author: authorRefResponse{
			ID:       s.AuthorID,
			Name:     s.AuthorName,
			Username: s.AuthorUsername,
			ImageURL: s.AuthorImageURL,
		},
	}
}

// toAuthorResponse はmodel.AuthorからAPIレスポンスに変換する。
func toAuthorResponse(author *model.Author) authorResponse {
	return authorResponse{
		ID:       author.ID,
		Name:     author.Name,
		Username: author.Username,
		ImageURL: author.ImageURL,
		Bio:      author.Bio,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeStartupNotFound, model.ErrCodeAuthorNotFound, model.ErrCodePlaylistNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
