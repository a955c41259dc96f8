package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pitchboard/internal/model"
)

// PlaylistServiceInterface はプレイリストハンドラーが必要とするサービスインターフェース。
type PlaylistServiceInterface interface {
	GetBySlug(ctx context.Context, slug string) (*model.PlaylistWithStartups, error)
}

// playlistResponse はプレイリスト詳細のレスポンス。
type playlistResponse struct {
	Slug      string                   `json:"slug"`
	Title     string                   `json:"title"`
	UpdatedAt time.Time                `json:"updated_at"`
	Select    []startupSummaryResponse `json:"select"`
}

// PlaylistHandler はプレイリスト関連のHTTPハンドラー。
type PlaylistHandler struct {
	service PlaylistServiceInterface
}

// NewPlaylistHandler はPlaylistHandlerを生成する。
func NewPlaylistHandler(service PlaylistServiceInterface) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

// GetPlaylist はプレイリストを選出スタートアップ付きで返す。
// GET /api/playlists/:slug
func (h *PlaylistHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	playlist, err := h.service.GetBySlug(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if playlist == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPlaylistNotFoundError(slug))
		return
	}

	resp := playlistResponse{
		Slug:      playlist.Slug,
		Title:     playlist.Title,
		UpdatedAt: playlist.UpdatedAt,
		Select:    make([]startupSummaryResponse, len(playlist.Select)),
	}
	for i, s := range playlist.Select {
		resp.Select[i] = toStartupSummaryResponse(s)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
