package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// PlaylistHandler exposes the playlist endpoints.
type PlaylistHandler struct {
	Playlists *services.PlaylistService
}

// Create handles POST /playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.PlaylistInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	playlist, err := h.Playlists.Create(ctx, actorID(r), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.Created(ctx, w, "Playlist created successfully", playlist)
}

// Get handles GET /playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.Get(ctx, actorID(r), chi.URLParam(r, "playlistId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Playlist fetched successfully", playlist)
}

// ListByUser handles GET /playlists/user/{userId}.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlists, err := h.Playlists.ListByUser(ctx, actorID(r), chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "User playlists fetched successfully", playlists)
}

// Update handles PATCH /playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.PlaylistInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	playlist, err := h.Playlists.Update(ctx, actorID(r), chi.URLParam(r, "playlistId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Playlist updated successfully", playlist)
}

// Delete handles DELETE /playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.Delete(ctx, actorID(r), chi.URLParam(r, "playlistId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Playlist deleted successfully", playlist)
}

// AddVideo handles PATCH /playlists/{playlistId}/add/{videoId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.AddVideo(ctx, actorID(r), chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Video added to playlist", playlist)
}

// RemoveVideo handles PATCH /playlists/{playlistId}/remove/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.RemoveVideo(ctx, actorID(r), chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Video removed from playlist", playlist)
}
