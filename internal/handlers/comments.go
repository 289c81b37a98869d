package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// CommentHandler exposes the comment endpoints.
type CommentHandler struct {
	Comments *services.CommentService
}

// List handles GET /comments/video/{videoId}?page=&limit=.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.Comments.List(ctx, actorID(r), chi.URLParam(r, "videoId"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Comments fetched successfully", page)
}

// Create handles POST /comments/video/{videoId}.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ContentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	comment, err := h.Comments.Create(ctx, actorID(r), chi.URLParam(r, "videoId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.Created(ctx, w, "Comment added successfully", comment)
}

// Update handles PATCH /comments/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ContentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	comment, err := h.Comments.Update(ctx, actorID(r), chi.URLParam(r, "commentId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Comment updated successfully", comment)
}

// Delete handles DELETE /comments/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment, err := h.Comments.Delete(ctx, actorID(r), chi.URLParam(r, "commentId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Comment deleted successfully", comment)
}
