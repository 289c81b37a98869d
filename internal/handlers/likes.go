package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// LikeHandler exposes the like toggles.
type LikeHandler struct {
	Likes *services.LikeService
}

type likeState struct {
	IsLiked bool `json:"isLiked"`
}

// Toggle handles POST /likes/toggle/{subject}/{subjectId} for videos, comments and tweets.
func (h LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := models.SubjectType(chi.URLParam(r, "subject"))

	liked, err := h.Likes.Toggle(ctx, actorID(r), subject, chi.URLParam(r, "subjectId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	message := "Like removed"
	if liked {
		message = "Liked " + string(subject)
	}
	response.OK(ctx, w, message, likeState{IsLiked: liked})
}

// LikedVideos handles GET /likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videos, err := h.Likes.LikedVideos(ctx, actorID(r))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Liked videos fetched successfully", videos)
}
