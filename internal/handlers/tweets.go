package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// TweetHandler exposes the tweet endpoints.
type TweetHandler struct {
	Tweets *services.TweetService
}

// Create handles POST /tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ContentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	tweet, err := h.Tweets.Create(ctx, actorID(r), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.Created(ctx, w, "Tweet created successfully", tweet)
}

// ListByUser handles GET /tweets/user/{userId}.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweets, err := h.Tweets.ListByUser(ctx, actorID(r), chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Tweets fetched successfully", tweets)
}

// Update handles PATCH /tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ContentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	tweet, err := h.Tweets.Update(ctx, actorID(r), chi.URLParam(r, "tweetId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Tweet updated successfully", tweet)
}

// Delete handles DELETE /tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweet, err := h.Tweets.Delete(ctx, actorID(r), chi.URLParam(r, "tweetId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Tweet deleted successfully", tweet)
}
