package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// VideoHandler exposes the video catalogue endpoints.
type VideoHandler struct {
	Videos  *services.VideoService
	Uploads config.UploadConfig
}

// List handles GET /videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	page, err := h.Videos.List(ctx, actorID(r), services.ListVideosInput{
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
		UserID:   strings.TrimSpace(query.Get("userId")),
		SortBy:   strings.TrimSpace(query.Get("sortBy")),
		SortType: strings.ToLower(strings.TrimSpace(query.Get("sortType"))),
	})
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Videos fetched successfully", page)
}

// Publish handles POST /videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := stageMultipart(w, r, h.Uploads, "videoFile", "thumbnail")
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	video, err := h.Videos.Publish(ctx, actorID(r), services.PublishVideoInput{
		Title:         form.value("title"),
		Description:   form.value("description"),
		VideoPath:     form.file("videoFile"),
		ThumbnailPath: form.file("thumbnail"),
	})
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.Created(ctx, w, "Video published successfully", video)
}

// Get handles GET /videos/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	video, err := h.Videos.Get(ctx, actorID(r), chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Video fetched successfully", video)
}

// Update handles PATCH /videos/{videoId}. It accepts JSON or a multipart form
// carrying an optional replacement thumbnail.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in services.UpdateVideoInput
	if isMultipart(r) {
		form, err := stageMultipart(w, r, h.Uploads, "thumbnail")
		if err != nil {
			response.Error(ctx, w, err)
			return
		}
		in = services.UpdateVideoInput{
			Title:         form.value("title"),
			Description:   form.value("description"),
			ThumbnailPath: form.file("thumbnail"),
		}
	} else {
		if err := decodeJSON(r, &in); err != nil {
			response.Error(ctx, w, err)
			return
		}
		in.ThumbnailPath = ""
	}

	video, err := h.Videos.Update(ctx, actorID(r), chi.URLParam(r, "videoId"), in)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Video updated successfully", video)
}

// Delete handles DELETE /videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	video, err := h.Videos.Delete(ctx, actorID(r), chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Video deleted successfully", video)
}

// TogglePublish handles PATCH /videos/{videoId}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	video, err := h.Videos.TogglePublish(ctx, actorID(r), chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Video publish status toggled", video)
}
