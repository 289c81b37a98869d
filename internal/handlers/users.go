package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// AccountHandler implements the profile and channel endpoints.
type AccountHandler struct {
	Users   *services.UserService
	Uploads config.UploadConfig
}

// Current handles GET /users/current.
func (h AccountHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.Users.Current(ctx, actorID(r))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Current user fetched successfully", user)
}

// Update handles PUT /users/update.
func (h AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.UpdateAccountInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	user, err := h.Users.UpdateAccount(ctx, actorID(r), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Account details updated successfully", user)
}

// ChangePassword handles PUT /users/change-password.
func (h AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ChangePasswordInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	if err := h.Users.ChangePassword(ctx, actorID(r), req); err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Password changed successfully", struct{}{})
}

// Avatar handles PATCH /users/avatar.
func (h AccountHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", "Avatar updated successfully", h.Users.UpdateAvatar)
}

// CoverImage handles PATCH /users/cover-image.
func (h AccountHandler) CoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", "Cover image updated successfully", h.Users.UpdateCoverImage)
}

func (h AccountHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	field, message string,
	replace func(ctx context.Context, userID, localPath string) (models.User, error),
) {
	ctx := r.Context()

	form, err := stageMultipart(w, r, h.Uploads, field)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	user, err := replace(ctx, actorID(r), form.file(field))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, message, user)
}

// Channel handles GET /users/c/{username}.
func (h AccountHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.Users.Channel(ctx, actorID(r), chi.URLParam(r, "username"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "User channel fetched successfully", profile)
}

// History handles GET /users/history.
func (h AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videos, err := h.Users.WatchHistory(ctx, actorID(r))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Watch history fetched successfully", videos)
}
