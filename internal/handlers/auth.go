package handlers

import (
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// AuthHandler implements registration and session endpoints.
type AuthHandler struct {
	Users   *services.UserService
	Uploads config.UploadConfig
	Cookies sessionCookies
}

// The refresh token only travels in its HttpOnly cookie; bodies carry the
// access token alone.
type accessTokenResponse struct {
	AccessToken     string    `json:"accessToken"`
	AccessExpiresAt time.Time `json:"accessExpiresAt"`
}

type sessionResponse struct {
	User models.User `json:"user"`
	accessTokenResponse
}

func newAccessTokenResponse(tokens models.SessionTokens) accessTokenResponse {
	return accessTokenResponse{AccessToken: tokens.AccessToken, AccessExpiresAt: tokens.AccessExpiresAt}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles POST /users/register.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := stageMultipart(w, r, h.Uploads, "avatar", "coverImage")
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	user, err := h.Users.Register(ctx, services.RegisterInput{
		Username:       form.value("username"),
		Email:          form.value("email"),
		FullName:       form.value("fullName"),
		Password:       form.values["password"],
		AvatarPath:     form.file("avatar"),
		CoverImagePath: form.file("coverImage"),
	})
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	response.Created(ctx, w, "User registered successfully", user)
}

// Login handles POST /users/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	user, tokens, err := h.Users.Login(ctx, req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	h.Cookies.set(w, tokens)
	response.OK(ctx, w, "User logged in successfully", sessionResponse{
		User:                user,
		accessTokenResponse: newAccessTokenResponse(tokens),
	})
}

// Logout handles POST /users/logout.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Users.Logout(ctx, actorID(r)); err != nil {
		response.Error(ctx, w, err)
		return
	}

	h.Cookies.clear(w)
	response.OK(ctx, w, "User logged out", struct{}{})
}

// Refresh handles POST /users/refresh-token. The cookie wins over the body.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var token string
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			response.Error(ctx, w, err)
			return
		}
		token = req.RefreshToken
	}

	tokens, err := h.Users.Refresh(ctx, token)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	h.Cookies.set(w, tokens)
	response.OK(ctx, w, "Access token refreshed", newAccessTokenResponse(tokens))
}

// Deactivate handles PUT /users/deactivate.
func (h AuthHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Users.Deactivate(ctx, actorID(r)); err != nil {
		response.Error(ctx, w, err)
		return
	}

	h.Cookies.clear(w)
	logging.FromContext(ctx).Info("account deactivated")
	response.OK(ctx, w, "Account deactivated", struct{}{})
}

// Reactivate handles PUT /users/reactivate.
func (h AuthHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	user, err := h.Users.Reactivate(ctx, req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	response.OK(ctx, w, "Account reactivated", user)
}
