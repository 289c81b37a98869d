package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// Cookie names carrying the session credentials.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// TokenVerifier resolves an access token to the identity it asserts.
type TokenVerifier interface {
	Authenticate(accessToken string) (auth.Identity, error)
}

// UserLoader fetches the account behind a verified token.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Authenticate rejects requests without a valid access token for an active user.
// The accessToken cookie takes precedence over the Authorization header.
func Authenticate(tokens TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			token := AccessToken(r)
			if token == "" {
				response.Error(ctx, w, apierrors.Unauthorized("unauthorized request"))
				return
			}

			identity, err := tokens.Authenticate(token)
			if err != nil {
				logger.Warn("access token rejected", "error", err)
				response.Error(ctx, w, apierrors.Unauthorized("invalid access token"))
				return
			}

			user, err := users.FindByID(ctx, identity.UserID)
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				response.Error(ctx, w, apierrors.Unauthorized("invalid access token"))
				return
			case err != nil:
				response.Error(ctx, w, apierrors.Internal("failed to load user", err))
				return
			case !user.IsActive:
				response.Error(ctx, w, apierrors.Unauthorized("account is deactivated"))
				return
			}

			identity.Username = user.Username
			identity.Email = user.Email
			identity.FullName = user.FullName

			ctx = auth.WithIdentity(ctx, identity)
			ctx = logging.WithUserID(ctx, identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessToken extracts the access token from the cookie or the bearer header.
func AccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}
