package handlers

import (
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
)

// sessionCookies writes the httpOnly token cookies.
type sessionCookies struct {
	secure bool
}

func (c sessionCookies) set(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, c.cookie(middleware.RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func (c sessionCookies) clear(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		cookie := c.cookie(name, "", time.Unix(0, 0))
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

func (c sessionCookies) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
