package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type verifierStub map[string]string

func (v verifierStub) Authenticate(token string) (auth.Identity, error) {
	userID, ok := v[token]
	if !ok {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return auth.Identity{UserID: userID}, nil
}

type loaderStub struct {
	users map[string]models.User
	err   error
}

func (l loaderStub) FindByID(_ context.Context, id string) (models.User, error) {
	if l.err != nil {
		return models.User{}, l.err
	}
	user, ok := l.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func TestAuthenticate(t *testing.T) {
	verifier := verifierStub{"cookie-token": "u1", "header-token": "u2", "inactive-token": "u3", "ghost-token": "u4"}
	users := loaderStub{users: map[string]models.User{
		"u1": {ID: "u1", Username: "alice", IsActive: true},
		"u2": {ID: "u2", Username: "bob", IsActive: true},
		"u3": {ID: "u3", Username: "carol", IsActive: false},
	}}

	cases := []struct {
		name     string
		cookie   string
		header   string
		loader   UserLoader
		status   int
		username string
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "cookie", cookie: "cookie-token", status: http.StatusOK, username: "alice"},
		{name: "bearer", header: "Bearer header-token", status: http.StatusOK, username: "bob"},
		{name: "cookie wins", cookie: "cookie-token", header: "Bearer header-token", status: http.StatusOK, username: "alice"},
		{name: "bad token", header: "Bearer forged", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic header-token", status: http.StatusUnauthorized},
		{name: "inactive", cookie: "inactive-token", status: http.StatusUnauthorized},
		{name: "deleted", cookie: "ghost-token", status: http.StatusUnauthorized},
		{name: "store failure", cookie: "cookie-token", loader: loaderStub{err: errors.New("db down")}, status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loader := tc.loader
			if loader == nil {
				loader = users
			}

			var seen auth.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				identity, ok := auth.IdentityFromContext(r.Context())
				require.True(t, ok)
				seen = identity
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			Authenticate(verifier, loader)(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.username, seen.Username)
			} else {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}
